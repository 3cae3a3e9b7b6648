package mailer

// Template names understood by the worker. Each name maps to a
// <name>.subject.tmpl / <name>.text.tmpl / <name>.html.tmpl triplet.
const (
	TemplateLoginOTP          = "login_otp"
	TemplateEmailVerification = "email_verification"
	TemplateForgotPassword    = "forgot_password"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template+Data or a raw Subject with Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

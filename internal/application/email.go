package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"sprintdesk/config"
	"sprintdesk/pkg/helpers"
	"sprintdesk/pkg/mailer"
)

// publishEmail enqueues an email job. Dispatch is fire-and-forget on the
// request path: a publish failure is logged, never surfaced to the client.
func publishEmail(ctx context.Context, pub *helpers.RabbitPublisher, cfg *config.Config, logger *logrus.Logger, job mailer.EmailJob) {
	if pub == nil || cfg == nil || !cfg.MailSendEnabled {
		return
	}
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	job.Data["AppName"] = cfg.AppName
	job.Data["CompanyName"] = cfg.CompanyName
	job.Data["LogoURL"] = cfg.LogoURL
	job.Data["SupportURL"] = cfg.SupportURL
	if err := pub.PublishJSON(ctx, job); err != nil && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"to":       job.To,
			"template": job.Template,
		}).Warn("failed to publish email job")
	}
}

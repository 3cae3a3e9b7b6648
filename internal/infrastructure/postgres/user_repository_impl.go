package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sprintdesk/internal/domain/entity"
	"sprintdesk/internal/domain/repository"
)

const userColumns = `id, email, username, password_hash, full_name, avatar_url, role,
	is_active, email_verified, otp_code, otp_purpose, otp_expires_at,
	last_otp_sent_at, otp_attempts, last_login_at, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var purpose *string
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.FullName,
		&u.AvatarURL, &u.Role, &u.IsActive, &u.EmailVerified,
		&u.OTPCode, &purpose, &u.OTPExpiresAt, &u.LastOTPSentAt, &u.OTPAttempts,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if purpose != nil {
		p := entity.OTPPurpose(*purpose)
		u.OTPPurpose = &p
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, full_name, avatar_url, role, is_active, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Username, u.PasswordHash, u.FullName, u.AvatarURL, u.Role, u.IsActive, u.EmailVerified)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = $1
	`, email))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, username = $2, full_name = $3, avatar_url = $4, role = $5,
		    is_active = $6, updated_at = $7
		WHERE id = $8
	`, u.Email, u.Username, u.FullName, u.AvatarURL, u.Role, u.IsActive, u.UpdatedAt, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, hash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET last_login_at = $1, updated_at = $1 WHERE id = $2
	`, at, id)
	return err
}

// ClaimOTPIssue is a single conditional UPDATE: the WHERE clause re-checks the
// rate window and the attempt cap, and the counter reset happens in the same
// statement, so two concurrent issuers cannot both pass the rate check.
func (r *UserRepository) ClaimOTPIssue(ctx context.Context, p repository.ClaimOTPIssueParams) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET
			otp_code = $2,
			otp_purpose = $3,
			otp_expires_at = $4,
			last_otp_sent_at = $5,
			otp_attempts = CASE
				WHEN last_otp_sent_at IS NULL OR last_otp_sent_at <= $6 THEN 1
				ELSE otp_attempts + 1
			END,
			updated_at = $5
		WHERE id = $1 AND is_active
			AND (last_otp_sent_at IS NULL OR last_otp_sent_at <= $7)
			AND (last_otp_sent_at IS NULL OR last_otp_sent_at <= $6 OR otp_attempts < $8)
	`, p.UserID, p.Code, string(p.Purpose), p.ExpiresAt, p.SentAt, p.ResetCutoff, p.RateCutoff, p.MaxAttempts)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET
			email_verified = TRUE,
			otp_code = NULL, otp_purpose = NULL, otp_expires_at = NULL,
			otp_attempts = 0,
			updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) CompleteLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET
			otp_code = NULL, otp_purpose = NULL, otp_expires_at = NULL,
			otp_attempts = 0,
			last_login_at = $1,
			updated_at = $1
		WHERE id = $2
	`, at, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)

package application

import (
	"context"
	"sync"
	"time"

	"sprintdesk/internal/domain/entity"
	"sprintdesk/internal/domain/repository"
)

// memUserRepo is an in-memory UserRepository with the same conditional-claim
// semantics as the Postgres implementation.
type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*entity.User
	byEmail map[string]*entity.User
}

func newMemUserRepo(users ...*entity.User) *memUserRepo {
	r := &memUserRepo{
		byID:    make(map[string]*entity.User),
		byEmail: make(map[string]*entity.User),
	}
	for _, u := range users {
		r.byID[u.ID] = u
		r.byEmail[u.Email] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return repository.ErrDuplicate
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	*cur = *u
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *memUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLoginAt = &at
	return nil
}

func (r *memUserRepo) ClaimOTPIssue(_ context.Context, p repository.ClaimOTPIssueParams) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[p.UserID]
	if !ok || !u.IsActive {
		return false, nil
	}
	attempts := u.OTPAttempts
	if u.LastOTPSentAt != nil {
		if u.LastOTPSentAt.After(p.RateCutoff) {
			return false, nil
		}
		if u.LastOTPSentAt.After(p.ResetCutoff) {
			if attempts >= p.MaxAttempts {
				return false, nil
			}
		} else {
			attempts = 0
		}
	} else {
		attempts = 0
	}
	code, purpose, exp, sent := p.Code, p.Purpose, p.ExpiresAt, p.SentAt
	u.OTPCode = &code
	u.OTPPurpose = &purpose
	u.OTPExpiresAt = &exp
	u.LastOTPSentAt = &sent
	u.OTPAttempts = attempts + 1
	return true, nil
}

func (r *memUserRepo) MarkEmailVerified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.EmailVerified = true
	r.clearOTP(u)
	return nil
}

func (r *memUserRepo) CompleteLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.clearOTP(u)
	u.LastLoginAt = &at
	return nil
}

func (r *memUserRepo) clearOTP(u *entity.User) {
	u.OTPCode = nil
	u.OTPPurpose = nil
	u.OTPExpiresAt = nil
	u.OTPAttempts = 0
}

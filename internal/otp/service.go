package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matjara-app/matjara-backend/pkg/config"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	pkgredis "github.com/matjara-app/matjara-backend/pkg/redis"
	"github.com/matjara-app/matjara-backend/pkg/security"
)

type codeStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type codeKeyer interface {
	OTPKey(identityID string) string
	OTPAttemptsKey(identityID string) string
}

// Service issues and checks one-time email verification codes. Codes live in
// redis under a TTL; a bounded attempt counter shares the code's lifetime so
// a brute-force run cannot outlast the code it is guessing.
type Service struct {
	store codeStore
	keyer codeKeyer
	cfg   config.OTPConfig
}

// NewService builds the OTP service against the shared redis client.
func NewService(client *pkgredis.Client, cfg config.OTPConfig) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return newService(client, client, cfg), nil
}

func newService(store codeStore, keyer codeKeyer, cfg config.OTPConfig) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 6
	}
	return &Service{store: store, keyer: keyer, cfg: cfg}
}

// Issue generates a fresh code for the identity, replacing any outstanding
// one and resetting the attempt counter.
func (s *Service) Issue(ctx context.Context, identityID string) (string, error) {
	code, err := security.GenerateOTPCode(s.cfg.CodeLength)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp code")
	}

	if err := s.store.Set(ctx, s.keyer.OTPKey(identityID), code, s.cfg.TTL); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store otp code")
	}
	if err := s.store.Del(ctx, s.keyer.OTPAttemptsKey(identityID)); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset otp attempts")
	}
	return code, nil
}

// Verify checks the submitted code. The attempt counter is bumped before the
// comparison so failed and successful guesses both consume an attempt.
func (s *Service) Verify(ctx context.Context, identityID, submitted string) error {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}

	attemptsKey := s.keyer.OTPAttemptsKey(identityID)
	attempts, err := s.store.Incr(ctx, attemptsKey)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count otp attempt")
	}
	if attempts == 1 {
		if err := s.store.Expire(ctx, attemptsKey, s.cfg.TTL); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire otp attempts")
		}
	}
	if attempts > int64(s.cfg.MaxAttempts) {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many verification attempts")
	}

	codeKey := s.keyer.OTPKey(identityID)
	expected, err := s.store.Get(ctx, codeKey)
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return pkgerrors.New(pkgerrors.CodeValidation, "code expired or not issued")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load otp code")
	}

	if subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) != 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "incorrect code")
	}

	if err := s.store.Del(ctx, codeKey, attemptsKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume otp code")
	}
	return nil
}

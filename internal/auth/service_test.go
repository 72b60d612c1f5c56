package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/internal/identity"
	"github.com/matjara-app/matjara-backend/pkg/auth/session"
	"github.com/matjara-app/matjara-backend/pkg/config"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/logger"
	"github.com/rs/zerolog"
)

type stubIdentities struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Identity
}

func newStubIdentities() *stubIdentities {
	return &stubIdentities{rows: make(map[uuid.UUID]*models.Identity)}
}

func (s *stubIdentities) Reserve(ctx context.Context, dto identity.ReserveDTO) (*identity.IdentityDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.StoreID == dto.Key.StoreID && row.Email == dto.Key.Email && row.Role == dto.Key.Role &&
			row.Status == enums.IdentityStatusActive {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "identity already exists for this store and role")
		}
	}
	row := dto.ToModel()
	row.ID = uuid.New()
	s.rows[row.ID] = row
	return identity.FromModel(row), nil
}

func (s *stubIdentities) GetByID(ctx context.Context, id uuid.UUID) (*identity.IdentityDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "identity not found")
	}
	return identity.FromModel(row), nil
}

func (s *stubIdentities) GetActiveByKey(ctx context.Context, key identity.ScopeKey) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.StoreID == key.StoreID && row.Email == key.Email && row.Role == key.Role &&
			row.Status == enums.IdentityStatusActive {
			return row, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "identity not found")
}

func (s *stubIdentities) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		row.EmailVerified = true
	}
	return nil
}

func (s *stubIdentities) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		row.LastLoginAt = &at
	}
	return nil
}

type stubOTP struct {
	mu    sync.Mutex
	codes map[string]string
	seq   int
}

func newStubOTP() *stubOTP {
	return &stubOTP{codes: make(map[string]string)}
}

func (s *stubOTP) Issue(ctx context.Context, identityID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	code := fmt.Sprintf("%06d", s.seq)
	s.codes[identityID] = code
	return code, nil
}

func (s *stubOTP) Verify(ctx context.Context, identityID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	expected, ok := s.codes[identityID]
	if !ok || expected != code {
		return pkgerrors.New(pkgerrors.CodeValidation, "incorrect code")
	}
	delete(s.codes, identityID)
	return nil
}

type stubSessions struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newStubSessions() *stubSessions {
	return &stubSessions{tokens: make(map[string]string)}
}

func (s *stubSessions) Generate(ctx context.Context, accessID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "refresh-" + accessID
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.tokens, oldAccessID)
	newAccessID := uuid.NewString()
	token := "refresh-" + newAccessID
	s.tokens[newAccessID] = token
	return newAccessID, token, nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "matjara-test",
		ExpirationMinutes: 15,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T) (Service, *stubIdentities, *stubOTP, *stubSessions) {
	t.Helper()
	identities := newStubIdentities()
	otp := newStubOTP()
	sessions := newStubSessions()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: &bytes.Buffer{}})

	svc, err := NewService(ServiceParams{
		IdentityService: identities,
		OTPService:      otp,
		SessionManager:  sessions,
		JWTConfig:       testJWTConfig(),
		PasswordConfig:  testPasswordConfig(),
		Logger:          logg,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc, identities, otp, sessions
}

func registerRequest(storeID uuid.UUID) RegisterRequest {
	return RegisterRequest{
		StoreID:   storeID,
		Email:     "Rana@Example.com",
		Password:  "correct horse battery",
		FirstName: "Rana",
		LastName:  "Khoury",
		Role:      enums.IdentityRoleCustomer,
	}
}

func registerAndVerify(t *testing.T, svc Service, otp *stubOTP, storeID uuid.UUID) *identity.IdentityDTO {
	t.Helper()
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest(storeID))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	code := otp.codes[resp.Identity.ID.String()]
	if err := svc.VerifyEmail(ctx, VerifyEmailRequest{IdentityID: resp.Identity.ID, Code: code}); err != nil {
		t.Fatalf("verify email: %v", err)
	}
	return resp.Identity
}

func TestRegister_NormalizesEmailAndIssuesCode(t *testing.T) {
	svc, _, otp, _ := newTestService(t)

	resp, err := svc.Register(context.Background(), registerRequest(uuid.New()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Identity.Email != "rana@example.com" {
		t.Fatalf("expected normalized email, got %q", resp.Identity.Email)
	}
	if _, ok := otp.codes[resp.Identity.ID.String()]; !ok {
		t.Fatal("expected verification code issued")
	}
}

type stubSender struct {
	sent map[string]string
	err  error
}

func (s *stubSender) SendVerificationCode(ctx context.Context, email, code string) error {
	if s.err != nil {
		return s.err
	}
	if s.sent == nil {
		s.sent = make(map[string]string)
	}
	s.sent[email] = code
	return nil
}

func newTestServiceWithSender(t *testing.T, sender CodeSender) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: &bytes.Buffer{}})
	svc, err := NewService(ServiceParams{
		IdentityService: newStubIdentities(),
		OTPService:      newStubOTP(),
		SessionManager:  newStubSessions(),
		CodeSender:      sender,
		JWTConfig:       testJWTConfig(),
		PasswordConfig:  testPasswordConfig(),
		Logger:          logg,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func TestRegister_DeliversCodeThroughSender(t *testing.T) {
	sender := &stubSender{}
	svc := newTestServiceWithSender(t, sender)

	resp, err := svc.Register(context.Background(), registerRequest(uuid.New()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code := sender.sent[resp.Identity.Email]; code == "" {
		t.Fatalf("expected code sent to %q", resp.Identity.Email)
	}
}

func TestRegister_SenderFailureIsDependencyError(t *testing.T) {
	svc := newTestServiceWithSender(t, &stubSender{err: errors.New("smtp down")})

	_, err := svc.Register(context.Background(), registerRequest(uuid.New()))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestRegister_DuplicateScopeKeyConflicts(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	storeID := uuid.New()

	if _, err := svc.Register(context.Background(), registerRequest(storeID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Register(context.Background(), registerRequest(storeID))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegister_ShortPasswordRejected(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	req := registerRequest(uuid.New())
	req.Password = "short"

	_, err := svc.Register(context.Background(), req)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogin_FullFlow(t *testing.T) {
	svc, identities, otp, _ := newTestService(t)
	storeID := uuid.New()
	created := registerAndVerify(t, svc, otp, storeID)

	resp, err := svc.Login(context.Background(), LoginRequest{
		StoreID:  storeID,
		Email:    "RANA@example.com",
		Password: "correct horse battery",
		Role:     enums.IdentityRoleCustomer,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.Identity.ID != created.ID {
		t.Fatalf("expected identity %s, got %s", created.ID, resp.Identity.ID)
	}
	if identities.rows[created.ID].LastLoginAt == nil {
		t.Fatal("expected login recorded")
	}
}

func TestLogin_RejectsUnverifiedEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	storeID := uuid.New()

	if _, err := svc.Register(context.Background(), registerRequest(storeID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Login(context.Background(), LoginRequest{
		StoreID:  storeID,
		Email:    "rana@example.com",
		Password: "correct horse battery",
		Role:     enums.IdentityRoleCustomer,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _, otp, _ := newTestService(t)
	storeID := uuid.New()
	registerAndVerify(t, svc, otp, storeID)

	cases := []struct {
		name string
		req  LoginRequest
	}{
		{
			name: "wrong password",
			req: LoginRequest{
				StoreID: storeID, Email: "rana@example.com",
				Password: "wrong", Role: enums.IdentityRoleCustomer,
			},
		},
		{
			name: "unknown email",
			req: LoginRequest{
				StoreID: storeID, Email: "other@example.com",
				Password: "correct horse battery", Role: enums.IdentityRoleCustomer,
			},
		},
		{
			name: "wrong role scope",
			req: LoginRequest{
				StoreID: storeID, Email: "rana@example.com",
				Password: "correct horse battery", Role: enums.IdentityRoleAdmin,
			},
		},
		{
			name: "wrong store",
			req: LoginRequest{
				StoreID: uuid.New(), Email: "rana@example.com",
				Password: "correct horse battery", Role: enums.IdentityRoleCustomer,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.req)
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized, got %v", err)
			}
		})
	}
}

func TestRefresh_RotatesSession(t *testing.T) {
	svc, _, otp, _ := newTestService(t)
	storeID := uuid.New()
	registerAndVerify(t, svc, otp, storeID)

	login, err := svc.Login(context.Background(), LoginRequest{
		StoreID: storeID, Email: "rana@example.com",
		Password: "correct horse battery", Role: enums.IdentityRoleCustomer,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("expected a rotated token pair")
	}

	// The old refresh token is dead after rotation.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on replay, got %v", err)
	}
}

func TestResendCode_AlreadyVerifiedConflicts(t *testing.T) {
	svc, _, otp, _ := newTestService(t)
	created := registerAndVerify(t, svc, otp, uuid.New())

	err := svc.ResendCode(context.Background(), created.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/internal/identity"
	pkgauth "github.com/matjara-app/matjara-backend/pkg/auth"
	"github.com/matjara-app/matjara-backend/pkg/auth/session"
	"github.com/matjara-app/matjara-backend/pkg/config"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/logger"
	"github.com/matjara-app/matjara-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	VerifyEmail(ctx context.Context, req VerifyEmailRequest) error
	ResendCode(ctx context.Context, identityID uuid.UUID) error
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, accessID string) error
}

type identityService interface {
	Reserve(ctx context.Context, dto identity.ReserveDTO) (*identity.IdentityDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*identity.IdentityDTO, error)
	GetActiveByKey(ctx context.Context, key identity.ScopeKey) (*models.Identity, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type otpService interface {
	Issue(ctx context.Context, identityID string) (string, error)
	Verify(ctx context.Context, identityID, code string) error
}

// CodeSender delivers a verification code to the address on file. The auth
// service does not care about the transport; a nil sender means codes are
// only minted, which is the dev default.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	identities  identityService
	otp         otpService
	session     sessionManager
	sender      CodeSender
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logger      *logger.Logger
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	IdentityService identityService
	OTPService      otpService
	SessionManager  sessionManager
	CodeSender      CodeSender
	JWTConfig       config.JWTConfig
	PasswordConfig  config.PasswordConfig
	Logger          *logger.Logger
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.IdentityService == nil {
		return nil, fmt.Errorf("identity service is required")
	}
	if params.OTPService == nil {
		return nil, fmt.Errorf("otp service is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		identities:  params.IdentityService,
		otp:         params.OTPService,
		session:     params.SessionManager,
		sender:      params.CodeSender,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		logger:      params.Logger,
	}, nil
}

// Register claims the scope key for the new identity and issues a
// verification code. Losing the uniqueness race surfaces as Conflict.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	key, err := identity.DeriveKey(req.Email, req.StoreID, req.Role)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	created, err := s.identities.Reserve(ctx, identity.ReserveDTO{
		Key:          key,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
	})
	if err != nil {
		return nil, err
	}

	code, err := s.otp.Issue(ctx, created.ID.String())
	if err != nil {
		return nil, err
	}
	if err := s.deliverCode(ctx, created.Email, code); err != nil {
		return nil, err
	}
	s.logger.Info(s.logger.WithIdentityID(ctx, created.ID.String()), "verification code issued")

	return &RegisterResponse{Identity: created}, nil
}

// VerifyEmail consumes the code and marks the address verified.
func (s *service) VerifyEmail(ctx context.Context, req VerifyEmailRequest) error {
	if _, err := s.identities.GetByID(ctx, req.IdentityID); err != nil {
		return err
	}
	if err := s.otp.Verify(ctx, req.IdentityID.String(), req.Code); err != nil {
		return err
	}
	return s.identities.MarkEmailVerified(ctx, req.IdentityID)
}

// ResendCode reissues the verification code for an unverified identity.
func (s *service) ResendCode(ctx context.Context, identityID uuid.UUID) error {
	existing, err := s.identities.GetByID(ctx, identityID)
	if err != nil {
		return err
	}
	if existing.EmailVerified {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already verified")
	}
	code, err := s.otp.Issue(ctx, identityID.String())
	if err != nil {
		return err
	}
	if err := s.deliverCode(ctx, existing.Email, code); err != nil {
		return err
	}
	s.logger.Info(s.logger.WithIdentityID(ctx, identityID.String()), "verification code reissued")
	return nil
}

func (s *service) deliverCode(ctx context.Context, email, code string) error {
	if s.sender == nil {
		return nil
	}
	if err := s.sender.SendVerificationCode(ctx, email, code); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send verification code")
	}
	return nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	key, err := identity.DeriveKey(req.Email, req.StoreID, req.Role)
	if err != nil {
		return nil, err
	}

	row, err := s.identities.GetActiveByKey(ctx, key)
	if err != nil {
		appErr := pkgerrors.As(err)
		if appErr != nil && appErr.Code() == pkgerrors.CodeNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, err
	}

	ok, err := security.VerifyPassword(req.Password, row.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if !row.EmailVerified {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "email not verified")
	}

	now := time.Now().UTC()
	if err := s.identities.RecordLogin(ctx, row.ID, now); err != nil {
		return nil, err
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		IdentityID: row.ID,
		StoreID:    row.StoreID,
		Role:       row.Role,
		JTI:        accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Identity:     identity.FromModel(row),
	}, nil
}

// Refresh rotates the session named by the (possibly expired) access token.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		IdentityID: claims.IdentityID,
		StoreID:    claims.StoreID,
		Role:       claims.Role,
		JTI:        newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

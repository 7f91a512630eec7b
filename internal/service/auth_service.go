package service

import (
	"context"
	"errors"
	"time"

	"github.com/heliohq/claims-portal/internal/domain"
	"github.com/heliohq/claims-portal/internal/http/response"
	"github.com/heliohq/claims-portal/internal/repository"
	"github.com/heliohq/claims-portal/pkg/auth"
	"github.com/heliohq/claims-portal/pkg/config"
	"github.com/heliohq/claims-portal/pkg/events"
	"github.com/heliohq/claims-portal/pkg/logger"
)

// AuthService owns every account flow for portal users. Methods that
// change the session state return a fresh signed token alongside the user.
type AuthService interface {
	Signup(ctx context.Context, req *domain.SignupUserRequest) (*domain.User, string, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error)
	ForgotPassword(ctx context.Context, req *domain.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, rawToken string, req *domain.ChangePasswordRequest) (*domain.User, string, error)
	ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) (*domain.User, string, error)
	VerifyEmail(ctx context.Context, rawToken string) (*domain.User, string, error)
	ResendVerification(ctx context.Context, req *domain.ForgotPasswordRequest) error
	UpdateEmail(ctx context.Context, userID string, req *domain.UpdateEmailRequest) error
	Me(ctx context.Context, userID string) (*domain.User, error)
}

type authService struct {
	users repository.UserRepository
	bus   events.Publisher
	cfg   config.AuthConfig
}

func NewAuthService(users repository.UserRepository, bus events.Publisher, cfg config.AuthConfig) AuthService {
	return &authService{users: users, bus: bus, cfg: cfg}
}

func (s *authService) tokenTTL() time.Duration {
	return time.Duration(s.cfg.TokenExpiresDays) * 24 * time.Hour
}

func (s *authService) userToken(u *domain.User) (string, error) {
	return auth.NewUserToken(u.ID, u.Role, u.IsKycComplete, s.cfg.JWTSecret, s.tokenTTL())
}

// publish failures never fail the request; the write already committed.
func (s *authService) publish(ctx context.Context, subject string, data any) {
	if err := s.bus.Publish(ctx, subject, data); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "subject", subject, "error", err)
	}
}

func (s *authService) Signup(ctx context.Context, req *domain.SignupUserRequest) (*domain.User, string, error) {
	if req.Password != req.ConfirmPassword {
		return nil, "", response.BadRequest("Passwords do not match")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", response.BadRequest(err.Error())
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	rawToken, tokenHash, err := auth.NewRandomToken()
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.Create(ctx, req, passwordHash, tokenHash, time.Now().Add(s.cfg.ResetTokenTTL))
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, "", response.BadRequest("Email already in use")
	}
	if err != nil {
		return nil, "", err
	}

	s.publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	})
	s.publish(ctx, events.NotifySend, events.NotificationEvent{
		Kind:  events.NotifyVerification,
		Name:  user.Name,
		Email: user.Email,
		Token: rawToken,
	})

	token, err := s.userToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", response.BadRequest(err.Error())
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		// Burn a comparison so a missing account costs the same as a
		// wrong password.
		auth.CheckDummy(req.Password)
		return nil, "", response.Unauthorized("Incorrect email or password")
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, "", response.Unauthorized("Incorrect email or password")
	}
	if !user.IsVerified {
		return nil, "", response.Unauthorized("Please verify your email to log in")
	}

	token, err := s.userToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ForgotPassword never reveals whether the address exists; the response
// is identical either way.
func (s *authService) ForgotPassword(ctx context.Context, req *domain.ForgotPasswordRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return response.BadRequest(err.Error())
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	rawToken, tokenHash, err := auth.NewRandomToken()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, user.ID, tokenHash, time.Now().Add(s.cfg.ResetTokenTTL)); err != nil {
		return err
	}

	s.publish(ctx, events.NotifySend, events.NotificationEvent{
		Kind:  events.NotifyPasswordReset,
		Name:  user.Name,
		Email: user.Email,
		Token: rawToken,
	})
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, rawToken string, req *domain.ChangePasswordRequest) (*domain.User, string, error) {
	user, err := s.users.FindByResetToken(ctx, auth.HashToken(rawToken))
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", response.BadRequest("Token is invalid or has expired")
	}

	user, token, err := s.setPassword(ctx, user, req)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) (*domain.User, string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", response.NotFound("User not found")
	}

	return s.setPassword(ctx, user, req)
}

// setPassword is shared by reset and change: same-password guard first,
// then confirmation, then policy.
func (s *authService) setPassword(ctx context.Context, user *domain.User, req *domain.ChangePasswordRequest) (*domain.User, string, error) {
	if auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, "", response.BadRequest("New password cannot be the same as the old one")
	}
	if req.Password != req.ConfirmPassword {
		return nil, "", response.BadRequest("Passwords do not match")
	}
	if err := req.Validate(); err != nil {
		return nil, "", response.BadRequest(err.Error())
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	updated, err := s.users.UpdatePassword(ctx, user.ID, passwordHash)
	if err != nil {
		return nil, "", err
	}

	token, err := s.userToken(updated)
	if err != nil {
		return nil, "", err
	}
	return updated, token, nil
}

// VerifyEmail consumes the token: it marks the account verified and, when
// an email change was staged, promotes the pending address to primary.
func (s *authService) VerifyEmail(ctx context.Context, rawToken string) (*domain.User, string, error) {
	user, err := s.users.FindByVerificationToken(ctx, auth.HashToken(rawToken))
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", response.BadRequest("Token is invalid or has expired")
	}

	updated, err := s.users.ApplyVerification(ctx, user.ID, user.PendingEmail)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, "", response.BadRequest("Email already in use")
	}
	if err != nil {
		return nil, "", err
	}

	token, err := s.userToken(updated)
	if err != nil {
		return nil, "", err
	}
	return updated, token, nil
}

// ResendVerification only acts on unverified accounts and answers
// identically whether or not one exists.
func (s *authService) ResendVerification(ctx context.Context, req *domain.ForgotPasswordRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return response.BadRequest(err.Error())
	}

	user, err := s.users.FindUnverifiedByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	rawToken, tokenHash, err := auth.NewRandomToken()
	if err != nil {
		return err
	}
	if err := s.users.SetVerificationToken(ctx, user.ID, tokenHash, time.Now().Add(s.cfg.ResetTokenTTL)); err != nil {
		return err
	}

	s.publish(ctx, events.NotifySend, events.NotificationEvent{
		Kind:  events.NotifyVerification,
		Name:  user.Name,
		Email: user.Email,
		Token: rawToken,
	})
	return nil
}

// UpdateEmail stages the new address; it only becomes primary once the
// verification link sent to it is followed.
func (s *authService) UpdateEmail(ctx context.Context, userID string, req *domain.UpdateEmailRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return response.BadRequest(err.Error())
	}

	existing, err := s.users.FindByEmail(ctx, req.NewEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		return response.BadRequest("Email already in use")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return response.NotFound("User not found")
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return response.Unauthorized("Incorrect password")
	}

	rawToken, tokenHash, err := auth.NewRandomToken()
	if err != nil {
		return err
	}
	if err := s.users.StageEmailChange(ctx, user.ID, req.NewEmail, tokenHash, time.Now().Add(s.cfg.ResetTokenTTL)); err != nil {
		return err
	}

	s.publish(ctx, events.NotifySend, events.NotificationEvent{
		Kind:  events.NotifyVerification,
		Name:  user.Name,
		Email: req.NewEmail,
		Token: rawToken,
	})
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, response.NotFound("User not found")
	}
	return user, nil
}

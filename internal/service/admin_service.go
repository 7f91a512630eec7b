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

// AdminService owns the back-office account flows plus the user directory
// admins browse.
type AdminService interface {
	Signup(ctx context.Context, presentedKey string, req *domain.SignupAdminRequest) (*domain.Admin, string, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.Admin, string, error)
	ForgotPassword(ctx context.Context, req *domain.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, rawToken string, req *domain.ChangePasswordRequest) (*domain.Admin, string, error)
	ChangePassword(ctx context.Context, adminID string, req *domain.ChangePasswordRequest) (*domain.Admin, string, error)
	Me(ctx context.Context, adminID string) (*domain.Admin, error)

	ListSuperAdmins(ctx context.Context) ([]domain.AdminSummary, error)
	ListOperators(ctx context.Context) ([]domain.AdminSummary, error)
	GetAdmin(ctx context.Context, id string) (*domain.Admin, error)
	UpdateAdmin(ctx context.Context, id string, req *domain.UpdateAdminRequest) (*domain.Admin, error)
	DeleteAdmin(ctx context.Context, id string) error

	ListUsers(ctx context.Context) ([]domain.UserSummary, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserKyc(ctx context.Context, userID string) (*domain.KYC, error)
}

type adminService struct {
	admins    repository.AdminRepository
	users     repository.UserRepository
	kyc       repository.KycRepository
	bus       events.Publisher
	signupKey auth.KeyVerifier
	cfg       config.AuthConfig
}

func NewAdminService(
	admins repository.AdminRepository,
	users repository.UserRepository,
	kyc repository.KycRepository,
	bus events.Publisher,
	cfg config.AuthConfig,
) AdminService {
	return &adminService{
		admins:    admins,
		users:     users,
		kyc:       kyc,
		bus:       bus,
		signupKey: auth.NewKeyVerifier(cfg.AdminSignupKey),
		cfg:       cfg,
	}
}

func (s *adminService) adminToken(a *domain.Admin) (string, error) {
	ttl := time.Duration(s.cfg.TokenExpiresDays) * 24 * time.Hour
	return auth.NewAdminToken(a.ID, a.Role, s.cfg.JWTSecret, ttl)
}

func (s *adminService) publish(ctx context.Context, subject string, data any) {
	if err := s.bus.Publish(ctx, subject, data); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "subject", subject, "error", err)
	}
}

// Signup is gated by the static admin capability key, not by a session.
func (s *adminService) Signup(ctx context.Context, presentedKey string, req *domain.SignupAdminRequest) (*domain.Admin, string, error) {
	if !s.signupKey.Verify(presentedKey) {
		return nil, "", response.Forbidden("Invalid API key")
	}
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

	admin, err := s.admins.Create(ctx, req, passwordHash)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, "", response.BadRequest("Email already in use")
	}
	if err != nil {
		return nil, "", err
	}

	token, err := s.adminToken(admin)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

func (s *adminService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.Admin, string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", response.BadRequest(err.Error())
	}

	admin, err := s.admins.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if admin == nil {
		auth.CheckDummy(req.Password)
		return nil, "", response.Unauthorized("Incorrect email or password")
	}
	if !auth.CheckPassword(req.Password, admin.PasswordHash) {
		return nil, "", response.Unauthorized("Incorrect email or password")
	}

	token, err := s.adminToken(admin)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

func (s *adminService) ForgotPassword(ctx context.Context, req *domain.ForgotPasswordRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return response.BadRequest(err.Error())
	}

	admin, err := s.admins.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if admin == nil {
		return nil
	}

	rawToken, tokenHash, err := auth.NewRandomToken()
	if err != nil {
		return err
	}
	if err := s.admins.SetResetToken(ctx, admin.ID, tokenHash, time.Now().Add(s.cfg.ResetTokenTTL)); err != nil {
		return err
	}

	s.publish(ctx, events.NotifySend, events.NotificationEvent{
		Kind:  events.NotifyPasswordReset,
		Name:  admin.Name,
		Email: admin.Email,
		Token: rawToken,
	})
	return nil
}

func (s *adminService) ResetPassword(ctx context.Context, rawToken string, req *domain.ChangePasswordRequest) (*domain.Admin, string, error) {
	admin, err := s.admins.FindByResetToken(ctx, auth.HashToken(rawToken))
	if err != nil {
		return nil, "", err
	}
	if admin == nil {
		return nil, "", response.BadRequest("Token is invalid or has expired")
	}

	return s.setPassword(ctx, admin, req)
}

func (s *adminService) ChangePassword(ctx context.Context, adminID string, req *domain.ChangePasswordRequest) (*domain.Admin, string, error) {
	admin, err := s.admins.FindByID(ctx, adminID)
	if err != nil {
		return nil, "", err
	}
	if admin == nil {
		return nil, "", response.NotFound("Admin not found")
	}

	return s.setPassword(ctx, admin, req)
}

func (s *adminService) setPassword(ctx context.Context, admin *domain.Admin, req *domain.ChangePasswordRequest) (*domain.Admin, string, error) {
	if auth.CheckPassword(req.Password, admin.PasswordHash) {
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

	updated, err := s.admins.UpdatePassword(ctx, admin.ID, passwordHash)
	if err != nil {
		return nil, "", err
	}

	token, err := s.adminToken(updated)
	if err != nil {
		return nil, "", err
	}
	return updated, token, nil
}

func (s *adminService) Me(ctx context.Context, adminID string) (*domain.Admin, error) {
	admin, err := s.admins.FindByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, response.NotFound("Admin not found")
	}
	return admin, nil
}

func (s *adminService) ListSuperAdmins(ctx context.Context) ([]domain.AdminSummary, error) {
	return s.admins.ListByRole(ctx, domain.RoleSuperAdmin)
}

func (s *adminService) ListOperators(ctx context.Context) ([]domain.AdminSummary, error) {
	return s.admins.ListByRole(ctx, domain.RoleOperator)
}

func (s *adminService) GetAdmin(ctx context.Context, id string) (*domain.Admin, error) {
	admin, err := s.admins.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, response.NotFound("Admin not found")
	}
	return admin, nil
}

func (s *adminService) UpdateAdmin(ctx context.Context, id string, req *domain.UpdateAdminRequest) (*domain.Admin, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, response.BadRequest(err.Error())
	}

	target, err := s.admins.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, response.NotFound("Admin not found")
	}
	if target.Role == domain.RoleSuperAdmin && req.Role != nil && *req.Role != domain.RoleSuperAdmin {
		return nil, response.Forbidden("Cannot change the role of a SUPER_ADMIN")
	}

	admin, err := s.admins.Update(ctx, id, req)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, response.BadRequest("Email already in use")
	}
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, response.NotFound("Admin not found")
	}
	return admin, nil
}

func (s *adminService) DeleteAdmin(ctx context.Context, id string) error {
	target, err := s.admins.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if target == nil {
		return response.NotFound("Admin not found")
	}
	if target.Role == domain.RoleSuperAdmin {
		return response.Forbidden("SUPER_ADMIN accounts cannot be deleted")
	}

	deleted, err := s.admins.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if deleted == nil {
		return response.NotFound("Admin not found")
	}
	return nil
}

func (s *adminService) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	return s.users.List(ctx)
}

func (s *adminService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, response.NotFound("User not found")
	}
	return user, nil
}

func (s *adminService) GetUserKyc(ctx context.Context, userID string) (*domain.KYC, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, response.NotFound("User not found")
	}

	record, err := s.kyc.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, response.NotFound("KYC not found for this user")
	}
	return record, nil
}

package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/heliohq/claims-portal/internal/domain"
	"github.com/heliohq/claims-portal/internal/http/response"
	"github.com/heliohq/claims-portal/internal/service"
	"github.com/heliohq/claims-portal/pkg/auth"
	"github.com/heliohq/claims-portal/pkg/config"
	"github.com/heliohq/claims-portal/pkg/events"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:        "test-secret",
		TokenExpiresDays: 1,
		ResetTokenTTL:    10 * time.Minute,
	}
}

func newAuthService() (service.AuthService, *mockUserRepo, *mockBus) {
	users := newMockUserRepo()
	bus := &mockBus{}
	return service.NewAuthService(users, bus, testAuthConfig()), users, bus
}

func signupRequest() *domain.SignupUserRequest {
	return &domain.SignupUserRequest{
		Name:            "Asha Vendor",
		Email:           "asha@example.com",
		Phone:           "9876543210",
		Password:        "password123",
		ConfirmPassword: "password123",
		Role:            domain.RoleVendor,
	}
}

// signupVerified walks a user through signup and verification.
func signupVerified(t *testing.T, svc service.AuthService, users *mockUserRepo) *domain.User {
	t.Helper()

	user, _, err := svc.Signup(context.Background(), signupRequest())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := users.ApplyVerification(context.Background(), user.ID, nil); err != nil {
		t.Fatalf("ApplyVerification: %v", err)
	}
	return user
}

func requireAppError(t *testing.T, err error, status int) *response.AppError {
	t.Helper()

	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Status != status {
		t.Fatalf("expected status %d, got %d (%s)", status, appErr.Status, appErr.Message)
	}
	return appErr
}

func TestSignup_PasswordMismatch_NothingPersisted(t *testing.T) {
	svc, users, bus := newAuthService()

	req := signupRequest()
	req.ConfirmPassword = "different123"

	_, _, err := svc.Signup(context.Background(), req)
	requireAppError(t, err, 400)

	if len(users.users) != 0 {
		t.Fatal("no user may be persisted on confirmation mismatch")
	}
	if len(bus.published) != 0 {
		t.Fatal("no event may be published on confirmation mismatch")
	}
}

func TestSignup_Success_SendsVerificationAndIssuesToken(t *testing.T) {
	svc, users, bus := newAuthService()

	user, token, err := svc.Signup(context.Background(), signupRequest())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	if user.IsVerified {
		t.Fatal("new user must start unverified")
	}
	if user.PasswordHash == "password123" {
		t.Fatal("password must be stored hashed")
	}

	claims, err := auth.Parse(token, "test-secret")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.ID != user.ID || !claims.IsUser() || *claims.IsKycComplete {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	notifications := bus.bySubject(events.NotifySend)
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	event := notifications[0].data.(events.NotificationEvent)
	if event.Kind != events.NotifyVerification || event.Email != user.Email {
		t.Fatalf("unexpected notification: %+v", event)
	}
	// Only the hash is persisted; the raw token travels on the bus.
	stored := users.verifyTokens[user.ID]
	if stored.hash == event.Token {
		t.Fatal("raw token must not be persisted")
	}
	if auth.HashToken(event.Token) != stored.hash {
		t.Fatal("persisted hash must match the mailed token")
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthService()

	if _, _, err := svc.Signup(context.Background(), signupRequest()); err != nil {
		t.Fatalf("first signup: %v", err)
	}

	_, _, err := svc.Signup(context.Background(), signupRequest())
	appErr := requireAppError(t, err, 400)
	if appErr.Message != "Email already in use" {
		t.Fatalf("unexpected message: %s", appErr.Message)
	}
}

func TestLogin_MissingAccountAndWrongPasswordAreIdentical(t *testing.T) {
	svc, users, _ := newAuthService()
	signupVerified(t, svc, users)

	_, _, errMissing := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	missing := requireAppError(t, errMissing, 401)

	_, _, errWrong := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "asha@example.com",
		Password: "wrongpassword",
	})
	wrong := requireAppError(t, errWrong, 401)

	if missing.Message != wrong.Message {
		t.Fatalf("messages must not distinguish the cases: %q vs %q", missing.Message, wrong.Message)
	}
}

func TestLogin_UnverifiedRejected(t *testing.T) {
	svc, _, _ := newAuthService()

	if _, _, err := svc.Signup(context.Background(), signupRequest()); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	_, _, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "asha@example.com",
		Password: "password123",
	})
	requireAppError(t, err, 401)
}

func TestLogin_Success(t *testing.T) {
	svc, users, _ := newAuthService()
	created := signupVerified(t, svc, users)

	user, token, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "asha@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("expected user %s, got %s", created.ID, user.ID)
	}
	if _, err := auth.Parse(token, "test-secret"); err != nil {
		t.Fatalf("issued token must parse: %v", err)
	}
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	svc, _, bus := newAuthService()

	err := svc.ForgotPassword(context.Background(), &domain.ForgotPasswordRequest{Email: "ghost@example.com"})
	if err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if len(bus.published) != 0 {
		t.Fatal("no notification may go out for an unknown address")
	}
}

func TestForgotPassword_StoresHashedTokenAndNotifies(t *testing.T) {
	svc, users, bus := newAuthService()
	user := signupVerified(t, svc, users)
	bus.published = nil

	if err := svc.ForgotPassword(context.Background(), &domain.ForgotPasswordRequest{Email: user.Email}); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}

	notifications := bus.bySubject(events.NotifySend)
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	event := notifications[0].data.(events.NotificationEvent)
	if event.Kind != events.NotifyPasswordReset {
		t.Fatalf("unexpected kind: %s", event.Kind)
	}

	stored := users.resetTokens[user.ID]
	if auth.HashToken(event.Token) != stored.hash {
		t.Fatal("persisted hash must match the mailed token")
	}
}

func TestResetPassword_InvalidToken(t *testing.T) {
	svc, _, _ := newAuthService()

	_, _, err := svc.ResetPassword(context.Background(), "bogus-token", &domain.ChangePasswordRequest{
		Password:        "newpassword1",
		ConfirmPassword: "newpassword1",
	})
	appErr := requireAppError(t, err, 400)
	if appErr.Message != "Token is invalid or has expired" {
		t.Fatalf("unexpected message: %s", appErr.Message)
	}
}

func TestResetPassword_FullFlow(t *testing.T) {
	svc, users, bus := newAuthService()
	user := signupVerified(t, svc, users)

	if err := svc.ForgotPassword(context.Background(), &domain.ForgotPasswordRequest{Email: user.Email}); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	resets := bus.bySubject(events.NotifySend)
	rawToken := resets[len(resets)-1].data.(events.NotificationEvent).Token

	// Reusing the old password is rejected before anything else.
	_, _, err := svc.ResetPassword(context.Background(), rawToken, &domain.ChangePasswordRequest{
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	requireAppError(t, err, 400)

	// Mismatched confirmation.
	_, _, err = svc.ResetPassword(context.Background(), rawToken, &domain.ChangePasswordRequest{
		Password:        "newpassword1",
		ConfirmPassword: "newpassword2",
	})
	requireAppError(t, err, 400)

	// Valid reset consumes the token.
	if _, _, err := svc.ResetPassword(context.Background(), rawToken, &domain.ChangePasswordRequest{
		Password:        "newpassword1",
		ConfirmPassword: "newpassword1",
	}); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	_, _, err = svc.ResetPassword(context.Background(), rawToken, &domain.ChangePasswordRequest{
		Password:        "anotherpass1",
		ConfirmPassword: "anotherpass1",
	})
	requireAppError(t, err, 400)

	// The new password works.
	if _, _, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    user.Email,
		Password: "newpassword1",
	}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestResetPassword_ExpiredTokenRejected(t *testing.T) {
	users := newMockUserRepo()
	bus := &mockBus{}
	cfg := testAuthConfig()
	cfg.ResetTokenTTL = -time.Minute
	svc := service.NewAuthService(users, bus, cfg)

	user := signupVerified(t, svc, users)
	bus.published = nil

	if err := svc.ForgotPassword(context.Background(), &domain.ForgotPasswordRequest{Email: user.Email}); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	rawToken := bus.bySubject(events.NotifySend)[0].data.(events.NotificationEvent).Token

	// The mailed token hashes to the stored value but its window is over.
	_, _, err := svc.ResetPassword(context.Background(), rawToken, &domain.ChangePasswordRequest{
		Password:        "newpassword1",
		ConfirmPassword: "newpassword1",
	})
	appErr := requireAppError(t, err, 400)
	if appErr.Message != "Token is invalid or has expired" {
		t.Fatalf("unexpected message: %s", appErr.Message)
	}

	// The old password still logs in.
	if _, _, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    user.Email,
		Password: "password123",
	}); err != nil {
		t.Fatalf("login with old password: %v", err)
	}
}

func TestVerifyEmail_TokenIsSingleUse(t *testing.T) {
	svc, _, bus := newAuthService()

	if _, _, err := svc.Signup(context.Background(), signupRequest()); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	rawToken := bus.bySubject(events.NotifySend)[0].data.(events.NotificationEvent).Token

	if _, _, err := svc.VerifyEmail(context.Background(), rawToken); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	_, _, err := svc.VerifyEmail(context.Background(), rawToken)
	appErr := requireAppError(t, err, 400)
	if appErr.Message != "Token is invalid or has expired" {
		t.Fatalf("unexpected message: %s", appErr.Message)
	}
}

func TestVerifyEmail_PromotesPendingEmail(t *testing.T) {
	svc, users, bus := newAuthService()
	user := signupVerified(t, svc, users)

	if err := svc.UpdateEmail(context.Background(), user.ID, &domain.UpdateEmailRequest{
		NewEmail: "asha.new@example.com",
		Password: "password123",
	}); err != nil {
		t.Fatalf("UpdateEmail: %v", err)
	}

	notifications := bus.bySubject(events.NotifySend)
	event := notifications[len(notifications)-1].data.(events.NotificationEvent)
	if event.Email != "asha.new@example.com" {
		t.Fatalf("verification must go to the new address, got %s", event.Email)
	}

	// Old address stays primary until the link is followed.
	if user.Email != "asha@example.com" {
		t.Fatalf("primary email changed early: %s", user.Email)
	}

	updated, _, err := svc.VerifyEmail(context.Background(), event.Token)
	if err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if updated.Email != "asha.new@example.com" {
		t.Fatalf("expected promoted email, got %s", updated.Email)
	}
	if updated.PendingEmail != nil {
		t.Fatal("pending email must be cleared after promotion")
	}
}

func TestUpdateEmail_Guards(t *testing.T) {
	svc, users, _ := newAuthService()
	user := signupVerified(t, svc, users)

	other := signupRequest()
	other.Email = "taken@example.com"
	if _, _, err := svc.Signup(context.Background(), other); err != nil {
		t.Fatalf("second signup: %v", err)
	}

	err := svc.UpdateEmail(context.Background(), user.ID, &domain.UpdateEmailRequest{
		NewEmail: "taken@example.com",
		Password: "password123",
	})
	requireAppError(t, err, 400)

	err = svc.UpdateEmail(context.Background(), user.ID, &domain.UpdateEmailRequest{
		NewEmail: "fresh@example.com",
		Password: "wrongpassword",
	})
	requireAppError(t, err, 401)
}

func TestResendVerification_OnlyUnverified(t *testing.T) {
	svc, users, bus := newAuthService()
	user := signupVerified(t, svc, users)
	bus.published = nil

	// Verified account: silent no-op.
	if err := svc.ResendVerification(context.Background(), &domain.ForgotPasswordRequest{Email: user.Email}); err != nil {
		t.Fatalf("ResendVerification: %v", err)
	}
	if len(bus.published) != 0 {
		t.Fatal("no mail may go to an already verified account")
	}

	// Unverified account gets a fresh token.
	pending := signupRequest()
	pending.Email = "pending@example.com"
	if _, _, err := svc.Signup(context.Background(), pending); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	bus.published = nil

	if err := svc.ResendVerification(context.Background(), &domain.ForgotPasswordRequest{Email: "pending@example.com"}); err != nil {
		t.Fatalf("ResendVerification: %v", err)
	}
	if len(bus.bySubject(events.NotifySend)) != 1 {
		t.Fatal("expected a verification notification")
	}
}

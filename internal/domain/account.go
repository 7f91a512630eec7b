package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Roles
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleOperator   = "OPERATOR"
	RoleIndividual = "INDIVIDUAL"
	RoleVendor     = "VENDOR"
)

// Admin is an operator/super-admin account. Passwords never serialize.
type Admin struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Role              string     `json:"role"`
	IsActive          bool       `json:"isActive"`
	PasswordChangedAt *time.Time `json:"passwordChangedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	DeletedAt         *time.Time `json:"-"`
}

// User is a vendor/individual account.
type User struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Phone             string     `json:"phone"`
	Role              string     `json:"role"`
	IsVerified        bool       `json:"isVerified"`
	PendingEmail      *string    `json:"pendingEmail,omitempty"`
	KycID             *string    `json:"kycId,omitempty"`
	IsKycComplete     bool       `json:"isKycComplete"`
	PasswordChangedAt *time.Time `json:"passwordChangedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// AdminSummary is the projection returned by admin list/detail routes.
type AdminSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
	IsActive bool   `json:"isActive"`
}

// UserSummary is the projection returned by admin user-list routes.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Requests

type SignupUserRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
}

type SignupAdminRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ChangePasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type UpdateEmailRequest struct {
	NewEmail string `json:"newEmail"`
	Password string `json:"password"`
}

type UpdateAdminRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty"`
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\d{10}$`)
)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// NormalizeEmail lower-cases and trims; applied at every write/read boundary.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *SignupUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *SignupUserRequest) Validate() error {
	if len(r.Name) < 2 || len(r.Name) > 50 {
		return fmt.Errorf("name must be between 2 and 50 characters")
	}
	if !IsValidEmail(r.Email) {
		return fmt.Errorf("invalid email address")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if !phoneRegex.MatchString(r.Phone) {
		return fmt.Errorf("phone number must be 10 digits long")
	}
	if r.Role != RoleIndividual && r.Role != RoleVendor {
		return fmt.Errorf("role must be INDIVIDUAL or VENDOR")
	}
	return nil
}

func (r *SignupAdminRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

func (r *SignupAdminRequest) Validate() error {
	if len(r.Name) < 2 || len(r.Name) > 50 {
		return fmt.Errorf("name must be between 2 and 50 characters")
	}
	if !IsValidEmail(r.Email) {
		return fmt.Errorf("invalid email address")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if r.Role != RoleSuperAdmin && r.Role != RoleOperator {
		return fmt.Errorf("role must be SUPER_ADMIN or OPERATOR")
	}
	return nil
}

func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

func (r *LoginRequest) Validate() error {
	if !IsValidEmail(r.Email) {
		return fmt.Errorf("invalid email address")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

func (r *ForgotPasswordRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

func (r *ForgotPasswordRequest) Validate() error {
	if !IsValidEmail(r.Email) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

func (r *ChangePasswordRequest) Validate() error {
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	return nil
}

func (r *UpdateEmailRequest) Normalize() {
	r.NewEmail = NormalizeEmail(r.NewEmail)
}

func (r *UpdateEmailRequest) Validate() error {
	if !IsValidEmail(r.NewEmail) {
		return fmt.Errorf("invalid email address")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

func (r *UpdateAdminRequest) Normalize() {
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		r.Name = &trimmed
	}
	if r.Email != nil {
		normalized := NormalizeEmail(*r.Email)
		r.Email = &normalized
	}
}

func (r *UpdateAdminRequest) Validate() error {
	if r.Name != nil && (len(*r.Name) < 2 || len(*r.Name) > 50) {
		return fmt.Errorf("name must be between 2 and 50 characters")
	}
	if r.Email != nil && !IsValidEmail(*r.Email) {
		return fmt.Errorf("invalid email address")
	}
	if r.Role != nil && *r.Role != RoleSuperAdmin && *r.Role != RoleOperator {
		return fmt.Errorf("role must be SUPER_ADMIN or OPERATOR")
	}
	return nil
}

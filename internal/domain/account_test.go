package domain_test

import (
	"testing"

	"github.com/heliohq/claims-portal/internal/domain"
)

func TestSignupUserRequestValidation(t *testing.T) {
	valid := func() domain.SignupUserRequest {
		return domain.SignupUserRequest{
			Name:     "Asha Vendor",
			Email:    "asha@example.com",
			Phone:    "9876543210",
			Password: "password123",
			Role:     domain.RoleVendor,
		}
	}

	req := valid()
	req.Normalize()
	if err := req.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*domain.SignupUserRequest)
	}{
		{"short name", func(r *domain.SignupUserRequest) { r.Name = "A" }},
		{"bad email", func(r *domain.SignupUserRequest) { r.Email = "asha@nodomain" }},
		{"short password", func(r *domain.SignupUserRequest) { r.Password = "short" }},
		{"phone too short", func(r *domain.SignupUserRequest) { r.Phone = "98765" }},
		{"phone with letters", func(r *domain.SignupUserRequest) { r.Phone = "98765abcde" }},
		{"admin role not allowed", func(r *domain.SignupUserRequest) { r.Role = domain.RoleSuperAdmin }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			req.Normalize()
			if err := req.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	req := domain.SignupUserRequest{
		Name:     "  Asha Vendor  ",
		Email:    "  Asha@Example.COM ",
		Phone:    " 9876543210 ",
		Password: "password123",
		Role:     domain.RoleVendor,
	}
	req.Normalize()

	if req.Email != "asha@example.com" {
		t.Fatalf("email not normalized: %q", req.Email)
	}
	if req.Name != "Asha Vendor" || req.Phone != "9876543210" {
		t.Fatalf("fields not trimmed: %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("normalized request rejected: %v", err)
	}
}

func TestUpdateAdminRequestValidatesOnlySetFields(t *testing.T) {
	empty := domain.UpdateAdminRequest{}
	if err := empty.Validate(); err != nil {
		t.Fatalf("empty patch rejected: %v", err)
	}

	badRole := "VENDOR"
	req := domain.UpdateAdminRequest{Role: &badRole}
	if err := req.Validate(); err == nil {
		t.Fatal("user roles must not be assignable to admins")
	}

	name := "  Renamed  "
	req = domain.UpdateAdminRequest{Name: &name}
	req.Normalize()
	if *req.Name != "Renamed" {
		t.Fatalf("name not trimmed: %q", *req.Name)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("valid patch rejected: %v", err)
	}
}

package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Account types
const (
	AccountTypeSavings = "SAVINGS"
	AccountTypeCurrent = "CURRENT"
)

// KYC holds a user's bank and tax identity, owned one-to-one by the user.
// Created once, then only updatable by a super-admin.
type KYC struct {
	ID                string    `json:"id"`
	BankAccountName   string    `json:"bankAccountName"`
	BankName          string    `json:"bankName"`
	AccountType       string    `json:"accountType"`
	AccountNumber     string    `json:"accountNumber"`
	IfscCode          string    `json:"ifscCode"`
	PanNumber         string    `json:"panNumber"`
	GstRegistered     bool      `json:"gstRegistered"`
	GstNumber         *string   `json:"gstNumber,omitempty"`
	BankDetailsURL    string    `json:"bankDetailsUrl"`
	PanCardURL        string    `json:"panCardUrl"`
	GstCertificateURL *string   `json:"gstCertificateUrl,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// KycRequest carries the full KYC field set; updates are whole-record
// overwrites, so submit and update share the shape.
type KycRequest struct {
	BankAccountName   string  `json:"bankAccountName"`
	BankName          string  `json:"bankName"`
	AccountType       string  `json:"accountType"`
	AccountNumber     string  `json:"accountNumber"`
	IfscCode          string  `json:"ifscCode"`
	PanNumber         string  `json:"panNumber"`
	GstRegistered     bool    `json:"gstRegistered"`
	GstNumber         *string `json:"gstNumber,omitempty"`
	BankDetailsURL    string  `json:"bankDetailsUrl"`
	PanCardURL        string  `json:"panCardUrl"`
	GstCertificateURL *string `json:"gstCertificateUrl,omitempty"`
}

var (
	ifscRegex = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	panRegex  = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	gstRegex  = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
)

func (r *KycRequest) Normalize() {
	r.BankAccountName = strings.TrimSpace(r.BankAccountName)
	r.BankName = strings.TrimSpace(r.BankName)
	r.AccountNumber = strings.TrimSpace(r.AccountNumber)
	r.IfscCode = strings.ToUpper(strings.TrimSpace(r.IfscCode))
	r.PanNumber = strings.ToUpper(strings.TrimSpace(r.PanNumber))
	if r.GstNumber != nil {
		gst := strings.ToUpper(strings.TrimSpace(*r.GstNumber))
		r.GstNumber = &gst
	}
}

func (r *KycRequest) Validate() error {
	if len(r.BankAccountName) < 2 {
		return fmt.Errorf("bank account name must be at least 2 characters long")
	}
	if len(r.BankName) < 2 {
		return fmt.Errorf("bank name must be at least 2 characters long")
	}
	if r.AccountType != AccountTypeSavings && r.AccountType != AccountTypeCurrent {
		return fmt.Errorf("account type must be SAVINGS or CURRENT")
	}
	if len(r.AccountNumber) < 5 || len(r.AccountNumber) > 20 {
		return fmt.Errorf("account number must be between 5 and 20 characters")
	}
	if !ifscRegex.MatchString(r.IfscCode) {
		return fmt.Errorf("invalid IFSC code format")
	}
	if !panRegex.MatchString(r.PanNumber) {
		return fmt.Errorf("invalid PAN number format")
	}
	if r.GstNumber != nil && !gstRegex.MatchString(*r.GstNumber) {
		return fmt.Errorf("invalid GST number format")
	}
	if !IsValidURL(r.BankDetailsURL) {
		return fmt.Errorf("bank details URL must be a valid URL")
	}
	if !IsValidURL(r.PanCardURL) {
		return fmt.Errorf("PAN card URL must be a valid URL")
	}
	if r.GstRegistered {
		if r.GstNumber == nil || *r.GstNumber == "" {
			return fmt.Errorf("GST number is required when GST is registered")
		}
		if r.GstCertificateURL == nil || !IsValidURL(*r.GstCertificateURL) {
			return fmt.Errorf("GST certificate URL is required when GST is registered")
		}
	}
	return nil
}

package domain

import (
	"fmt"
	"net/url"
	"time"
)

// Form and claim statuses
const (
	FormStatusInReview  = "INREVIEW"
	ClaimStatusInReview = "INREVIEW"
)

// Invoice types
const (
	InvoiceFinal    = "FINAL"
	InvoiceProforma = "PROFORMA"
)

// Form aggregates a user's claims for one submission. TotalClaimAmount is
// the sum of the child claim amounts, computed at creation.
type Form struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	FormStatus       string    `json:"formStatus"`
	TotalClaimAmount float64   `json:"totalClaimAmount"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Claim is a single reimbursable line item belonging to one form.
type Claim struct {
	ID          string    `json:"id"`
	FormID      string    `json:"formId"`
	UserID      string    `json:"userId"`
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	InvoiceType string    `json:"invoiceType"`
	Remarks     *string   `json:"remarks,omitempty"`
	BillURL     string    `json:"billUrl"`
	ClaimStatus string    `json:"claimStatus"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ClaimInput struct {
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	InvoiceType string    `json:"invoiceType"`
	Remarks     *string   `json:"remarks,omitempty"`
	BillURL     string    `json:"billUrl"`
}

type CreateFormRequest struct {
	Claims []ClaimInput `json:"claims"`
}

func (r *CreateFormRequest) Validate() error {
	if len(r.Claims) == 0 {
		return fmt.Errorf("at least one claim is required")
	}
	for i, c := range r.Claims {
		if c.Date.IsZero() {
			return fmt.Errorf("claim %d: date is required", i+1)
		}
		if c.Amount < 1 {
			return fmt.Errorf("claim %d: amount must be at least 1", i+1)
		}
		if c.InvoiceType != InvoiceFinal && c.InvoiceType != InvoiceProforma {
			return fmt.Errorf("claim %d: invoice type must be FINAL or PROFORMA", i+1)
		}
		if c.Remarks != nil && len(*c.Remarks) > 500 {
			return fmt.Errorf("claim %d: remarks must be at most 500 characters", i+1)
		}
		if !IsValidURL(c.BillURL) {
			return fmt.Errorf("claim %d: bill URL must be a valid URL", i+1)
		}
	}
	return nil
}

// TotalAmount sums the claim amounts; forms never carry an independently
// editable total.
func (r *CreateFormRequest) TotalAmount() float64 {
	var total float64
	for _, c := range r.Claims {
		total += c.Amount
	}
	return total
}

func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

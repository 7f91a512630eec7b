package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heliohq/claims-portal/internal/domain"
)

type FormRepository interface {
	// CreateWithClaims persists the form and all its claims in one
	// transaction; either everything commits or nothing does.
	CreateWithClaims(ctx context.Context, userID string, total float64, claims []domain.ClaimInput) (*domain.Form, []domain.Claim, error)
	GetByIDWithClaims(ctx context.Context, id string) (*domain.Form, []domain.Claim, error)
}

type formRepository struct {
	pool *pgxpool.Pool
}

func NewFormRepository(pool *pgxpool.Pool) FormRepository {
	return &formRepository{pool: pool}
}

const formCols = `id, user_id, form_status, total_claim_amount, created_at, updated_at`
const claimCols = `id, form_id, user_id, date, amount, invoice_type, remarks, bill_url, claim_status, created_at`

func scanForm(row pgx.Row) (*domain.Form, error) {
	var f domain.Form
	err := row.Scan(&f.ID, &f.UserID, &f.FormStatus, &f.TotalClaimAmount, &f.CreatedAt, &f.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *formRepository) CreateWithClaims(ctx context.Context, userID string, total float64, claims []domain.ClaimInput) (*domain.Form, []domain.Claim, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	const insertForm = `
		INSERT INTO forms (user_id, form_status, total_claim_amount)
		VALUES ($1, $2, $3)
		RETURNING ` + formCols

	form, err := scanForm(tx.QueryRow(ctx, insertForm, userID, domain.FormStatusInReview, total))
	if err != nil {
		return nil, nil, err
	}

	const insertClaim = `
		INSERT INTO claims (form_id, user_id, date, amount, invoice_type, remarks, bill_url, claim_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + claimCols

	created := make([]domain.Claim, 0, len(claims))
	for _, in := range claims {
		var c domain.Claim
		err := tx.QueryRow(ctx, insertClaim,
			form.ID, userID, in.Date, in.Amount, in.InvoiceType, in.Remarks, in.BillURL, domain.ClaimStatusInReview,
		).Scan(
			&c.ID, &c.FormID, &c.UserID, &c.Date, &c.Amount, &c.InvoiceType,
			&c.Remarks, &c.BillURL, &c.ClaimStatus, &c.CreatedAt,
		)
		if err != nil {
			return nil, nil, err
		}
		created = append(created, c)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	return form, created, nil
}

func (r *formRepository) GetByIDWithClaims(ctx context.Context, id string) (*domain.Form, []domain.Claim, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	const formQ = `SELECT ` + formCols + ` FROM forms WHERE id = $1`

	form, err := scanForm(r.pool.QueryRow(ctx, formQ, id))
	if err != nil || form == nil {
		return nil, nil, err
	}

	const claimsQ = `SELECT ` + claimCols + ` FROM claims WHERE form_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, claimsQ, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var claims []domain.Claim
	for rows.Next() {
		var c domain.Claim
		if err := rows.Scan(
			&c.ID, &c.FormID, &c.UserID, &c.Date, &c.Amount, &c.InvoiceType,
			&c.Remarks, &c.BillURL, &c.ClaimStatus, &c.CreatedAt,
		); err != nil {
			return nil, nil, err
		}
		claims = append(claims, c)
	}

	return form, claims, rows.Err()
}

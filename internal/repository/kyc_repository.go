package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heliohq/claims-portal/internal/domain"
)

type KycRepository interface {
	// SubmitForUser creates the KYC record and links it to the user in one
	// transaction; no partial state survives a failure.
	SubmitForUser(ctx context.Context, userID string, req *domain.KycRequest) (*domain.KYC, *domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.KYC, error)
	FindByUserID(ctx context.Context, userID string) (*domain.KYC, error)
	Update(ctx context.Context, id string, req *domain.KycRequest) (*domain.KYC, error)
}

type kycRepository struct {
	pool *pgxpool.Pool
}

func NewKycRepository(pool *pgxpool.Pool) KycRepository {
	return &kycRepository{pool: pool}
}

const kycCols = `id, bank_account_name, bank_name, account_type, account_number, ifsc_code, pan_number, gst_registered, gst_number, bank_details_url, pan_card_url, gst_certificate_url, created_at, updated_at`

func scanKyc(row pgx.Row) (*domain.KYC, error) {
	var k domain.KYC
	err := row.Scan(
		&k.ID, &k.BankAccountName, &k.BankName, &k.AccountType, &k.AccountNumber,
		&k.IfscCode, &k.PanNumber, &k.GstRegistered, &k.GstNumber,
		&k.BankDetailsURL, &k.PanCardURL, &k.GstCertificateURL,
		&k.CreatedAt, &k.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *kycRepository) SubmitForUser(ctx context.Context, userID string, req *domain.KycRequest) (*domain.KYC, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	const insertKyc = `
		INSERT INTO kyc (bank_account_name, bank_name, account_type, account_number, ifsc_code, pan_number, gst_registered, gst_number, bank_details_url, pan_card_url, gst_certificate_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + kycCols

	kyc, err := scanKyc(tx.QueryRow(ctx, insertKyc,
		req.BankAccountName, req.BankName, req.AccountType, req.AccountNumber,
		req.IfscCode, req.PanNumber, req.GstRegistered, req.GstNumber,
		req.BankDetailsURL, req.PanCardURL, req.GstCertificateURL,
	))
	if err != nil {
		return nil, nil, err
	}

	const linkUser = `
		UPDATE users
		SET kyc_id = $2, is_kyc_complete = true, updated_at = now()
		WHERE id = $1
		RETURNING ` + userCols

	user, err := scanUser(tx.QueryRow(ctx, linkUser, userID, kyc.ID))
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	return kyc, user, nil
}

func (r *kycRepository) FindByID(ctx context.Context, id string) (*domain.KYC, error) {
	const q = `SELECT ` + kycCols + ` FROM kyc WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanKyc(r.pool.QueryRow(ctx, q, id))
}

func (r *kycRepository) FindByUserID(ctx context.Context, userID string) (*domain.KYC, error) {
	const q = `
		SELECT ` + kycCols + `
		FROM kyc
		JOIN users ON users.kyc_id = kyc.id
		WHERE users.id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanKyc(r.pool.QueryRow(ctx, q, userID))
}

func (r *kycRepository) Update(ctx context.Context, id string, req *domain.KycRequest) (*domain.KYC, error) {
	const q = `
		UPDATE kyc
		SET
			bank_account_name = $2,
			bank_name = $3,
			account_type = $4,
			account_number = $5,
			ifsc_code = $6,
			pan_number = $7,
			gst_registered = $8,
			gst_number = $9,
			bank_details_url = $10,
			pan_card_url = $11,
			gst_certificate_url = $12,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + kycCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanKyc(r.pool.QueryRow(ctx, q, id,
		req.BankAccountName, req.BankName, req.AccountType, req.AccountNumber,
		req.IfscCode, req.PanNumber, req.GstRegistered, req.GstNumber,
		req.BankDetailsURL, req.PanCardURL, req.GstCertificateURL,
	))
}

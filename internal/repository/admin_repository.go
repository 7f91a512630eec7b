package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heliohq/claims-portal/internal/domain"
)

// ErrDuplicateEmail surfaces a unique-constraint hit on an email column.
var ErrDuplicateEmail = errors.New("email already in use")

type AdminRepository interface {
	Create(ctx context.Context, req *domain.SignupAdminRequest, passwordHash string) (*domain.Admin, error)
	FindByEmail(ctx context.Context, email string) (*domain.Admin, error)
	FindByID(ctx context.Context, id string) (*domain.Admin, error)
	ListByRole(ctx context.Context, role string) ([]domain.AdminSummary, error)
	Update(ctx context.Context, id string, req *domain.UpdateAdminRequest) (*domain.Admin, error)
	SoftDelete(ctx context.Context, id string) (*domain.Admin, error)
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	FindByResetToken(ctx context.Context, tokenHash string) (*domain.Admin, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) (*domain.Admin, error)
}

type adminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

const adminCols = `id, name, email, password, role, is_active, password_changed_at, created_at, updated_at, deleted_at`

func scanAdmin(row pgx.Row) (*domain.Admin, error) {
	var a domain.Admin
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.IsActive,
		&a.PasswordChangedAt, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *adminRepository) Create(ctx context.Context, req *domain.SignupAdminRequest, passwordHash string) (*domain.Admin, error) {
	const q = `
		INSERT INTO admins (name, email, password, role, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING ` + adminCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	admin, err := scanAdmin(r.pool.QueryRow(ctx, q, req.Name, req.Email, passwordHash, req.Role))
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	return admin, err
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	const q = `SELECT ` + adminCols + ` FROM admins WHERE email = $1 AND is_active AND deleted_at IS NULL`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAdmin(r.pool.QueryRow(ctx, q, email))
}

func (r *adminRepository) FindByID(ctx context.Context, id string) (*domain.Admin, error) {
	const q = `SELECT ` + adminCols + ` FROM admins WHERE id = $1 AND is_active AND deleted_at IS NULL`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAdmin(r.pool.QueryRow(ctx, q, id))
}

func (r *adminRepository) ListByRole(ctx context.Context, role string) ([]domain.AdminSummary, error) {
	const q = `
		SELECT id, name, email, is_active
		FROM admins
		WHERE role = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []domain.AdminSummary
	for rows.Next() {
		var a domain.AdminSummary
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.IsActive); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}

	return admins, rows.Err()
}

func (r *adminRepository) Update(ctx context.Context, id string, req *domain.UpdateAdminRequest) (*domain.Admin, error) {
	const q = `
		UPDATE admins
		SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			role = COALESCE($4, role),
			updated_at = now()
		WHERE id = $1 AND is_active AND deleted_at IS NULL
		RETURNING ` + adminCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	admin, err := scanAdmin(r.pool.QueryRow(ctx, q, id, req.Name, req.Email, req.Role))
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	return admin, err
}

func (r *adminRepository) SoftDelete(ctx context.Context, id string) (*domain.Admin, error) {
	const q = `
		UPDATE admins
		SET is_active = false, deleted_at = now(), updated_at = now()
		WHERE id = $1 AND is_active AND deleted_at IS NULL
		RETURNING ` + adminCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAdmin(r.pool.QueryRow(ctx, q, id))
}

func (r *adminRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	const q = `
		UPDATE admins
		SET password_reset_token = $2, password_reset_expires_at = $3, updated_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id, tokenHash, expiresAt)
	return err
}

func (r *adminRepository) FindByResetToken(ctx context.Context, tokenHash string) (*domain.Admin, error) {
	const q = `
		SELECT ` + adminCols + `
		FROM admins
		WHERE password_reset_token = $1 AND password_reset_expires_at >= now()
		  AND is_active AND deleted_at IS NULL`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAdmin(r.pool.QueryRow(ctx, q, tokenHash))
}

func (r *adminRepository) UpdatePassword(ctx context.Context, id, passwordHash string) (*domain.Admin, error) {
	const q = `
		UPDATE admins
		SET
			password = $2,
			password_reset_token = NULL,
			password_reset_expires_at = NULL,
			password_changed_at = now(),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + adminCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAdmin(r.pool.QueryRow(ctx, q, id))
}

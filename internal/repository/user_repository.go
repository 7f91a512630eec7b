package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heliohq/claims-portal/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, req *domain.SignupUserRequest, passwordHash, verifyTokenHash string, verifyExpiresAt time.Time) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUnverifiedByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.UserSummary, error)
	SetVerificationToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	FindByVerificationToken(ctx context.Context, tokenHash string) (*domain.User, error)
	ApplyVerification(ctx context.Context, id string, promoteEmail *string) (*domain.User, error)
	StageEmailChange(ctx context.Context, id, newEmail, tokenHash string, expiresAt time.Time) error
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	FindByResetToken(ctx context.Context, tokenHash string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userCols = `id, name, email, password, phone, role, is_verified, pending_email, kyc_id, is_kyc_complete, password_changed_at, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Role,
		&u.IsVerified, &u.PendingEmail, &u.KycID, &u.IsKycComplete,
		&u.PasswordChangedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, req *domain.SignupUserRequest, passwordHash, verifyTokenHash string, verifyExpiresAt time.Time) (*domain.User, error) {
	const q = `
		INSERT INTO users (name, email, password, phone, role, is_verified, verification_token, verification_expires_at)
		VALUES ($1, $2, $3, $4, $5, false, $6, $7)
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	user, err := scanUser(r.pool.QueryRow(ctx, q,
		req.Name, req.Email, passwordHash, req.Phone, req.Role, verifyTokenHash, verifyExpiresAt,
	))
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	return user, err
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *userRepository) FindUnverifiedByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = $1 AND NOT is_verified`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *userRepository) List(ctx context.Context) ([]domain.UserSummary, error) {
	const q = `SELECT id, name, email FROM users ORDER BY created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.UserSummary
	for rows.Next() {
		var u domain.UserSummary
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (r *userRepository) SetVerificationToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET verification_token = $2, verification_expires_at = $3, updated_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id, tokenHash, expiresAt)
	return err
}

func (r *userRepository) FindByVerificationToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	const q = `
		SELECT ` + userCols + `
		FROM users
		WHERE verification_token = $1 AND verification_expires_at >= now()`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.pool.QueryRow(ctx, q, tokenHash))
}

// ApplyVerification consumes the verification token: marks the user
// verified and, when promoteEmail is set, makes the staged address primary.
func (r *userRepository) ApplyVerification(ctx context.Context, id string, promoteEmail *string) (*domain.User, error) {
	const q = `
		UPDATE users
		SET
			verification_token = NULL,
			verification_expires_at = NULL,
			is_verified = true,
			email = COALESCE($2, email),
			pending_email = CASE WHEN $2::text IS NULL THEN pending_email ELSE NULL END,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	user, err := scanUser(r.pool.QueryRow(ctx, q, id, promoteEmail))
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	return user, err
}

func (r *userRepository) StageEmailChange(ctx context.Context, id, newEmail, tokenHash string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET pending_email = $2, verification_token = $3, verification_expires_at = $4, updated_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id, newEmail, tokenHash, expiresAt)
	return err
}

func (r *userRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET password_reset_token = $2, password_reset_expires_at = $3, updated_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id, tokenHash, expiresAt)
	return err
}

func (r *userRepository) FindByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	const q = `
		SELECT ` + userCols + `
		FROM users
		WHERE password_reset_token = $1 AND password_reset_expires_at >= now()`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.pool.QueryRow(ctx, q, tokenHash))
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) (*domain.User, error) {
	const q = `
		UPDATE users
		SET
			password = $2,
			password_reset_token = NULL,
			password_reset_expires_at = NULL,
			password_changed_at = now(),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.pool.QueryRow(ctx, q, id))
}

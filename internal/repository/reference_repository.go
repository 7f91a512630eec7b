package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Column maps a table column to its JSON field name.
type Column struct {
	Name string
	JSON string
}

// Resource describes one reference-data entity for the generic CRUD
// handlers. Tables and columns come from a compile-time registry, never
// from request input.
type Resource struct {
	Name     string // URL segment and log name, e.g. "costCenter"
	Table    string
	Columns  []Column // full writable shape, excluding id/timestamps
	Selected []string // JSON names projected on list/get; empty = id + all columns
}

func (res Resource) column(jsonName string) (string, bool) {
	for _, c := range res.Columns {
		if c.JSON == jsonName {
			return c.Name, true
		}
	}
	return "", false
}

// selectExpr renders the projection with JSON aliases, always including id.
func (res Resource) selectExpr() string {
	selected := res.Selected
	if len(selected) == 0 {
		for _, c := range res.Columns {
			selected = append(selected, c.JSON)
		}
	}
	parts := []string{`id`}
	for _, jsonName := range selected {
		if col, ok := res.column(jsonName); ok {
			parts = append(parts, fmt.Sprintf(`%s AS %q`, col, jsonName))
		}
	}
	return strings.Join(parts, ", ")
}

// fullExpr renders every column for create/update responses.
func (res Resource) fullExpr() string {
	parts := []string{`id`}
	for _, c := range res.Columns {
		parts = append(parts, fmt.Sprintf(`%s AS %q`, c.Name, c.JSON))
	}
	parts = append(parts, `created_at AS "createdAt"`)
	return strings.Join(parts, ", ")
}

// ReferenceRepository is one code path for every reference entity; which
// entity it touches is entirely a matter of the Resource passed in.
type ReferenceRepository interface {
	List(ctx context.Context, res Resource) ([]map[string]any, error)
	GetOne(ctx context.Context, res Resource, id string) (map[string]any, error)
	Create(ctx context.Context, res Resource, values map[string]any) (map[string]any, error)
	Update(ctx context.Context, res Resource, id string, values map[string]any) (map[string]any, error)
	SoftDelete(ctx context.Context, res Resource, id string) (bool, error)
}

type referenceRepository struct {
	pool *pgxpool.Pool
}

func NewReferenceRepository(pool *pgxpool.Pool) ReferenceRepository {
	return &referenceRepository{pool: pool}
}

func (r *referenceRepository) List(ctx context.Context, res Resource) ([]map[string]any, error) {
	q := fmt.Sprintf(
		`SELECT %s FROM %s WHERE deleted_at IS NULL ORDER BY created_at DESC`,
		res.selectExpr(), res.Table,
	)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowToMap)
}

func (r *referenceRepository) GetOne(ctx context.Context, res Resource, id string) (map[string]any, error) {
	q := fmt.Sprintf(
		`SELECT %s FROM %s WHERE id = $1 AND deleted_at IS NULL`,
		res.selectExpr(), res.Table,
	)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, id)
	if err != nil {
		return nil, err
	}

	record, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return record, err
}

func (r *referenceRepository) Create(ctx context.Context, res Resource, values map[string]any) (map[string]any, error) {
	cols, placeholders, args := buildColumnArgs(res, values, 0)
	q := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		res.Table, strings.Join(cols, ", "), strings.Join(placeholders, ", "), res.fullExpr(),
	)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectOneRow(rows, pgx.RowToMap)
}

func (r *referenceRepository) Update(ctx context.Context, res Resource, id string, values map[string]any) (map[string]any, error) {
	cols, placeholders, args := buildColumnArgs(res, values, 1)
	assignments := make([]string, 0, len(cols))
	for i, col := range cols {
		assignments = append(assignments, col+" = "+placeholders[i])
	}
	q := fmt.Sprintf(
		`UPDATE %s SET %s, updated_at = now() WHERE id = $1 AND deleted_at IS NULL RETURNING %s`,
		res.Table, strings.Join(assignments, ", "), res.fullExpr(),
	)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, append([]any{id}, args...)...)
	if err != nil {
		return nil, err
	}

	record, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return record, err
}

func (r *referenceRepository) SoftDelete(ctx context.Context, res Resource, id string) (bool, error) {
	q := fmt.Sprintf(
		`UPDATE %s SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		res.Table,
	)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}

// buildColumnArgs keeps only values whose JSON name is in the resource's
// column registry, in registry order.
func buildColumnArgs(res Resource, values map[string]any, offset int) (cols, placeholders []string, args []any) {
	n := offset
	for _, c := range res.Columns {
		value, ok := values[c.JSON]
		if !ok {
			continue
		}
		n++
		cols = append(cols, c.Name)
		placeholders = append(placeholders, fmt.Sprintf("$%d", n))
		args = append(args, value)
	}
	return cols, placeholders, args
}

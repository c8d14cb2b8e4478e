package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	masterdata "dormitory-cloud/internal/masterdata/domain"
)

const defaultBranchesTable = "branches"

// BranchRepository is a Postgres implementation for branches.
type BranchRepository struct {
	db    *sql.DB
	table string
}

// NewBranchRepository constructs a repository.
func NewBranchRepository(db *sql.DB, opts ...BranchOption) *BranchRepository {
	repo := &BranchRepository{db: db, table: defaultBranchesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// BranchOption configures the repository.
type BranchOption func(*BranchRepository)

// WithBranchTable overrides the default table name.
func WithBranchTable(table string) BranchOption {
	return func(repo *BranchRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads a branch by id.
func (r *BranchRepository) Get(ctx context.Context, id string) (*masterdata.Branch, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("branch repo: nil db")
	}
	if id == "" {
		return nil, errors.New("branch repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT id, name, address, phone, created_at, updated_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var branch masterdata.Branch
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&branch.ID,
		&branch.Name,
		&branch.Address,
		&branch.Phone,
		&branch.CreatedAt,
		&branch.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	branch.CreatedAt = branch.CreatedAt.UTC()
	branch.UpdatedAt = branch.UpdatedAt.UTC()
	return &branch, nil
}

// List returns all branches ordered by name.
func (r *BranchRepository) List(ctx context.Context) ([]masterdata.Branch, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("branch repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, name, address, phone, created_at, updated_at
FROM %s
ORDER BY name ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []masterdata.Branch
	for rows.Next() {
		var branch masterdata.Branch
		if err := rows.Scan(
			&branch.ID,
			&branch.Name,
			&branch.Address,
			&branch.Phone,
			&branch.CreatedAt,
			&branch.UpdatedAt,
		); err != nil {
			return nil, err
		}
		branch.CreatedAt = branch.CreatedAt.UTC()
		branch.UpdatedAt = branch.UpdatedAt.UTC()
		result = append(result, branch)
	}
	return result, rows.Err()
}

// Save upserts a branch.
func (r *BranchRepository) Save(ctx context.Context, branch *masterdata.Branch) error {
	if r == nil || r.db == nil {
		return errors.New("branch repo: nil db")
	}
	if branch == nil {
		return errors.New("branch repo: nil branch")
	}
	if err := branch.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, name, address, phone
) VALUES (
	$1, $2, $3, $4
)
ON CONFLICT (id)
DO UPDATE SET
	name = EXCLUDED.name,
	address = EXCLUDED.address,
	phone = EXCLUDED.phone,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(ctx, query, branch.ID, branch.Name, branch.Address, branch.Phone)
	return err
}

// Delete removes a branch.
func (r *BranchRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("branch repo: nil db")
	}
	if id == "" {
		return errors.New("branch repo: empty id")
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	masterdata "dormitory-cloud/internal/masterdata/domain"
)

const defaultBuildingsTable = "buildings"

// BuildingRepository is a Postgres implementation for buildings.
type BuildingRepository struct {
	db    *sql.DB
	table string
}

// NewBuildingRepository constructs a repository.
func NewBuildingRepository(db *sql.DB, opts ...BuildingOption) *BuildingRepository {
	repo := &BuildingRepository{db: db, table: defaultBuildingsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// BuildingOption configures the repository.
type BuildingOption func(*BuildingRepository)

// WithBuildingTable overrides the default table name.
func WithBuildingTable(table string) BuildingOption {
	return func(repo *BuildingRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads a building by id.
func (r *BuildingRepository) Get(ctx context.Context, id string) (*masterdata.Building, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("building repo: nil db")
	}
	if id == "" {
		return nil, errors.New("building repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT id, branch_id, name, floors, created_at, updated_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var building masterdata.Building
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&building.ID,
		&building.BranchID,
		&building.Name,
		&building.Floors,
		&building.CreatedAt,
		&building.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	building.CreatedAt = building.CreatedAt.UTC()
	building.UpdatedAt = building.UpdatedAt.UTC()
	return &building, nil
}

// ListByBranch returns buildings for a branch.
func (r *BuildingRepository) ListByBranch(ctx context.Context, branchID string) ([]masterdata.Building, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("building repo: nil db")
	}
	if branchID == "" {
		return nil, errors.New("building repo: empty branch id")
	}

	query := fmt.Sprintf(`
SELECT id, branch_id, name, floors, created_at, updated_at
FROM %s
WHERE branch_id = $1
ORDER BY name ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []masterdata.Building
	for rows.Next() {
		var building masterdata.Building
		if err := rows.Scan(
			&building.ID,
			&building.BranchID,
			&building.Name,
			&building.Floors,
			&building.CreatedAt,
			&building.UpdatedAt,
		); err != nil {
			return nil, err
		}
		building.CreatedAt = building.CreatedAt.UTC()
		building.UpdatedAt = building.UpdatedAt.UTC()
		result = append(result, building)
	}
	return result, rows.Err()
}

// Save upserts a building.
func (r *BuildingRepository) Save(ctx context.Context, building *masterdata.Building) error {
	if r == nil || r.db == nil {
		return errors.New("building repo: nil db")
	}
	if building == nil {
		return errors.New("building repo: nil building")
	}
	if err := building.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, branch_id, name, floors
) VALUES (
	$1, $2, $3, $4
)
ON CONFLICT (id)
DO UPDATE SET
	branch_id = EXCLUDED.branch_id,
	name = EXCLUDED.name,
	floors = EXCLUDED.floors,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(ctx, query, building.ID, building.BranchID, building.Name, building.Floors)
	return err
}

// Delete removes a building.
func (r *BuildingRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("building repo: nil db")
	}
	if id == "" {
		return errors.New("building repo: empty id")
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

package masterdata

import (
	"context"
	"errors"
	"time"
)

// Branch represents a dormitory branch (one site, possibly several buildings).
type Branch struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks branch invariants.
func (b Branch) Validate() error {
	if b.ID == "" {
		return errors.New("branch: empty id")
	}
	if b.Name == "" {
		return errors.New("branch: empty name")
	}
	return nil
}

// Building represents one building inside a branch.
type Building struct {
	ID        string
	BranchID  string
	Name      string
	Floors    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks building invariants.
func (b Building) Validate() error {
	if b.ID == "" {
		return errors.New("building: empty id")
	}
	if b.BranchID == "" {
		return errors.New("building: empty branch id")
	}
	if b.Name == "" {
		return errors.New("building: empty name")
	}
	return nil
}

// BranchRepository manages branch persistence.
type BranchRepository interface {
	Get(ctx context.Context, id string) (*Branch, error)
	List(ctx context.Context) ([]Branch, error)
	Save(ctx context.Context, branch *Branch) error
	Delete(ctx context.Context, id string) error
}

// BuildingRepository manages building persistence.
type BuildingRepository interface {
	Get(ctx context.Context, id string) (*Building, error)
	ListByBranch(ctx context.Context, branchID string) ([]Building, error)
	Save(ctx context.Context, building *Building) error
	Delete(ctx context.Context, id string) error
}

package memory

import (
	"context"
	"sort"
	"sync"

	tenancy "dormitory-cloud/internal/tenancy/domain"
)

// ContractRepository is an in-memory repository for contracts.
type ContractRepository struct {
	mu   sync.RWMutex
	data map[string]tenancy.Contract
}

// NewContractRepository constructs a repository.
func NewContractRepository() *ContractRepository {
	return &ContractRepository{data: make(map[string]tenancy.Contract)}
}

// Get loads a contract.
func (r *ContractRepository) Get(ctx context.Context, id string) (*tenancy.Contract, error) {
	_ = ctx
	r.mu.RLock()
	contract, ok := r.data[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	copy := contract
	return &copy, nil
}

// ListByUser lists contracts for a user.
func (r *ContractRepository) ListByUser(ctx context.Context, userID string) ([]tenancy.Contract, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []tenancy.Contract
	for _, contract := range r.data {
		if contract.UserID == userID {
			result = append(result, contract)
		}
	}
	sortContracts(result)
	return result, nil
}

// ListByStatuses lists contracts matching the given canonical statuses.
func (r *ContractRepository) ListByStatuses(ctx context.Context, statuses []tenancy.ContractStatus) ([]tenancy.Contract, error) {
	_ = ctx
	wanted := make(map[tenancy.ContractStatus]struct{}, len(statuses))
	for _, status := range statuses {
		wanted[status] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []tenancy.Contract
	for _, contract := range r.data {
		normalized, ok := tenancy.NormalizeContractStatus(string(contract.Status))
		if !ok {
			continue
		}
		if _, match := wanted[normalized]; match {
			result = append(result, contract)
		}
	}
	sortContracts(result)
	return result, nil
}

// Save persists a contract (overwrites existing).
func (r *ContractRepository) Save(ctx context.Context, contract *tenancy.Contract) error {
	_ = ctx
	if contract == nil {
		return tenancy.ErrEmptyContractID
	}
	if err := contract.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.data[contract.ID] = *contract
	r.mu.Unlock()
	return nil
}

// SetStatus updates the status of a stored contract.
func (r *ContractRepository) SetStatus(ctx context.Context, id string, status tenancy.ContractStatus) error {
	_ = ctx
	normalized, ok := tenancy.NormalizeContractStatus(string(status))
	if !ok {
		return tenancy.ErrInvalidStatus
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	contract, exists := r.data[id]
	if !exists {
		return tenancy.ErrContractNotFound
	}
	contract.Status = normalized
	r.data[id] = contract
	return nil
}

func sortContracts(contracts []tenancy.Contract) {
	sort.Slice(contracts, func(i, j int) bool {
		if contracts[i].CreatedAt.Equal(contracts[j].CreatedAt) {
			return contracts[i].ID < contracts[j].ID
		}
		return contracts[i].CreatedAt.Before(contracts[j].CreatedAt)
	})
}

// UserRepository is an in-memory repository for users.
type UserRepository struct {
	mu   sync.RWMutex
	data map[string]tenancy.User
}

// NewUserRepository constructs a repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{data: make(map[string]tenancy.User)}
}

// Get loads a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*tenancy.User, error) {
	_ = ctx
	r.mu.RLock()
	user, ok := r.data[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	copy := user
	return &copy, nil
}

// GetByUsername loads a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*tenancy.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.data {
		if user.Username == username {
			copy := user
			return &copy, nil
		}
	}
	return nil, nil
}

// Save persists a user.
func (r *UserRepository) Save(ctx context.Context, user *tenancy.User) error {
	_ = ctx
	if user == nil {
		return tenancy.ErrUserNotFound
	}
	if err := user.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.data[user.ID] = *user
	r.mu.Unlock()
	return nil
}

package tenancy

import "errors"

var (
	// ErrEmptyContractID is returned when contract id is empty.
	ErrEmptyContractID = errors.New("tenancy: empty contract id")
	// ErrEmptyRoomID is returned when room id is empty.
	ErrEmptyRoomID = errors.New("tenancy: empty room id")
	// ErrEmptyUserID is returned when user id is empty.
	ErrEmptyUserID = errors.New("tenancy: empty user id")
	// ErrInvalidStatus is returned for an unknown contract status.
	ErrInvalidStatus = errors.New("tenancy: invalid contract status")
	// ErrInvalidWaterConfig is returned for an unknown water config type.
	ErrInvalidWaterConfig = errors.New("tenancy: invalid water config type")
	// ErrNegativeValue is returned when a negative value is provided.
	ErrNegativeValue = errors.New("tenancy: negative value")
	// ErrContractNotFound is returned when a contract is not found.
	ErrContractNotFound = errors.New("tenancy: contract not found")
	// ErrRoomNotFound is returned when the referenced room does not exist.
	ErrRoomNotFound = errors.New("tenancy: room not found")
	// ErrRoomOccupied is returned when activating a contract on a taken room.
	ErrRoomOccupied = errors.New("tenancy: room occupied")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("tenancy: user not found")
	// ErrUsernameTaken is returned when registering a duplicate username.
	ErrUsernameTaken = errors.New("tenancy: username taken")
)

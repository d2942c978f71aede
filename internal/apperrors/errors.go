package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrFundNotFound indicates that a fund with the given identifier does not exist.
	ErrFundNotFound = errors.New("fund not found")

	// ErrAMCNotFound indicates that an asset management company does not exist.
	ErrAMCNotFound = errors.New("amc not found")

	// ErrSnapshotNotFound indicates no return snapshot exists for a fund/class at or before a date.
	ErrSnapshotNotFound = errors.New("return snapshot not found")

	// ErrPeerStatsNotFound indicates no peer statistics record exists for the requested key.
	ErrPeerStatsNotFound = errors.New("peer statistics not found")

	// ErrSettingNotFound indicates that a system setting key has not been stored.
	ErrSettingNotFound = errors.New("system setting not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidHorizon indicates a horizon outside the closed set {ytd, 1y, 3y, 5y}.
	ErrInvalidHorizon = errors.New("invalid horizon")

	// ErrInvalidDate indicates that a date parameter is missing or malformed.
	ErrInvalidDate = errors.New("invalid date parameter")

	// ErrEmptyID indicates that a required identifier parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrEmptyPeerKey indicates that a peer key parameter is empty.
	ErrEmptyPeerKey = errors.New("peer key cannot be empty")

	// ErrEncryptionKeyNotSet indicates that the at-rest encryption key is not configured,
	// so encrypted settings cannot be stored or read.
	ErrEncryptionKeyNotSet = errors.New("encryption key not configured")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These indicate that an operation failed, but not due to
// missing entities or validation issues.
var (
	ErrFailedToRetrieveFunds     = errors.New("failed to retrieve funds")
	ErrFailedToRetrieveFund      = errors.New("failed to retrieve fund")
	ErrFailedToComputePeerStats  = errors.New("failed to compute peer statistics")
	ErrFailedToComputePeerRank   = errors.New("failed to compute peer rank")
	ErrFailedToClassifyFunds     = errors.New("failed to classify funds")
	ErrFailedToStoreSetting      = errors.New("failed to store system setting")
)

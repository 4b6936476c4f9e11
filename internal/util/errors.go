package util

import "errors"

// Sentinel errors for the store's failure taxonomy. Only
// ErrSchemaMismatch is recovered without caller involvement; the rest
// surface as distinct conditions so a caller can tell "no data yet"
// from "the store is broken".
var (
	// ErrStoreUnavailable indicates the database cannot be reached at
	// all (missing path, permissions, disk failure)
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrIntegrityViolation indicates a write referenced an entity that
	// does not exist or broke a uniqueness rule
	ErrIntegrityViolation = errors.New("integrity violation")

	// ErrSchemaMismatch indicates the patients table matches neither
	// known schema generation
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)

package domain

import "errors"

// Store errors
var (
	// ErrNotFound indicates the requested file or folder does not exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the target name is already taken
	ErrAlreadyExists = errors.New("already exists")

	// ErrPermissionDenied indicates insufficient permissions
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotDirectory indicates a tier path exists but is not a directory
	ErrNotDirectory = errors.New("not a directory")

	// ErrInvalidName indicates a filename that cannot be used inside a tier
	ErrInvalidName = errors.New("invalid file name")
)

// Rotation errors
var (
	// ErrInvalidTier indicates an unknown tier name
	ErrInvalidTier = errors.New("invalid tier")

	// ErrNotQuarantine indicates a delete aimed anywhere outside quarantine
	ErrNotQuarantine = errors.New("delete refused outside quarantine")

	// ErrRunInProgress indicates another rotation run holds the instance lock
	ErrRunInProgress = errors.New("rotation already in progress")
)

// Config errors
var (
	// ErrConfigNotFound indicates config file not found
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates config file is malformed
	ErrConfigInvalid = errors.New("invalid config")
)

package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrAlreadyMigrated       = errors.New("league already migrated")
	ErrWriteContention       = errors.New("write contention")
	ErrRefreshRunning        = errors.New("refresh already running")
	ErrExternalPlatform      = errors.New("external platform failure")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

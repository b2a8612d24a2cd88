package services

import "errors"

var (
	// ErrProjectNotFound is returned by Rebuild when the project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrMatchNotFound is returned by match lookups by id.
	ErrMatchNotFound = errors.New("match not found")
	// ErrJobRunning is returned when a job run is skipped because another run holds its lock.
	ErrJobRunning = errors.New("job already running")
	// ErrUnknownJob is returned for a job name the scheduler does not own.
	ErrUnknownJob = errors.New("unknown job")
	// ErrStoreUnavailable is returned when every store write of a rebuild failed.
	ErrStoreUnavailable = errors.New("match store unavailable")
)

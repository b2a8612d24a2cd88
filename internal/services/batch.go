package services

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/matchwise/backend/pkg/logger"
)

// ItemFailure is one isolated failure inside a multi-item loop.
type ItemFailure struct {
	ID  uint  `json:"id"`
	Err error `json:"-"`
}

// BatchResult folds the outcome of a continue-on-error loop: a success count
// and a side list of failures. Kind names the item ("vendor", "project", "match").
type BatchResult struct {
	Kind      string        `json:"kind"`
	Succeeded int           `json:"succeeded"`
	Skipped   int           `json:"skipped"`
	Failures  []ItemFailure `json:"-"`
}

func NewBatchResult(kind string) *BatchResult {
	return &BatchResult{Kind: kind}
}

func (r *BatchResult) Succeed() { r.Succeeded++ }

func (r *BatchResult) Skip() { r.Skipped++ }

func (r *BatchResult) Fail(id uint, err error) {
	r.Failures = append(r.Failures, ItemFailure{ID: id, Err: err})
}

func (r *BatchResult) Failed() int { return len(r.Failures) }

// Err aggregates all failures, or returns nil when there were none.
func (r *BatchResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	var merr *multierror.Error
	for _, f := range r.Failures {
		merr = multierror.Append(merr, fmt.Errorf("%s %d: %w", r.Kind, f.ID, f.Err))
	}
	return merr.ErrorOrNil()
}

// Log writes one summary line for the loop, at error level when anything failed.
func (r *BatchResult) Log(job string) {
	if err := r.Err(); err != nil {
		logger.Error().
			Str("job", job).
			Int("succeeded", r.Succeeded).
			Int("skipped", r.Skipped).
			Int("failed", r.Failed()).
			Err(err).
			Msgf("[%s] completed with isolated failures", job)
		return
	}
	logger.Info().
		Str("job", job).
		Int("succeeded", r.Succeeded).
		Int("skipped", r.Skipped).
		Msgf("[%s] completed", job)
}

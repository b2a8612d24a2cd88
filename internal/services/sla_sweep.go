package services

import (
	"context"
	"fmt"
	"time"

	"github.com/matchwise/backend/pkg/logger"
)

// SLASweeper flags matches whose vendor response window has elapsed.
type SLASweeper struct {
	store MatchStore
	now   func() time.Time
}

func NewSLASweeper(store MatchStore) *SLASweeper {
	return &SLASweeper{store: store, now: time.Now}
}

// Sweep makes one pass over every match. Records without a notification time
// and records already flagged are skipped; the flag is never cleared. A failure
// to mark one record is isolated. Only a failing scan is returned as an error.
func (s *SLASweeper) Sweep(ctx context.Context) (*BatchResult, error) {
	logger.Info().Msg("[SLA] Checking expired SLAs")

	result := NewBatchResult("match")
	now := s.now()

	err := s.store.ScanWithVendorSLA(ctx, func(rec SLARecord) error {
		if rec.NotifiedAt == nil || rec.IsSLAExpired {
			result.Skip()
			return nil
		}

		elapsedHours := now.Sub(*rec.NotifiedAt).Hours()
		if elapsedHours <= rec.ResponseSLAHours {
			result.Skip()
			return nil
		}

		if err := s.store.MarkSLAExpired(ctx, rec.MatchID); err != nil {
			logger.Error().Err(err).
				Uint("match_id", rec.MatchID).
				Uint("vendor_id", rec.VendorID).
				Msg("[SLA] Failed to flag expired match")
			result.Fail(rec.MatchID, err)
			return nil
		}

		logger.Info().
			Uint("match_id", rec.MatchID).
			Uint("project_id", rec.ProjectID).
			Uint("vendor_id", rec.VendorID).
			Float64("elapsed_hours", elapsedHours).
			Msg("[SLA] Match flagged as expired")
		result.Succeed()
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("scan matches: %w", err)
	}

	return result, nil
}

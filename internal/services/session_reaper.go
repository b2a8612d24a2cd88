package services

import (
	"context"
	"fmt"
	"time"

	"github.com/matchwise/backend/internal/models"
	"github.com/matchwise/backend/pkg/logger"
	"gorm.io/gorm"
)

// SessionStore deletes sessions whose expiry is at or before now.
type SessionStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type GormSessionStore struct {
	db *gorm.DB
}

func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{db: db}
}

func (s *GormSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

type SessionReaper struct {
	store SessionStore
	now   func() time.Time
}

func NewSessionReaper(store SessionStore) *SessionReaper {
	return &SessionReaper{store: store, now: time.Now}
}

// Reap is a single bulk delete. Any failure aborts the whole reap.
func (r *SessionReaper) Reap(ctx context.Context) (int64, error) {
	deleted, err := r.store.DeleteExpired(ctx, r.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	logger.Info().Int64("deleted", deleted).Msg("[Session] Cleaned expired sessions")
	return deleted, nil
}

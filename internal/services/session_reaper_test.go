package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matchwise/backend/internal/models"
)

func TestSessionReaper_DeletesExpiredSessions(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 7, 1, 6, 0, 0, 0, time.UTC)

	sessions := []models.Session{
		{UserID: 1, RefreshToken: "expired", ExpiresAt: now.Add(-time.Hour)},
		{UserID: 1, RefreshToken: "boundary", ExpiresAt: now},
		{UserID: 2, RefreshToken: "live", ExpiresAt: now.Add(time.Hour)},
	}
	if err := db.Create(&sessions).Error; err != nil {
		t.Fatal(err)
	}

	reaper := NewSessionReaper(NewGormSessionStore(db))
	reaper.now = func() time.Time { return now }

	deleted, err := reaper.Reap(context.Background())
	if err != nil {
		t.Fatalf("Reap() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, expected 2", deleted)
	}

	var remaining []models.Session
	db.Find(&remaining)
	if len(remaining) != 1 || remaining[0].RefreshToken != "live" {
		t.Errorf("remaining = %+v, expected only the live session", remaining)
	}
}

type failingSessionStore struct{}

func (failingSessionStore) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, errStoreDown
}

func TestSessionReaper_FailureAborts(t *testing.T) {
	_, err := NewSessionReaper(failingSessionStore{}).Reap(context.Background())
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("error = %v, expected errStoreDown", err)
	}
}

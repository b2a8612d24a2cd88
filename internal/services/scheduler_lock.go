package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/matchwise/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const globalLockKey = "global"

// JobLocker hands out short leases so a job runs on at most one instance at a time.
type JobLocker interface {
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
	// Renew extends a held lease by ttl from now. It returns ErrLeaseLost when
	// the caller no longer holds the lease.
	Renew(ctx context.Context, name string, ttl time.Duration) error
	Release(ctx context.Context, name string) error
}

var ErrLeaseLost = errors.New("job lease lost")

// DBJobLocker stores leases in scheduler_locks. An expired lease is reclaimed
// by the next acquirer.
type DBJobLocker struct {
	db       *gorm.DB
	holderID string
	now      func() time.Time
}

func NewDBJobLocker(db *gorm.DB) *DBJobLocker {
	return &DBJobLocker{db: db, holderID: uuid.NewString(), now: time.Now}
}

func (l *DBJobLocker) HolderID() string { return l.holderID }

func (l *DBJobLocker) TryAcquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	now := l.now()
	db := l.db.WithContext(ctx)

	if err := db.Where("lock_name = ? AND lock_key = ? AND expires_at <= ?", name, globalLockKey, now).
		Delete(&models.SchedulerLock{}).Error; err != nil {
		return false, err
	}

	lock := models.SchedulerLock{
		LockName:  name,
		LockKey:   globalLockKey,
		LockedBy:  l.holderID,
		LockedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "lock_name"}, {Name: "lock_key"}},
		DoNothing: true,
	}).Create(&lock)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (l *DBJobLocker) Renew(ctx context.Context, name string, ttl time.Duration) error {
	res := l.db.WithContext(ctx).
		Model(&models.SchedulerLock{}).
		Where("lock_name = ? AND lock_key = ? AND locked_by = ?", name, globalLockKey, l.holderID).
		Update("expires_at", l.now().Add(ttl))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLeaseLost
	}
	return nil
}

func (l *DBJobLocker) Release(ctx context.Context, name string) error {
	return l.db.WithContext(ctx).
		Where("lock_name = ? AND lock_key = ? AND locked_by = ?", name, globalLockKey, l.holderID).
		Delete(&models.SchedulerLock{}).Error
}

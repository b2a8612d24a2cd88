package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matchwise/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var errStoreDown = errors.New("store down")

// newTestDB opens a private in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fakeProjects struct {
	projects map[uint]*MatchProject
	active   []uint
	listErr  error
	getErr   error
}

func (f *fakeProjects) GetWithOwner(_ context.Context, id uint) (*MatchProject, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrProjectNotFound, id)
	}
	return p, nil
}

func (f *fakeProjects) ListActiveIDs(context.Context) ([]uint, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.active, nil
}

type fakeVendors struct {
	vendors []MatchVendor
	err     error
}

func (f *fakeVendors) ListAll(context.Context) ([]MatchVendor, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]MatchVendor, len(f.vendors))
	copy(out, f.vendors)
	return out, nil
}

// fakeConfig returns configured values and the caller default otherwise.
type fakeConfig map[string]float64

func (f fakeConfig) GetFloat(_ context.Context, key string, defaultValue float64) float64 {
	if v, ok := f[key]; ok {
		return v
	}
	return defaultValue
}

type pairKey struct{ projectID, vendorID uint }

type fakeMatchStore struct {
	mu          sync.Mutex
	rows        map[pairKey]*models.Match
	nextID      uint
	findErr     map[uint]error // by vendor id
	upsertErr   map[uint]error // by vendor id
	countErr    error
	markErr     map[uint]error // by match id
	scanErr     error
	slaHours    map[uint]float64 // by vendor id
	upsertCalls int
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{
		rows:      make(map[pairKey]*models.Match),
		findErr:   make(map[uint]error),
		upsertErr: make(map[uint]error),
		markErr:   make(map[uint]error),
		slaHours:  make(map[uint]float64),
	}
}

func (f *fakeMatchStore) put(m models.Match) *models.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	f.rows[pairKey{m.ProjectID, m.VendorID}] = &m
	return &m
}

func (f *fakeMatchStore) get(projectID, vendorID uint) *models.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[pairKey{projectID, vendorID}]
	if !ok {
		return nil
	}
	cp := *m
	return &cp
}

func (f *fakeMatchStore) FindByPair(_ context.Context, projectID, vendorID uint) (*models.Match, error) {
	if err := f.findErr[vendorID]; err != nil {
		return nil, err
	}
	return f.get(projectID, vendorID), nil
}

func (f *fakeMatchStore) Upsert(_ context.Context, m *models.Match) (*models.Match, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	if err := f.upsertErr[m.VendorID]; err != nil {
		return nil, false, err
	}
	key := pairKey{m.ProjectID, m.VendorID}
	if existing, ok := f.rows[key]; ok {
		existing.Score = m.Score
		cp := *existing
		return &cp, false, nil
	}
	f.nextID++
	row := *m
	row.ID = f.nextID
	row.CreatedAt = time.Now()
	f.rows[key] = &row
	cp := row
	return &cp, true, nil
}

func (f *fakeMatchStore) CountByProject(_ context.Context, projectID uint) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k := range f.rows {
		if k.projectID == projectID {
			n++
		}
	}
	return n, nil
}

func (f *fakeMatchStore) ScanWithVendorSLA(_ context.Context, fn func(SLARecord) error) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	f.mu.Lock()
	records := make([]SLARecord, 0, len(f.rows))
	for _, m := range f.rows {
		records = append(records, SLARecord{
			MatchID:          m.ID,
			ProjectID:        m.ProjectID,
			VendorID:         m.VendorID,
			NotifiedAt:       m.NotifiedAt,
			IsSLAExpired:     m.IsSLAExpired,
			ResponseSLAHours: f.slaHours[m.VendorID],
		})
	}
	f.mu.Unlock()

	sort.Slice(records, func(i, j int) bool { return records[i].MatchID < records[j].MatchID })
	for _, rec := range records {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeMatchStore) MarkSLAExpired(_ context.Context, matchID uint) error {
	if err := f.markErr[matchID]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.ID == matchID {
			m.IsSLAExpired = true
			return nil
		}
	}
	return ErrMatchNotFound
}

func (f *fakeMatchStore) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type notifyCall struct {
	email     string
	projectID uint
	newCount  int
	total     int64
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

func (f *fakeNotifier) NotifyNewMatches(_ context.Context, email string, projectID uint, newCount int, total int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifyCall{email, projectID, newCount, total})
	return f.err
}

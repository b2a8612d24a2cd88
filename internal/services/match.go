package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/matchwise/backend/internal/models"
	"github.com/matchwise/backend/pkg/logger"
)

// MatchView is one entry of a rebuild result.
type MatchView struct {
	ID           uint       `json:"id"`
	ProjectID    uint       `json:"project_id"`
	VendorID     uint       `json:"vendor_id"`
	CountryID    uint       `json:"country_id"`
	VendorName   string     `json:"vendor_name"`
	Score        float64    `json:"score"`
	CreatedAt    time.Time  `json:"created_at"`
	NotifiedAt   *time.Time `json:"notified_at"`
	IsSLAExpired bool       `json:"is_sla_expired"`
}

type RebuildResult struct {
	Length            int          `json:"length"`
	TotalMatchesCount int64        `json:"total_matches_count"`
	NewMatchesCount   int          `json:"new_matches_count"`
	Matches           []MatchView  `json:"matches"`
	Vendors           *BatchResult `json:"vendors"`
}

// MatchService is the rebuild orchestrator. Rebuilds of the same project are
// serialized; rebuilds of different projects run concurrently.
type MatchService struct {
	projects ProjectDirectory
	vendors  VendorDirectory
	config   ConfigProvider
	store    MatchStore
	notifier MatchNotifier
	now      func() time.Time

	mu           sync.Mutex
	projectLocks map[uint]*projectLock
}

type projectLock struct {
	mu   sync.Mutex
	refs int
}

func NewMatchService(projects ProjectDirectory, vendors VendorDirectory, config ConfigProvider, store MatchStore, notifier MatchNotifier) *MatchService {
	return &MatchService{
		projects:     projects,
		vendors:      vendors,
		config:       config,
		store:        store,
		notifier:     notifier,
		now:          time.Now,
		projectLocks: make(map[uint]*projectLock),
	}
}

// Rebuild recomputes all matches of one project against the current vendor
// population. Only ErrProjectNotFound and failures that prevent any progress
// are returned; per-vendor failures are recorded in the result.
func (s *MatchService) Rebuild(ctx context.Context, projectID uint) (*RebuildResult, error) {
	unlock := s.lockProject(projectID)
	defer unlock()

	logger.Info().Uint("project_id", projectID).Msg("[Match] Rebuilding matches")

	project, err := s.projects.GetWithOwner(ctx, projectID)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch project %d: %w", projectID, err)
	}

	vendors, err := s.vendors.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}

	weights := ScoreWeights{
		OverlapMultiplier: s.config.GetFloat(ctx, models.ConfigServicesOverlapMultiplier, DefaultServicesOverlapMultiplier),
		SLAWeightBase:     s.config.GetFloat(ctx, models.ConfigSLAWeightBase, DefaultSLAWeightBase),
	}
	maxMatches := int(s.config.GetFloat(ctx, models.ConfigMaxMatchesPerProject, DefaultMaxMatchesPerProject))
	if maxMatches < 0 {
		maxMatches = DefaultMaxMatchesPerProject
	}

	totalBefore, err := s.store.CountByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("count matches of project %d: %w", projectID, err)
	}

	matches, newCount, batch, storeFailures := s.calculateMatches(ctx, project, vendors, weights)
	if storeFailures > 0 && batch.Succeeded == 0 {
		batch.Log("rebuild")
		return nil, fmt.Errorf("%w: project %d: %v", ErrStoreUnavailable, projectID, batch.Err())
	}
	if batch.Failed() > 0 {
		batch.Log("rebuild")
	}

	sortMatches(matches)
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}

	total := totalBefore + int64(newCount)
	s.sendNotification(ctx, project, newCount, total)

	return &RebuildResult{
		Length:            len(matches),
		TotalMatchesCount: total,
		NewMatchesCount:   newCount,
		Matches:           matches,
		Vendors:           batch,
	}, nil
}

// calculateMatches scores and upserts each vendor in turn. Ineligible vendors
// are skipped and any existing match for them is left as is.
func (s *MatchService) calculateMatches(ctx context.Context, project *MatchProject, vendors []MatchVendor, weights ScoreWeights) ([]MatchView, int, *BatchResult, int) {
	batch := NewBatchResult("vendor")
	matches := make([]MatchView, 0)
	newCount := 0
	storeFailures := 0

	for i := range vendors {
		vendor := &vendors[i]

		if err := validateVendor(vendor); err != nil {
			logger.Error().Err(err).Uint("vendor_id", vendor.ID).Msg("[Match] Skipping vendor")
			batch.Fail(vendor.ID, err)
			continue
		}
		if _, eligible := ScoreVendor(project, vendor, false, weights); !eligible {
			batch.Skip()
			continue
		}

		view, created, err := s.upsertPair(ctx, project, vendor, weights)
		if err != nil {
			logger.Error().Err(err).
				Uint("project_id", project.ID).
				Uint("vendor_id", vendor.ID).
				Msg("[Match] Failed to calculate match for vendor")
			batch.Fail(vendor.ID, err)
			storeFailures++
			continue
		}

		if created {
			newCount++
		}
		matches = append(matches, *view)
		batch.Succeed()
	}

	return matches, newCount, batch, storeFailures
}

// upsertPair is the per-pair step: read existing, score with its expiry flag, write.
func (s *MatchService) upsertPair(ctx context.Context, project *MatchProject, vendor *MatchVendor, weights ScoreWeights) (*MatchView, bool, error) {
	existing, err := s.store.FindByPair(ctx, project.ID, vendor.ID)
	if err != nil {
		return nil, false, fmt.Errorf("find match: %w", err)
	}

	expired := existing != nil && existing.IsSLAExpired
	score, _ := ScoreVendor(project, vendor, expired, weights)

	now := s.now()
	stored, created, err := s.store.Upsert(ctx, &models.Match{
		ProjectID:    project.ID,
		VendorID:     vendor.ID,
		CountryID:    project.CountryID,
		Score:        score,
		NotifiedAt:   &now,
		IsSLAExpired: false,
	})
	if err != nil {
		return nil, false, fmt.Errorf("upsert match: %w", err)
	}

	return &MatchView{
		ID:           stored.ID,
		ProjectID:    stored.ProjectID,
		VendorID:     stored.VendorID,
		CountryID:    stored.CountryID,
		VendorName:   vendor.Name,
		Score:        stored.Score,
		CreatedAt:    stored.CreatedAt,
		NotifiedAt:   stored.NotifiedAt,
		IsSLAExpired: stored.IsSLAExpired,
	}, created, nil
}

// sendNotification is best-effort: failures are logged and never returned.
func (s *MatchService) sendNotification(ctx context.Context, project *MatchProject, newCount int, total int64) {
	if newCount == 0 {
		logger.Info().Uint("project_id", project.ID).Msg("[Match] No new matches, skipping notification")
		return
	}
	if project.OwnerEmail == "" {
		logger.Warn().Uint("project_id", project.ID).Msg("[Match] No valid client email found")
		return
	}
	if s.notifier == nil {
		return
	}

	if err := s.notifier.NotifyNewMatches(ctx, project.OwnerEmail, project.ID, newCount, total); err != nil {
		logger.Error().Err(err).Uint("project_id", project.ID).Msg("[Match] Failed to send match notification")
		return
	}
	logger.Info().
		Uint("project_id", project.ID).
		Int("new", newCount).
		Int64("total", total).
		Msg("[Match] Sent match notification")
}

// sortMatches orders by score descending; equal scores keep vendor id order.
func sortMatches(matches []MatchView) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].VendorID < matches[j].VendorID
	})
}

func (s *MatchService) lockProject(projectID uint) func() {
	s.mu.Lock()
	l, ok := s.projectLocks[projectID]
	if !ok {
		l = &projectLock{}
		s.projectLocks[projectID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.projectLocks, projectID)
		}
		s.mu.Unlock()
	}
}

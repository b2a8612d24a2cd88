package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/matchwise/backend/internal/models"
	"gorm.io/gorm"
)

// MatchProject is the read-only projection of a project used by the engine.
// OwnerEmail is empty when the owning client has no resolvable user.
type MatchProject struct {
	ID             uint
	CountryID      uint
	ServicesNeeded []uint
	OwnerEmail     string
}

// ProjectDirectory resolves projects for the matching engine.
type ProjectDirectory interface {
	// GetWithOwner returns ErrProjectNotFound when the project does not exist.
	GetWithOwner(ctx context.Context, id uint) (*MatchProject, error)
	ListActiveIDs(ctx context.Context) ([]uint, error)
}

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

func (s *ProjectService) GetWithOwner(ctx context.Context, id uint) (*MatchProject, error) {
	var project models.Project
	err := s.db.WithContext(ctx).
		Preload("Client.User").
		First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrProjectNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	view := &MatchProject{
		ID:             project.ID,
		CountryID:      project.CountryID,
		ServicesNeeded: []uint(project.ServicesNeeded),
	}
	if project.Client != nil && project.Client.User != nil {
		view.OwnerEmail = project.Client.User.Email
	}
	return view, nil
}

// ListActiveIDs returns the ids of all projects in status "active", oldest first.
func (s *ProjectService) ListActiveIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("status = ?", models.ProjectStatusActive).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/app/repositories"
	"github.com/yigit/curriculum/internal/engine"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
	"github.com/yigit/curriculum/internal/pkg/curriculumfile"
)

// BatchCheck is the outcome of checking a set of courses a student claims to
// have completed, with the prerequisites that would be backfilled on import.
type BatchCheck struct {
	engine.BatchResult
	Backfill []models.Course `json:"backfill"`
}

// CurriculumService defines the interface for curriculum queries
type CurriculumService interface {
	Graph(ctx context.Context, degreeID int64) (*engine.Graph, error)
	ListDegrees(ctx context.Context) ([]int64, error)
	Prerequisites(ctx context.Context, degreeID, courseID int64, kinds ...models.PrerequisiteKind) ([]models.Course, error)
	Dependents(ctx context.Context, degreeID, courseID int64, kinds ...models.PrerequisiteKind) ([]models.Course, error)
	CheckBatch(ctx context.Context, degreeID int64, courseIDs []int64) (*BatchCheck, error)
	Import(ctx context.Context, file *curriculumfile.Curriculum) (*engine.Graph, error)
	Invalidate(degreeID int64)
}

// curriculumServiceImpl implements the CurriculumService interface.
// Built graphs are cached per degree until Invalidate or Import.
type curriculumServiceImpl struct {
	store  repositories.CurriculumStore
	logger zerolog.Logger

	mutex  sync.RWMutex
	graphs map[int64]*engine.Graph
}

// NewCurriculumService creates a new curriculum service instance
func NewCurriculumService(store repositories.CurriculumStore, logger zerolog.Logger) CurriculumService {
	return &curriculumServiceImpl{
		store:  store,
		logger: logger,
		graphs: make(map[int64]*engine.Graph),
	}
}

// Graph returns the validated prerequisite graph of a degree
func (s *curriculumServiceImpl) Graph(ctx context.Context, degreeID int64) (*engine.Graph, error) {
	s.mutex.RLock()
	g, ok := s.graphs[degreeID]
	s.mutex.RUnlock()
	if ok {
		return g, nil
	}

	curriculum, err := s.store.LoadCurriculum(ctx, degreeID)
	if err != nil {
		return nil, err
	}

	g, err = engine.NewGraph(curriculum)
	if err != nil {
		s.logger.Error().Err(err).Int64("degreeID", degreeID).Msg("Stored curriculum is inconsistent")
		return nil, fmt.Errorf("curriculum of degree %d: %w", degreeID, err)
	}

	s.mutex.Lock()
	s.graphs[degreeID] = g
	s.mutex.Unlock()

	return g, nil
}

func (s *curriculumServiceImpl) ListDegrees(ctx context.Context) ([]int64, error) {
	return s.store.ListDegrees(ctx)
}

// Prerequisites returns the courses required by courseID
func (s *curriculumServiceImpl) Prerequisites(ctx context.Context, degreeID, courseID int64, kinds ...models.PrerequisiteKind) ([]models.Course, error) {
	g, err := s.Graph(ctx, degreeID)
	if err != nil {
		return nil, err
	}
	return g.PrerequisitesOf(courseID, kinds...)
}

// Dependents returns the courses that require courseID
func (s *curriculumServiceImpl) Dependents(ctx context.Context, degreeID, courseID int64, kinds ...models.PrerequisiteKind) ([]models.Course, error) {
	g, err := s.Graph(ctx, degreeID)
	if err != nil {
		return nil, err
	}
	return g.DependentsOf(courseID, kinds...)
}

// CheckBatch reports contradictions in a completed-course selection
func (s *curriculumServiceImpl) CheckBatch(ctx context.Context, degreeID int64, courseIDs []int64) (*BatchCheck, error) {
	g, err := s.Graph(ctx, degreeID)
	if err != nil {
		return nil, err
	}

	result, err := engine.CheckBatch(g, courseIDs)
	if err != nil {
		return nil, err
	}
	backfill, err := engine.BackfillPlan(g, courseIDs)
	if err != nil {
		return nil, err
	}

	return &BatchCheck{BatchResult: result, Backfill: backfill}, nil
}

// Import validates a curriculum file and stores it, replacing the degree's
// previous curriculum. Inconsistent curricula are rejected before any write.
func (s *curriculumServiceImpl) Import(ctx context.Context, file *curriculumfile.Curriculum) (*engine.Graph, error) {
	if file.DegreeID <= 0 {
		return nil, apperrors.NewValidationError("degree_id", "must be a positive degree id")
	}
	curriculum, err := file.ToModel(0)
	if err != nil {
		return nil, err
	}
	if _, err := engine.NewGraph(curriculum); err != nil {
		return nil, err
	}

	saved, err := s.store.SaveCurriculum(ctx, curriculum)
	if err != nil {
		return nil, err
	}

	g, err := engine.NewGraph(saved)
	if err != nil {
		return nil, err
	}

	s.mutex.Lock()
	s.graphs[saved.DegreeID] = g
	s.mutex.Unlock()

	s.logger.Info().
		Int64("degreeID", saved.DegreeID).
		Str("code", saved.Code).
		Int("courses", g.Len()).
		Msg("Curriculum imported")

	return g, nil
}

// Invalidate drops the cached graph of a degree
func (s *curriculumServiceImpl) Invalidate(degreeID int64) {
	s.mutex.Lock()
	delete(s.graphs, degreeID)
	s.mutex.Unlock()
}

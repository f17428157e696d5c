package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/app/repositories"
	"github.com/yigit/curriculum/internal/engine"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
)

// GoalService defines the interface for academic goal operations. Every
// operation is scoped to the owning student; goals of other students are
// reported as forbidden.
type GoalService interface {
	Create(ctx context.Context, goal *models.AcademicGoal) (*engine.GoalProgress, error)
	Get(ctx context.Context, studentID, goalID int64) (*engine.GoalProgress, error)
	List(ctx context.Context, studentID int64) ([]engine.GoalProgress, error)
	Update(ctx context.Context, goal *models.AcademicGoal) (*engine.GoalProgress, error)
	Delete(ctx context.Context, studentID, goalID int64) error
	// Evaluate refreshes every goal of the student, optionally limited to one degree
	Evaluate(ctx context.Context, studentID, degreeID int64) ([]engine.GoalProgress, error)
}

// goalServiceImpl implements the GoalService interface
type goalServiceImpl struct {
	goals    repositories.GoalStore
	progress ProgressService
	logger   zerolog.Logger

	now func() time.Time
}

// NewGoalService creates a new goal service instance
func NewGoalService(goals repositories.GoalStore, progress ProgressService, logger zerolog.Logger) GoalService {
	return &goalServiceImpl{
		goals:    goals,
		progress: progress,
		logger:   logger,
		now:      time.Now,
	}
}

// validateGoal validates goal data before database operations
func (s *goalServiceImpl) validateGoal(goal *models.AcademicGoal) error {
	if goal == nil {
		return apperrors.NewValidationError("goal", "is required")
	}
	if goal.StudentID <= 0 {
		return apperrors.NewValidationError("studentId", "is required")
	}
	if goal.DegreeID <= 0 {
		return apperrors.NewValidationError("degreeId", "is required")
	}
	if strings.TrimSpace(goal.Title) == "" {
		return apperrors.NewValidationError("title", "cannot be empty")
	}
	if !goal.Kind.Valid() {
		return apperrors.NewValidationError("kind", "unknown goal kind %q", goal.Kind)
	}
	if math.IsNaN(goal.TargetValue) || goal.TargetValue < 0 {
		return apperrors.NewValidationError("targetValue", "must not be negative")
	}

	switch goal.Kind {
	case models.GoalKindOverallGPA, models.GoalKindSpecificSemester:
		if goal.TargetValue > models.MaxGrade {
			return apperrors.NewValidationError("targetValue", "a GPA target cannot exceed %.0f", models.MaxGrade)
		}
	case models.GoalKindProgressPercent:
		if goal.TargetValue > 100 {
			return apperrors.NewValidationError("targetValue", "a progress target cannot exceed 100")
		}
	}

	if goal.Kind == models.GoalKindSpecificSemester && strings.TrimSpace(goal.Term) == "" {
		return apperrors.NewValidationError("term", "is required for %s goals", goal.Kind)
	}
	if goal.Kind != models.GoalKindSpecificSemester {
		goal.Term = ""
	}
	return nil
}

// evaluate computes the goal's progress from the student's current statistics
func (s *goalServiceImpl) evaluate(ctx context.Context, goal models.AcademicGoal) (engine.GoalProgress, error) {
	stats, err := s.progress.Stats(ctx, goal.StudentID, goal.DegreeID)
	if err != nil {
		return engine.GoalProgress{}, err
	}
	return engine.EvaluateGoal(goal, stats, s.now()), nil
}

// owned loads a goal and checks it belongs to studentID
func (s *goalServiceImpl) owned(ctx context.Context, studentID, goalID int64) (*models.AcademicGoal, error) {
	goal, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.StudentID != studentID {
		s.logger.Warn().Int64("studentID", studentID).Int64("goalID", goalID).Msg("Goal belongs to another student")
		return nil, apperrors.NewForbiddenError("goal belongs to another student")
	}
	return goal, nil
}

// Create stores a new goal with its current value already evaluated
func (s *goalServiceImpl) Create(ctx context.Context, goal *models.AcademicGoal) (*engine.GoalProgress, error) {
	if err := s.validateGoal(goal); err != nil {
		return nil, err
	}

	progress, err := s.evaluate(ctx, *goal)
	if err != nil {
		return nil, err
	}

	created, err := s.goals.Create(ctx, &progress.Goal)
	if err != nil {
		return nil, err
	}
	progress.Goal = *created

	s.logger.Info().
		Int64("studentID", created.StudentID).
		Int64("goalID", created.ID).
		Str("kind", string(created.Kind)).
		Msg("Academic goal created")

	return &progress, nil
}

func (s *goalServiceImpl) Get(ctx context.Context, studentID, goalID int64) (*engine.GoalProgress, error) {
	goal, err := s.owned(ctx, studentID, goalID)
	if err != nil {
		return nil, err
	}
	progress, err := s.refresh(ctx, *goal)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (s *goalServiceImpl) List(ctx context.Context, studentID int64) ([]engine.GoalProgress, error) {
	return s.Evaluate(ctx, studentID, 0)
}

// Update overwrites the mutable fields of a goal and re-evaluates it
func (s *goalServiceImpl) Update(ctx context.Context, goal *models.AcademicGoal) (*engine.GoalProgress, error) {
	if goal == nil {
		return nil, apperrors.NewValidationError("goal", "is required")
	}
	current, err := s.owned(ctx, goal.StudentID, goal.ID)
	if err != nil {
		return nil, err
	}

	goal.DegreeID = current.DegreeID
	if err := s.validateGoal(goal); err != nil {
		return nil, err
	}

	progress, err := s.evaluate(ctx, *goal)
	if err != nil {
		return nil, err
	}

	updated, err := s.goals.Update(ctx, &progress.Goal)
	if err != nil {
		return nil, err
	}
	progress.Goal = *updated

	return &progress, nil
}

func (s *goalServiceImpl) Delete(ctx context.Context, studentID, goalID int64) error {
	if _, err := s.owned(ctx, studentID, goalID); err != nil {
		return err
	}
	return s.goals.Delete(ctx, goalID)
}

// Evaluate refreshes the student's goals. Statistics are computed once per degree
// and goals whose value or completion changed are written back.
func (s *goalServiceImpl) Evaluate(ctx context.Context, studentID, degreeID int64) ([]engine.GoalProgress, error) {
	goals, err := s.goals.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	stats := make(map[int64]engine.Stats)
	out := make([]engine.GoalProgress, 0, len(goals))
	for _, goal := range goals {
		if degreeID > 0 && goal.DegreeID != degreeID {
			continue
		}

		st, ok := stats[goal.DegreeID]
		if !ok {
			st, err = s.progress.Stats(ctx, studentID, goal.DegreeID)
			if err != nil {
				return nil, err
			}
			stats[goal.DegreeID] = st
		}

		progress, err := s.persist(ctx, goal, engine.EvaluateGoal(goal, st, s.now()))
		if err != nil {
			return nil, err
		}
		out = append(out, progress)
	}

	return out, nil
}

func (s *goalServiceImpl) refresh(ctx context.Context, goal models.AcademicGoal) (engine.GoalProgress, error) {
	progress, err := s.evaluate(ctx, goal)
	if err != nil {
		return engine.GoalProgress{}, err
	}
	return s.persist(ctx, goal, progress)
}

// persist writes the evaluated goal back when its value or completion changed
func (s *goalServiceImpl) persist(ctx context.Context, before models.AcademicGoal, progress engine.GoalProgress) (engine.GoalProgress, error) {
	if before.CurrentValue == progress.Goal.CurrentValue && before.Completed == progress.Goal.Completed {
		return progress, nil
	}

	updated, err := s.goals.Update(ctx, &progress.Goal)
	if err != nil {
		return engine.GoalProgress{}, err
	}
	if updated.Completed && !before.Completed {
		s.logger.Info().Int64("studentID", updated.StudentID).Int64("goalID", updated.ID).Msg("Academic goal reached")
	}
	progress.Goal = *updated
	return progress, nil
}

package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
	"github.com/yigit/curriculum/internal/pkg/dberrors"
	"github.com/yigit/curriculum/internal/pkg/logger"
)

var goalColumns = []string{
	"id", "student_id", "degree_id", "title", "kind", "term", "target_value", "current_value",
	"deadline", "completed", "created_at", "updated_at",
}

// GoalRepository handles academic goal database operations
type GoalRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewGoalRepository creates a new GoalRepository
func NewGoalRepository(db *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ GoalStore = (*GoalRepository)(nil)

func scanGoal(row rowScanner) (*models.AcademicGoal, error) {
	g := &models.AcademicGoal{}
	err := row.Scan(
		&g.ID, &g.StudentID, &g.DegreeID, &g.Title, &g.Kind, &g.Term, &g.TargetValue,
		&g.CurrentValue, &g.Deadline, &g.Completed, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Create inserts a new goal
func (r *GoalRepository) Create(ctx context.Context, goal *models.AcademicGoal) (*models.AcademicGoal, error) {
	sql, args, err := r.sb.Insert("academic_goals").
		Columns("student_id", "degree_id", "title", "kind", "term", "target_value", "current_value", "deadline", "completed").
		Values(goal.StudentID, goal.DegreeID, goal.Title, goal.Kind, goal.Term, goal.TargetValue,
			goal.CurrentValue, goal.Deadline, goal.Completed).
		Suffix("RETURNING " + strings.Join(goalColumns, ", ")).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create goal SQL")
		return nil, fmt.Errorf("failed to build create goal query: %w", err)
	}

	created, err := scanGoal(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsCheckViolation(err) {
			return nil, apperrors.NewValidationError("goal", "goal violates a constraint")
		}
		logger.Error().Err(err).Int64("studentID", goal.StudentID).Msg("Error executing create goal query")
		return nil, fmt.Errorf("error creating goal: %w", err)
	}

	return created, nil
}

// GetByID retrieves a goal by ID
func (r *GoalRepository) GetByID(ctx context.Context, id int64) (*models.AcademicGoal, error) {
	sql, args, err := r.sb.Select(goalColumns...).
		From("academic_goals").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get goal query: %w", err)
	}

	goal, err := scanGoal(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError(apperrors.ErrGoalNotFound, "goal", id)
		}
		logger.Error().Err(err).Int64("goalID", id).Msg("Error scanning goal row")
		return nil, fmt.Errorf("error getting goal by ID: %w", err)
	}

	return goal, nil
}

// ListByStudent retrieves a student's goals, oldest first
func (r *GoalRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.AcademicGoal, error) {
	sql, args, err := r.sb.Select(goalColumns...).
		From("academic_goals").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list goals query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing list goals query")
		return nil, fmt.Errorf("error querying goals: %w", err)
	}
	defer rows.Close()

	goals := []models.AcademicGoal{}
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning goal row: %w", err)
		}
		goals = append(goals, *goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goal rows: %w", err)
	}

	return goals, nil
}

// Update overwrites the mutable fields of a goal
func (r *GoalRepository) Update(ctx context.Context, goal *models.AcademicGoal) (*models.AcademicGoal, error) {
	sql, args, err := r.sb.Update("academic_goals").
		SetMap(map[string]interface{}{
			"title":         goal.Title,
			"kind":          goal.Kind,
			"term":          goal.Term,
			"target_value":  goal.TargetValue,
			"current_value": goal.CurrentValue,
			"deadline":      goal.Deadline,
			"completed":     goal.Completed,
			"updated_at":    squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": goal.ID}).
		Suffix("RETURNING " + strings.Join(goalColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update goal query: %w", err)
	}

	updated, err := scanGoal(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewNotFoundError(apperrors.ErrGoalNotFound, "goal", goal.ID)
		}
		logger.Error().Err(err).Int64("goalID", goal.ID).Msg("Error executing update goal query")
		return nil, fmt.Errorf("error updating goal: %w", err)
	}

	return updated, nil
}

// Delete deletes a goal by ID
func (r *GoalRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("academic_goals").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete goal query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("goalID", id).Msg("Error executing delete goal query")
		return fmt.Errorf("error deleting goal: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(apperrors.ErrGoalNotFound, "goal", id)
	}

	return nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
)

func TestGoalLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.pass(t, studentA, "CS1", 16, "2024-1")

	created, err := f.goals.Create(ctx, &models.AcademicGoal{
		StudentID:   studentA,
		DegreeID:    degreeCS,
		Title:       "Keep honors",
		Kind:        models.GoalKindOverallGPA,
		TargetValue: 15,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.Goal.ID)
	assert.Equal(t, 16.0, created.Goal.CurrentValue)
	assert.True(t, created.Goal.Completed)

	// A failing grade in a passed course drags the average below target
	f.pass(t, studentA, "MATH1", 10, "2024-1")

	goals, err := f.goals.List(ctx, studentA)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, 13.0, goals[0].Goal.CurrentValue)
	assert.False(t, goals[0].Goal.Completed)
	assert.Equal(t, 2.0, goals[0].Remaining)

	stored, err := f.repos.Goals.GetByID(ctx, created.Goal.ID)
	require.NoError(t, err)
	assert.False(t, stored.Completed, "re-evaluation is persisted")

	update := created.Goal
	update.TargetValue = 12
	updated, err := f.goals.Update(ctx, &update)
	require.NoError(t, err)
	assert.True(t, updated.Goal.Completed)

	require.NoError(t, f.goals.Delete(ctx, studentA, created.Goal.ID))
	_, err = f.goals.Get(ctx, studentA, created.Goal.ID)
	assert.True(t, errors.Is(err, apperrors.ErrGoalNotFound))
}

func TestGoalKinds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.pass(t, studentA, "CS1", 18, "2023-1")
	f.pass(t, studentA, "CS2", 12, "2023-2")

	tests := []struct {
		name    string
		kind    models.GoalKind
		term    string
		target  float64
		current float64
	}{
		{"overall gpa", models.GoalKindOverallGPA, "", 16, 15},
		{"semester gpa", models.GoalKindSpecificSemester, "2023-1", 16, 18},
		{"semester without grades", models.GoalKindSpecificSemester, "2030-1", 10, 0},
		{"credits", models.GoalKindCreditsEarned, "", 30, 12},
		{"progress", models.GoalKindProgressPercent, "", 50, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := f.goals.Create(ctx, &models.AcademicGoal{
				StudentID:   studentA,
				DegreeID:    degreeCS,
				Title:       tt.name,
				Kind:        tt.kind,
				Term:        tt.term,
				TargetValue: tt.target,
			})
			require.NoError(t, err)
			assert.InDelta(t, tt.current, p.Goal.CurrentValue, 1e-9)
			assert.Equal(t, tt.current >= tt.target, p.Goal.Completed)
		})
	}
}

func TestGoalValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := func() *models.AcademicGoal {
		return &models.AcademicGoal{StudentID: studentA, DegreeID: degreeCS, Title: "Goal", Kind: models.GoalKindOverallGPA, TargetValue: 14}
	}

	tests := []struct {
		name   string
		mutate func(*models.AcademicGoal)
		field  string
	}{
		{"empty title", func(g *models.AcademicGoal) { g.Title = "  " }, "title"},
		{"unknown kind", func(g *models.AcademicGoal) { g.Kind = "HAPPINESS" }, "kind"},
		{"negative target", func(g *models.AcademicGoal) { g.TargetValue = -1 }, "targetValue"},
		{"gpa above scale", func(g *models.AcademicGoal) { g.TargetValue = 21 }, "targetValue"},
		{"progress above 100", func(g *models.AcademicGoal) { g.Kind = models.GoalKindProgressPercent; g.TargetValue = 120 }, "targetValue"},
		{"semester goal without term", func(g *models.AcademicGoal) { g.Kind = models.GoalKindSpecificSemester }, "term"},
		{"missing degree", func(g *models.AcademicGoal) { g.DegreeID = 0 }, "degreeId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := base()
			tt.mutate(goal)

			_, err := f.goals.Create(ctx, goal)
			var valErr *apperrors.ValidationError
			require.True(t, errors.As(err, &valErr), "got %v", err)
			assert.Equal(t, tt.field, valErr.Field)
		})
	}

	goal := base()
	goal.DegreeID = 404
	_, err := f.goals.Create(ctx, goal)
	assert.True(t, errors.Is(err, apperrors.ErrCurriculumNotFound))
}

func TestGoalOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.goals.Create(ctx, &models.AcademicGoal{
		StudentID: studentA, DegreeID: degreeCS, Title: "Mine", Kind: models.GoalKindCreditsEarned, TargetValue: 60,
	})
	require.NoError(t, err)

	_, err = f.goals.Get(ctx, studentB, created.Goal.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	err = f.goals.Delete(ctx, studentB, created.Goal.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	stolen := created.Goal
	stolen.StudentID = studentB
	_, err = f.goals.Update(ctx, &stolen)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	goals, err := f.goals.List(ctx, studentB)
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestGoalDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	deadline := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	f.goals.now = func() time.Time { return deadline.Add(24 * time.Hour) }

	p, err := f.goals.Create(ctx, &models.AcademicGoal{
		StudentID: studentA, DegreeID: degreeCS, Title: "Finish year one", Kind: models.GoalKindCreditsEarned,
		TargetValue: 12, Deadline: &deadline,
	})
	require.NoError(t, err)
	assert.True(t, p.Overdue)
	assert.Equal(t, 12.0, p.Remaining)

	f.pass(t, studentA, "CS1", 14, "")
	f.pass(t, studentA, "MATH1", 14, "")

	evaluated, err := f.goals.Evaluate(ctx, studentA, degreeCS)
	require.NoError(t, err)
	require.Len(t, evaluated, 1)
	assert.True(t, evaluated[0].Goal.Completed)
	assert.False(t, evaluated[0].Overdue, "completed goals are never overdue")
}

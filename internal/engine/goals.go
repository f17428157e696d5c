package engine

import (
	"time"

	"github.com/yigit/curriculum/internal/app/models"
)

// GoalProgress is an academic goal evaluated against current statistics.
type GoalProgress struct {
	Goal      models.AcademicGoal `json:"goal"`
	Remaining float64             `json:"remaining"`
	Overdue   bool                `json:"overdue"`
}

// EvaluateGoal refreshes the goal's current value from stats and recomputes its
// completed flag. now is only used for the deadline check.
func EvaluateGoal(goal models.AcademicGoal, stats Stats, now time.Time) GoalProgress {
	switch goal.Kind {
	case models.GoalKindOverallGPA:
		goal.CurrentValue = stats.GPA
	case models.GoalKindSpecificSemester:
		goal.CurrentValue, _ = stats.SemesterGPA(goal.Term)
	case models.GoalKindCreditsEarned:
		goal.CurrentValue = float64(stats.CreditsPassed)
	case models.GoalKindProgressPercent:
		goal.CurrentValue = stats.ProgressPercent
	}
	goal.RefreshCompleted()

	progress := GoalProgress{Goal: goal}
	if !goal.Completed {
		progress.Remaining = goal.TargetValue - goal.CurrentValue
		progress.Overdue = goal.Deadline != nil && now.After(*goal.Deadline)
	}
	return progress
}

// EvaluateGoals evaluates each goal in order.
func EvaluateGoals(goals []models.AcademicGoal, stats Stats, now time.Time) []GoalProgress {
	out := make([]GoalProgress, 0, len(goals))
	for _, goal := range goals {
		out = append(out, EvaluateGoal(goal, stats, now))
	}
	return out
}

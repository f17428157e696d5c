package dto

import (
	"time"

	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/engine"
)

// CreateGoalRequest represents academic goal creation data
type CreateGoalRequest struct {
	Title       string     `json:"title" binding:"required,max=200" example:"Graduate with honors"`
	Kind        string     `json:"kind" binding:"required,oneof=OVERALL_GPA SPECIFIC_SEMESTER CREDITS_EARNED PROGRESS_PERCENT" example:"OVERALL_GPA"`
	DegreeID    int64      `json:"degreeId" binding:"required,gt=0" example:"1"`
	Term        string     `json:"term" binding:"max=32"`
	TargetValue float64    `json:"targetValue" binding:"gte=0" example:"16"`
	Deadline    *time.Time `json:"deadline"`
}

// UpdateGoalRequest represents academic goal update data
type UpdateGoalRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Term        string     `json:"term" binding:"max=32"`
	TargetValue float64    `json:"targetValue" binding:"gte=0"`
	Deadline    *time.Time `json:"deadline"`
}

// GoalProgressResponse is a goal evaluated against the student's current statistics
type GoalProgressResponse struct {
	Goal      models.AcademicGoal `json:"goal"`
	Remaining float64             `json:"remaining"`
	Overdue   bool                `json:"overdue"`
}

// NewGoalProgressResponse maps an evaluated goal
func NewGoalProgressResponse(p engine.GoalProgress) GoalProgressResponse {
	return GoalProgressResponse{
		Goal:      p.Goal,
		Remaining: p.Remaining,
		Overdue:   p.Overdue,
	}
}

// NewGoalProgressResponses maps a list of evaluated goals
func NewGoalProgressResponses(list []engine.GoalProgress) []GoalProgressResponse {
	out := make([]GoalProgressResponse, len(list))
	for i, p := range list {
		out[i] = NewGoalProgressResponse(p)
	}
	return out
}

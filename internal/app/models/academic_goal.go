package models

import "time"

// GoalKind identifies what an academic goal measures
type GoalKind string

const (
	GoalKindOverallGPA       GoalKind = "OVERALL_GPA"
	GoalKindSpecificSemester GoalKind = "SPECIFIC_SEMESTER"
	GoalKindCreditsEarned    GoalKind = "CREDITS_EARNED"
	GoalKindProgressPercent  GoalKind = "PROGRESS_PERCENT"
)

// Valid reports whether k is a known goal kind.
func (k GoalKind) Valid() bool {
	switch k {
	case GoalKindOverallGPA, GoalKindSpecificSemester, GoalKindCreditsEarned, GoalKindProgressPercent:
		return true
	}
	return false
}

// AcademicGoal is a student-authored target tracked against their statistics.
type AcademicGoal struct {
	ID           int64      `json:"id" db:"id"`
	StudentID    int64      `json:"studentId" db:"student_id"`
	DegreeID     int64      `json:"degreeId" db:"degree_id"`
	Title        string     `json:"title" db:"title"`
	Kind         GoalKind   `json:"kind" db:"kind"`
	Term         string     `json:"term,omitempty" db:"term"` // Only for SPECIFIC_SEMESTER goals
	TargetValue  float64    `json:"targetValue" db:"target_value"`
	CurrentValue float64    `json:"currentValue" db:"current_value"`
	Deadline     *time.Time `json:"deadline,omitempty" db:"deadline"`
	Completed    bool       `json:"completed" db:"completed"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// RefreshCompleted recomputes the completed flag from the current and target values.
func (g *AcademicGoal) RefreshCompleted() {
	g.Completed = g.CurrentValue >= g.TargetValue
}

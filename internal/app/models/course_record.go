package models

import (
	"strings"
	"time"
)

// CourseState is the state of a student's record for a single course
type CourseState string

const (
	CourseStateNotTaken   CourseState = "NOT_TAKEN"
	CourseStateInProgress CourseState = "IN_PROGRESS"
	CourseStatePassed     CourseState = "PASSED"
	CourseStateFailed     CourseState = "FAILED"
	CourseStateWithdrawn  CourseState = "WITHDRAWN"
)

// Grade bounds, inclusive
const (
	MinGrade = 0.0
	MaxGrade = 20.0
)

// ParseCourseState converts a label such as "passed" or "IN_PROGRESS" to a CourseState.
func ParseCourseState(label string) (CourseState, bool) {
	state := CourseState(strings.ToUpper(strings.TrimSpace(label)))
	return state, state.Valid()
}

// Valid reports whether s is a known state.
func (s CourseState) Valid() bool {
	switch s {
	case CourseStateNotTaken, CourseStateInProgress, CourseStatePassed, CourseStateFailed, CourseStateWithdrawn:
		return true
	}
	return false
}

// CourseRecord is a student's state for one course. At most one exists per (StudentID, CourseID).
type CourseRecord struct {
	ID        int64       `json:"id" db:"id"`
	StudentID int64       `json:"studentId" db:"student_id"`
	CourseID  int64       `json:"courseId" db:"course_id"`
	State     CourseState `json:"state" db:"state"`
	Grade     *float64    `json:"grade,omitempty" db:"grade"`
	Term      string      `json:"term,omitempty" db:"term"` // Label of the term the course was taken in
	StartDate *time.Time  `json:"startDate,omitempty" db:"start_date"`
	EndDate   *time.Time  `json:"endDate,omitempty" db:"end_date"`
	Notes     string      `json:"notes,omitempty" db:"notes"`
	AutoAdded bool        `json:"autoAdded" db:"auto_added"`
	Version   int64       `json:"version" db:"version"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// SameContent reports whether the mutable fields of r and other are equal.
func (r *CourseRecord) SameContent(other *CourseRecord) bool {
	return r.State == other.State &&
		equalFloatPtr(r.Grade, other.Grade) &&
		r.Term == other.Term &&
		equalTimePtr(r.StartDate, other.StartDate) &&
		equalTimePtr(r.EndDate, other.EndDate) &&
		r.Notes == other.Notes &&
		r.AutoAdded == other.AutoAdded
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

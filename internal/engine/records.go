package engine

import (
	"math"

	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
)

// RecordSet indexes one student's course records by course id.
type RecordSet map[int64]models.CourseRecord

// NewRecordSet builds a RecordSet. When several records share a course the
// last one wins.
func NewRecordSet(records []models.CourseRecord) RecordSet {
	set := make(RecordSet, len(records))
	for _, r := range records {
		set[r.CourseID] = r
	}
	return set
}

// StateOf returns the state recorded for a course, NOT_TAKEN when there is no record.
func (s RecordSet) StateOf(courseID int64) models.CourseState {
	if r, ok := s[courseID]; ok {
		return r.State
	}
	return models.CourseStateNotTaken
}

// Passed reports whether the course is recorded as PASSED.
func (s RecordSet) Passed(courseID int64) bool {
	return s.StateOf(courseID) == models.CourseStatePassed
}

// CheckGrade validates that a grade, when present, lies in [0,20].
func CheckGrade(grade *float64) error {
	if grade == nil {
		return nil
	}
	if math.IsNaN(*grade) || *grade < models.MinGrade || *grade > models.MaxGrade {
		return apperrors.NewValidationError("grade", "must be between %.0f and %.0f, got %v", models.MinGrade, models.MaxGrade, *grade)
	}
	return nil
}

// CheckRecord validates the caller-supplied fields of a record.
func CheckRecord(r *models.CourseRecord) error {
	if r.StudentID <= 0 {
		return apperrors.NewValidationError("studentId", "is required")
	}
	if r.CourseID <= 0 {
		return apperrors.NewValidationError("courseId", "is required")
	}
	if !r.State.Valid() {
		return apperrors.NewValidationError("state", "unknown state %q", r.State)
	}
	if err := CheckGrade(r.Grade); err != nil {
		return err
	}
	if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
		return apperrors.NewValidationError("endDate", "must not be before startDate")
	}
	return nil
}

package engine

import (
	"fmt"

	"github.com/yigit/curriculum/internal/app/models"
)

// ValidationResult is the outcome of a prerequisite check.
type ValidationResult struct {
	OK      bool            `json:"ok"`
	Missing []models.Course `json:"missing"`
}

// Suggestion is a remediation hint for one missing prerequisite.
type Suggestion struct {
	Course  models.Course `json:"course"`
	Message string        `json:"message"`
}

// Validate checks whether courseID may move to target given the student's records.
// Only a move to PASSED is checked, and only mandatory prerequisites count;
// a prerequisite is satisfied when its own record is PASSED.
func Validate(g *Graph, records RecordSet, courseID int64, target models.CourseState) (ValidationResult, error) {
	if _, err := g.Course(courseID); err != nil {
		return ValidationResult{}, err
	}

	result := ValidationResult{OK: true, Missing: []models.Course{}}
	if target != models.CourseStatePassed {
		return result, nil
	}

	seen := make(map[int64]bool)
	for _, id := range g.mandatory(courseID) {
		if seen[id] || records.Passed(id) {
			continue
		}
		seen[id] = true
		missing, _ := g.Course(id)
		result.Missing = append(result.Missing, missing)
	}
	result.OK = len(result.Missing) == 0

	return result, nil
}

// CheckTransition is Validate turned into an error: it returns a
// *PrerequisiteError when the move to target is blocked.
func CheckTransition(g *Graph, records RecordSet, courseID int64, target models.CourseState) error {
	result, err := Validate(g, records, courseID, target)
	if err != nil {
		return err
	}
	if !result.OK {
		course, _ := g.Course(courseID)
		return &PrerequisiteError{Course: course, Missing: result.Missing}
	}
	return nil
}

// SuggestionsFor builds one hint per missing course.
func SuggestionsFor(missing []models.Course) []Suggestion {
	out := make([]Suggestion, 0, len(missing))
	for _, c := range missing {
		out = append(out, Suggestion{
			Course:  c,
			Message: fmt.Sprintf("Mark %s (%s, semester %d) as passed first", c.Code, c.Name, c.Semester),
		})
	}
	return out
}

package engine

import (
	"fmt"
	"strings"

	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
)

// PrerequisiteError is returned when a course is moved to PASSED while some of
// its mandatory prerequisites are not passed.
type PrerequisiteError struct {
	Course  models.Course
	Missing []models.Course
}

func (e *PrerequisiteError) Error() string {
	codes := make([]string, len(e.Missing))
	for i, c := range e.Missing {
		codes[i] = c.Code
	}
	return fmt.Sprintf("cannot pass %s: missing mandatory prerequisites %s", e.Course.Code, strings.Join(codes, ", "))
}

func (e *PrerequisiteError) Unwrap() error {
	return apperrors.ErrPrerequisitesNotMet
}

// Suggestions returns remediation hints for the missing prerequisites.
func (e *PrerequisiteError) Suggestions() []Suggestion {
	return SuggestionsFor(e.Missing)
}

// CycleError is returned when the ordering prerequisites of a curriculum form a cycle.
// Path lists course codes with the first code repeated at the end.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("prerequisite cycle: %s", strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error {
	return apperrors.ErrCurriculumInconsistent
}

// ContradictionError is returned when a completed-course selection lists a
// prerequisite scheduled after the course that requires it.
type ContradictionError struct {
	Contradictions []Contradiction
}

func (e *ContradictionError) Error() string {
	pairs := make([]string, len(e.Contradictions))
	for i, c := range e.Contradictions {
		pairs[i] = fmt.Sprintf("%s (semester %d) requires %s (semester %d)",
			c.Course.Code, c.Course.Semester, c.Prerequisite.Code, c.Prerequisite.Semester)
	}
	return "selection contradicts curriculum order: " + strings.Join(pairs, "; ")
}

func (e *ContradictionError) Unwrap() error {
	return apperrors.ErrBatchContradiction
}

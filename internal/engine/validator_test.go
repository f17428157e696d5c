package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
)

func TestValidateScenario(t *testing.T) {
	g := twoCourseGraph(t)
	records := RecordSet{}

	result, err := Validate(g, records, 2, models.CourseStatePassed)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, []string{"CS1"}, codes(result.Missing))

	records[1] = record(1, models.CourseStatePassed, grade(15), "2024-1")

	result, err = Validate(g, records, 2, models.CourseStatePassed)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Empty(t, result.Missing)
}

func TestValidateOnlyGuardsPassed(t *testing.T) {
	g := twoCourseGraph(t)

	for _, target := range []models.CourseState{
		models.CourseStateNotTaken,
		models.CourseStateInProgress,
		models.CourseStateFailed,
		models.CourseStateWithdrawn,
	} {
		t.Run(string(target), func(t *testing.T) {
			result, err := Validate(g, RecordSet{}, 2, target)
			require.NoError(t, err)
			assert.True(t, result.OK)
		})
	}
}

func TestValidateIgnoresInformationalEdges(t *testing.T) {
	g := newTestGraph(t,
		course(1, "MATH1", "Calculus I", 1, 4),
		course(2, "PHYL", "Physics Lab", 2, 1),
		course(3, "PHY2", "Physics II", 2, 4,
			requires(1, models.PrerequisiteRecommended),
			requires(2, models.PrerequisiteCoRequisite),
		),
	)

	result, err := Validate(g, RecordSet{}, 3, models.CourseStatePassed)
	require.NoError(t, err)
	assert.True(t, result.OK)
}

func TestValidateInProgressDoesNotSatisfy(t *testing.T) {
	g := twoCourseGraph(t)
	records := NewRecordSet([]models.CourseRecord{record(1, models.CourseStateInProgress, nil, "")})

	result, err := Validate(g, records, 2, models.CourseStatePassed)
	require.NoError(t, err)
	assert.False(t, result.OK)
}

func TestValidateMatchesMandatoryRuleForEveryAssignment(t *testing.T) {
	g := newTestGraph(t,
		course(1, "A", "Course A", 1, 3),
		course(2, "B", "Course B", 1, 3),
		course(3, "C", "Course C", 2, 3, mandatory(1), mandatory(2)),
		course(4, "D", "Course D", 3, 3, mandatory(3), requires(1, models.PrerequisiteRecommended)),
	)
	ids := []int64{1, 2, 3, 4}

	eachAssignment(ids, func(records RecordSet) {
		for _, id := range ids {
			result, err := Validate(g, records, id, models.CourseStatePassed)
			require.NoError(t, err)

			want := true
			for _, req := range g.mandatory(id) {
				if records.StateOf(req) != models.CourseStatePassed {
					want = false
				}
			}
			assert.Equal(t, want, result.OK)
		}
	})
}

func TestValidateUnknownCourse(t *testing.T) {
	g := twoCourseGraph(t)

	_, err := Validate(g, RecordSet{}, 99, models.CourseStatePassed)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	var notFound *apperrors.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "course", notFound.Resource)
}

func TestCheckTransitionReturnsPrerequisiteError(t *testing.T) {
	g := twoCourseGraph(t)

	err := CheckTransition(g, RecordSet{}, 2, models.CourseStatePassed)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPrerequisitesNotMet)

	var prereqErr *PrerequisiteError
	require.True(t, errors.As(err, &prereqErr))
	assert.Equal(t, "CS2", prereqErr.Course.Code)
	assert.Equal(t, []string{"CS1"}, codes(prereqErr.Missing))
	assert.Len(t, prereqErr.Suggestions(), 1)

	assert.NoError(t, CheckTransition(g, RecordSet{}, 2, models.CourseStateInProgress))
}

func TestSuggestionsFor(t *testing.T) {
	missing := []models.Course{course(1, "CS1", "Programming I", 1, 4)}

	suggestions := SuggestionsFor(missing)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "CS1", suggestions[0].Course.Code)
	assert.Contains(t, suggestions[0].Message, "CS1")
	assert.Contains(t, suggestions[0].Message, "semester 1")

	assert.Empty(t, SuggestionsFor(nil))
}

func TestCheckRecord(t *testing.T) {
	tests := []struct {
		name  string
		rec   models.CourseRecord
		field string
	}{
		{name: "valid", rec: record(1, models.CourseStatePassed, grade(20), "")},
		{name: "lower bound", rec: record(1, models.CourseStatePassed, grade(0), "")},
		{name: "grade too high", rec: record(1, models.CourseStatePassed, grade(20.5), ""), field: "grade"},
		{name: "negative grade", rec: record(1, models.CourseStateFailed, grade(-1), ""), field: "grade"},
		{name: "unknown state", rec: record(1, "DONE", nil, ""), field: "state"},
		{name: "missing course", rec: record(0, models.CourseStatePassed, nil, ""), field: "courseId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			err := CheckRecord(&rec)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *apperrors.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.field, validationErr.Field)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

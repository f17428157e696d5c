package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yigit/curriculum/internal/app/models"
)

func course(id int64, code, name string, semester, credits int, edges ...models.PrerequisiteEdge) models.Course {
	return models.Course{
		ID:            id,
		CurriculumID:  1,
		Code:          code,
		Name:          name,
		Semester:      semester,
		Credits:       credits,
		TheoryHours:   3,
		PracticeHours: 2,
		Prerequisites: edges,
	}
}

func requires(id int64, kind models.PrerequisiteKind) models.PrerequisiteEdge {
	return models.PrerequisiteEdge{RequiredCourseID: id, Kind: kind}
}

func mandatory(id int64) models.PrerequisiteEdge {
	return requires(id, models.PrerequisiteMandatory)
}

func newTestGraph(t *testing.T, courses ...models.Course) *Graph {
	t.Helper()
	g, err := NewGraph(&models.Curriculum{ID: 1, DegreeID: 1, Code: "CS", Name: "Computer Science", Courses: courses})
	require.NoError(t, err)
	return g
}

// twoCourseGraph is CS1 (semester 1) and CS2 (semester 2) requiring CS1.
func twoCourseGraph(t *testing.T) *Graph {
	return newTestGraph(t,
		course(1, "CS1", "Programming I", 1, 4),
		course(2, "CS2", "Programming II", 2, 4, mandatory(1)),
	)
}

func grade(v float64) *float64 {
	return &v
}

func record(courseID int64, state models.CourseState, g *float64, term string) models.CourseRecord {
	return models.CourseRecord{StudentID: 7, CourseID: courseID, State: state, Grade: g, Term: term}
}

func codes(courses []models.Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.Code
	}
	return out
}

var allStates = []models.CourseState{
	models.CourseStateNotTaken,
	models.CourseStateInProgress,
	models.CourseStatePassed,
	models.CourseStateFailed,
	models.CourseStateWithdrawn,
}

// eachAssignment calls fn with every combination of states for the given courses.
func eachAssignment(ids []int64, fn func(RecordSet)) {
	n := len(ids)
	total := 1
	for i := 0; i < n; i++ {
		total *= len(allStates)
	}
	for k := 0; k < total; k++ {
		set := RecordSet{}
		x := k
		for _, id := range ids {
			state := allStates[x%len(allStates)]
			x /= len(allStates)
			if state != models.CourseStateNotTaken {
				set[id] = record(id, state, nil, "")
			}
		}
		fn(set)
	}
}

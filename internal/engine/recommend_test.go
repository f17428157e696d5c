package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/curriculum/internal/app/models"
)

func recommendationGraph(t *testing.T) *Graph {
	return newTestGraph(t,
		course(1, "CS1", "Programming I", 1, 4),
		course(2, "MATH1", "Calculus I", 1, 4),
		course(3, "CS2", "Programming II", 2, 4, mandatory(1)),
		course(4, "ART", "Elective: Art History", 2, 2),
		course(5, "STAT", "Statistics", 2, 3, mandatory(2), requires(3, models.PrerequisiteRecommended)),
		course(6, "ML", "Machine Learning", 7, 4, mandatory(3), mandatory(5)),
		course(7, "THESIS", "Thesis", 8, 6, mandatory(6)),
		course(8, "ROB", "Curso Electivo de Robótica", 7, 3),
	)
}

func TestEligibleMatchesDefinitionForEveryAssignment(t *testing.T) {
	g := newTestGraph(t,
		course(1, "A", "Course A", 1, 3),
		course(2, "B", "Course B", 2, 3, mandatory(1)),
		course(3, "C", "Course C", 2, 3, requires(1, models.PrerequisiteCoRequisite)),
		course(4, "D", "Course D", 3, 3, mandatory(2), mandatory(3)),
	)
	ids := []int64{1, 2, 3, 4}

	eachAssignment(ids, func(records RecordSet) {
		var want []string
		for _, c := range g.Courses() {
			state := records.StateOf(c.ID)
			if state == models.CourseStatePassed || state == models.CourseStateInProgress {
				continue
			}
			ok := true
			for _, req := range g.mandatory(c.ID) {
				if records.StateOf(req) != models.CourseStatePassed {
					ok = false
				}
			}
			if ok {
				want = append(want, c.Code)
			}
		}

		got := codes(Eligible(g, records))
		if want == nil {
			assert.Empty(t, got)
		} else {
			assert.Equal(t, want, got)
		}
	})
}

func TestRecommendForNewStudent(t *testing.T) {
	g := recommendationGraph(t)

	rec := Recommend(g, RecordSet{}, RecommendOptions{})

	assert.Equal(t, []string{"CS1", "MATH1", "ART", "ROB"}, codes(rec.Eligible))
	require.Len(t, rec.BySemester, 3)
	assert.Equal(t, 1, rec.BySemester[0].Semester)
	assert.Equal(t, []string{"CS1", "MATH1"}, codes(rec.BySemester[0].Courses))
	assert.Equal(t, 2, rec.BySemester[1].Semester)
	assert.Equal(t, 7, rec.BySemester[2].Semester)

	require.NotNil(t, rec.NextTerm)
	assert.Equal(t, 1, rec.NextTerm.Semester)
	assert.Equal(t, []string{"ART", "ROB"}, codes(rec.Electives))
	assert.Equal(t, []string{"ROB"}, codes(rec.Advanced))

	locked := make(map[string][]string)
	for _, l := range rec.Locked {
		locked[l.Course.Code] = codes(l.Missing)
	}
	assert.Equal(t, []string{"CS1"}, locked["CS2"])
	assert.Equal(t, []string{"CS2", "STAT"}, locked["ML"])
}

func TestRecommendAfterProgress(t *testing.T) {
	g := recommendationGraph(t)
	records := NewRecordSet([]models.CourseRecord{
		record(1, models.CourseStatePassed, grade(15), "2024-1"),
		record(2, models.CourseStatePassed, grade(12), "2024-1"),
		record(3, models.CourseStateInProgress, nil, "2024-2"),
		record(4, models.CourseStateFailed, grade(6), "2024-2"),
	})

	rec := Recommend(g, records, RecommendOptions{AdvancedThreshold: 1})

	assert.Equal(t, []string{"ART", "STAT", "ROB"}, codes(rec.Eligible))
	require.NotNil(t, rec.NextTerm)
	assert.Equal(t, 2, rec.NextTerm.Semester)
	assert.Equal(t, []string{"ART", "STAT", "ROB"}, codes(rec.Advanced))
	for _, c := range rec.Eligible {
		state := records.StateOf(c.ID)
		assert.NotEqual(t, models.CourseStatePassed, state)
		assert.NotEqual(t, models.CourseStateInProgress, state)
	}
}

func TestRecommendWhenNothingIsLeft(t *testing.T) {
	g := twoCourseGraph(t)
	records := NewRecordSet([]models.CourseRecord{
		record(1, models.CourseStatePassed, grade(15), ""),
		record(2, models.CourseStateInProgress, nil, ""),
	})

	rec := Recommend(g, records, RecommendOptions{})
	assert.Empty(t, rec.Eligible)
	assert.Empty(t, rec.BySemester)
	assert.Nil(t, rec.NextTerm)
}

func TestIsElective(t *testing.T) {
	tests := []struct {
		name    string
		course  string
		markers []string
		want    bool
	}{
		{"english marker", "Elective: Art History", DefaultElectiveMarkers, true},
		{"spanish marker", "Curso Electivo de Robótica", DefaultElectiveMarkers, true},
		{"turkish marker", "Seçmeli Ders I", DefaultElectiveMarkers, true},
		{"no marker", "Programming I", DefaultElectiveMarkers, false},
		{"custom marker", "Free Choice Seminar", []string{"free choice"}, true},
		{"empty marker ignored", "Programming I", []string{""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsElective(models.Course{Name: tt.course}, tt.markers))
		})
	}
}

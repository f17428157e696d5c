package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/curriculum/internal/app/repositories"
	"github.com/yigit/curriculum/internal/app/repositories/memory"
	"github.com/yigit/curriculum/internal/engine"
	"github.com/yigit/curriculum/internal/pkg/curriculumfile"
)

const (
	degreeCS  int64 = 10
	studentA  int64 = 7
	studentB  int64 = 8
	backfillG       = 16.0
)

// csCurriculum is a small computer science degree:
//
//	CS1 (1) -> CS2 (2) -> CS3 (3) -> ROB (7, elective)
//	MATH1 (1) is a recommended prerequisite of CS3
func csCurriculum() *curriculumfile.Curriculum {
	return &curriculumfile.Curriculum{
		DegreeID: degreeCS,
		Code:     "CS",
		Name:     "Computer Science",
		Courses: []curriculumfile.CourseEntry{
			{Code: "CS1", Name: "Programming I", Credits: 6, Semester: 1},
			{Code: "MATH1", Name: "Calculus I", Credits: 6, Semester: 1},
			{Code: "CS2", Name: "Programming II", Credits: 6, Semester: 2, Prerequisites: []curriculumfile.Prerequisite{{Code: "CS1"}}},
			{Code: "CS3", Name: "Data Structures", Credits: 6, Semester: 3, Prerequisites: []curriculumfile.Prerequisite{
				{Code: "CS2", Kind: "mandatory"},
				{Code: "MATH1", Kind: "recommended"},
			}},
			{Code: "ROB", Name: "Robotics Elective", Credits: 3, Semester: 7, Prerequisites: []curriculumfile.Prerequisite{{Code: "CS3"}}},
		},
	}
}

type fixture struct {
	repos      *repositories.Repositories
	curriculum CurriculumService
	progress   ProgressService
	goals      *goalServiceImpl
	graph      *engine.Graph
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repos := memory.Stores()
	svc := NewServices(repos, ProgressOptions{BackfillGrade: backfillG}, zerolog.Nop())

	g, err := svc.Curriculum.Import(context.Background(), csCurriculum())
	require.NoError(t, err)

	return &fixture{
		repos:      repos,
		curriculum: svc.Curriculum,
		progress:   svc.Progress,
		goals:      svc.Goals.(*goalServiceImpl),
		graph:      g,
	}
}

// id resolves a course code of the fixture curriculum.
func (f *fixture) id(t *testing.T, code string) int64 {
	t.Helper()
	c, err := f.graph.CourseByCode(code)
	require.NoError(t, err)
	return c.ID
}

func (f *fixture) pass(t *testing.T, student int64, code string, grade float64, term string) {
	t.Helper()
	_, err := f.progress.Record(context.Background(), RecordCommand{
		StudentID: student,
		DegreeID:  degreeCS,
		CourseID:  f.id(t, code),
		State:     "PASSED",
		Grade:     &grade,
		Term:      term,
	})
	require.NoError(t, err)
}

func ptr(v float64) *float64 {
	return &v
}

package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/app/repositories/memory"
	"github.com/yigit/curriculum/internal/engine"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
	"github.com/yigit/curriculum/internal/pkg/curriculumfile"
)

func TestCurriculumGraphIsCached(t *testing.T) {
	store := memory.NewCurriculumStore()
	model, err := csCurriculum().ToModel(0)
	require.NoError(t, err)
	_, err = store.SaveCurriculum(context.Background(), model)
	require.NoError(t, err)

	svc := NewCurriculumService(store, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Graph(ctx, degreeCS)
	require.NoError(t, err)
	second, err := svc.Graph(ctx, degreeCS)
	require.NoError(t, err)
	assert.Same(t, first, second)

	svc.Invalidate(degreeCS)
	third, err := svc.Graph(ctx, degreeCS)
	require.NoError(t, err)
	assert.NotSame(t, first, third)

	_, err = svc.Graph(ctx, 404)
	assert.True(t, errors.Is(err, apperrors.ErrCurriculumNotFound))
}

func TestCurriculumQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prereqs, err := f.curriculum.Prerequisites(ctx, degreeCS, f.id(t, "CS3"))
	require.NoError(t, err)
	assert.Equal(t, []string{"CS2", "MATH1"}, courseCodes(prereqs))

	prereqs, err = f.curriculum.Prerequisites(ctx, degreeCS, f.id(t, "CS3"), models.PrerequisiteMandatory)
	require.NoError(t, err)
	assert.Equal(t, []string{"CS2"}, courseCodes(prereqs))

	dependents, err := f.curriculum.Dependents(ctx, degreeCS, f.id(t, "CS1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"CS2"}, courseCodes(dependents))

	_, err = f.curriculum.Prerequisites(ctx, degreeCS, 999)
	assert.True(t, errors.Is(err, apperrors.ErrCourseNotFound))

	degrees, err := f.curriculum.ListDegrees(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{degreeCS}, degrees)
}

func TestCurriculumCheckBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	check, err := f.curriculum.CheckBatch(ctx, degreeCS, []int64{f.id(t, "CS2")})
	require.NoError(t, err)
	assert.True(t, check.Valid)
	assert.Empty(t, check.Contradictions)
	assert.Equal(t, []string{"CS1"}, courseCodes(check.Backfill))

	_, err = f.curriculum.CheckBatch(ctx, degreeCS, []int64{f.id(t, "CS2"), 999})
	assert.True(t, errors.Is(err, apperrors.ErrCourseNotFound))
}

func TestCurriculumImportRejectsInconsistentFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cyclic := &curriculumfile.Curriculum{
		DegreeID: 30,
		Code:     "CYC",
		Name:     "Cyclic",
		Courses: []curriculumfile.CourseEntry{
			{Code: "A", Name: "A", Credits: 3, Semester: 1, Prerequisites: []curriculumfile.Prerequisite{{Code: "B"}}},
			{Code: "B", Name: "B", Credits: 3, Semester: 2, Prerequisites: []curriculumfile.Prerequisite{{Code: "A"}}},
		},
	}
	_, err := f.curriculum.Import(ctx, cyclic)
	require.Error(t, err)
	var cycle *engine.CycleError
	assert.True(t, errors.As(err, &cycle))

	_, err = f.curriculum.Graph(ctx, 30)
	assert.True(t, errors.Is(err, apperrors.ErrCurriculumNotFound), "nothing is stored")

	noDegree := csCurriculum()
	noDegree.DegreeID = 0
	_, err = f.curriculum.Import(ctx, noDegree)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	zeroCredits := csCurriculum()
	zeroCredits.DegreeID = 31
	zeroCredits.Courses[0].Credits = 0
	_, err = f.curriculum.Import(ctx, zeroCredits)
	assert.True(t, errors.Is(err, apperrors.ErrCurriculumInconsistent))
}

func TestCurriculumReimportKeepsRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.pass(t, studentA, "CS1", 17, "")

	updated := csCurriculum()
	updated.Courses[0].Name = "Programming Fundamentals"
	g, err := f.curriculum.Import(ctx, updated)
	require.NoError(t, err)

	course, err := g.CourseByCode("CS1")
	require.NoError(t, err)
	assert.Equal(t, f.id(t, "CS1"), course.ID)
	assert.Equal(t, "Programming Fundamentals", course.Name)

	stats, err := f.progress.Stats(ctx, studentA, degreeCS)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Passed)
}

func TestCurriculumImportLogsAndGuardsCodes(t *testing.T) {
	var buf bytes.Buffer
	svc := NewCurriculumService(memory.NewCurriculumStore(), zerolog.New(&buf))
	ctx := context.Background()

	_, err := svc.Import(ctx, csCurriculum())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"Curriculum imported"`)
	assert.Contains(t, buf.String(), `"code":"CS"`)

	clash := csCurriculum()
	clash.DegreeID = 99
	_, err = svc.Import(ctx, clash)
	assert.True(t, errors.Is(err, apperrors.ErrResourceAlreadyExists))

	_, err = svc.Graph(ctx, 99)
	assert.True(t, errors.Is(err, apperrors.ErrCurriculumNotFound))
}

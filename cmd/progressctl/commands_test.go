package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"github.com/yigit/curriculum/internal/app/models/dto"
	"github.com/yigit/curriculum/internal/engine"
)

const testCurriculum = `
degree_id: 3
code: SE
name: Software Engineering
courses:
  - {code: SE101, name: Programming, credits: 6, semester: 1}
  - {code: SE102, name: Algorithms, credits: 6, semester: 2, prerequisites: [{code: SE101}]}
  - {code: SE201, name: Systems, credits: 6, semester: 3, prerequisites: [{code: SE102}]}
  - {code: SE150, name: Early Bird, credits: 3, semester: 1, prerequisites: [{code: SE201, kind: recommended}]}
`

const testRecords = `
student_id: 5
records:
  - {course: SE101, state: passed, grade: 18, term: 2024-1}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(&out)
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"progressctl"}, args...))
	return &out, err
}

func exitCode(err error) int {
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return -1
}

func TestOfflineCommands(t *testing.T) {
	dir := t.TempDir()
	curriculum := writeFile(t, dir, "curriculum.yaml", testCurriculum)
	records := writeFile(t, dir, "records.yaml", testRecords)

	t.Run("stats", func(t *testing.T) {
		out, err := run(t, "stats", "--curriculum", curriculum, "--records", records)
		require.NoError(t, err)

		var stats engine.Stats
		require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
		assert.Equal(t, 4, stats.TotalCourses)
		assert.Equal(t, 1, stats.Passed)
		assert.Equal(t, 18.0, stats.GPA)
		assert.Equal(t, 6, stats.CreditsPassed)
	})

	t.Run("validate allowed", func(t *testing.T) {
		out, err := run(t, "validate", "--curriculum", curriculum, "--records", records, "--course", "SE102")
		require.NoError(t, err)

		var resp dto.ValidateCourseResponse
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
		assert.True(t, resp.OK)
	})

	t.Run("validate rejected", func(t *testing.T) {
		out, err := run(t, "validate", "--curriculum", curriculum, "--records", records, "--course", "SE201")
		assert.Equal(t, exitRejected, exitCode(err))

		var resp dto.ValidateCourseResponse
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
		assert.False(t, resp.OK)
		require.Len(t, resp.Missing, 1)
		assert.Equal(t, "SE102", resp.Missing[0].Code)
	})

	t.Run("recommend", func(t *testing.T) {
		out, err := run(t, "recommend", "--curriculum", curriculum, "--records", records)
		require.NoError(t, err)

		var resp dto.RecommendationResponse
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
		require.NotNil(t, resp.NextTerm)
		codes := []string{}
		for _, c := range resp.NextTerm.Courses {
			codes = append(codes, c.Code)
		}
		assert.Equal(t, []string{"SE150"}, codes)
	})

	t.Run("check-batch with backfill", func(t *testing.T) {
		out, err := run(t, "check-batch", "--curriculum", curriculum, "--courses", "SE201")
		require.NoError(t, err)

		var resp dto.CheckBatchResponse
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
		assert.True(t, resp.Valid)
		require.Len(t, resp.Backfill, 2)
		assert.Equal(t, "SE101", resp.Backfill[0].Code)
		assert.Equal(t, "SE102", resp.Backfill[1].Code)
	})

	t.Run("check-batch contradiction", func(t *testing.T) {
		out, err := run(t, "check-batch", "--curriculum", curriculum, "--courses", "SE150,SE201")
		assert.Equal(t, exitRejected, exitCode(err))

		var resp dto.CheckBatchResponse
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
		assert.False(t, resp.Valid)
		require.Len(t, resp.Contradictions, 1)
		assert.Equal(t, "SE150", resp.Contradictions[0].Course.Code)
		assert.Equal(t, "SE201", resp.Contradictions[0].Prerequisite.Code)
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := run(t, "validate", "--curriculum", curriculum, "--course", "NOPE")
		assert.Error(t, err)
	})
}

func TestCyclicCurriculumIsRejected(t *testing.T) {
	dir := t.TempDir()
	curriculum := writeFile(t, dir, "cyclic.yaml", `
degree_id: 9
code: CYC
name: Cyclic
courses:
  - {code: A, name: A, credits: 1, semester: 1, prerequisites: [{code: B}]}
  - {code: B, name: B, credits: 1, semester: 1, prerequisites: [{code: A}]}
`)

	_, err := run(t, "stats", "--curriculum", curriculum)
	var cycle *engine.CycleError
	assert.True(t, errors.As(err, &cycle), "got %v", err)
}

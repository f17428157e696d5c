package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearPrerequisitesCoversWholeCurriculum(t *testing.T) {
	repo := NewCurriculumRepository(nil)

	sql, args, err := repo.clearPrerequisites(42).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM course_prerequisites WHERE course_id IN (SELECT id FROM courses WHERE curriculum_id = $1)", sql)
	assert.Equal(t, []interface{}{int64(42)}, args)
}

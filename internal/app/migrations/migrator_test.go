package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "001", versionOf("migrations/001_init.sql"))
	assert.Equal(t, "002", versionOf("002_goal_indexes.sql"))
}

func TestPending(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_goals.sql", "001_init.sql", "003_records.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "004_dir.sql"), 0o700))

	files, err := pending(dir, []string{"001"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "002_goals.sql"),
		filepath.Join(dir, "003_records.sql"),
	}, files)

	_, err = pending(filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}

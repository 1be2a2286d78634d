package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"add referral clicks":   "add_referral_clicks",
		"Add-Referral-Clicks":   "add_referral_clicks",
		"ADD_REFERRAL_CLICKS":   "add_referral_clicks",
		"add__referral__clicks": "add_referral_clicks",
		"Add Codes 123":         "add_codes_123",
		"   spaces   ":          "spaces",
		"special!@#$chars":      "specialchars",
		"trailing_":             "trailing",
		"_leading":              "leading",
		"":                      "",
	}
	for input, want := range tests {
		assert.Equal(t, want, sanitizeName(input), "input %q", input)
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add referral clicks", "Track clicks on referral links")
	require.NoError(t, err)

	// Version is a 14 digit timestamp so files sort chronologically.
	assert.Len(t, mf.Version, 14)

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase)
	assert.Contains(t, upBase, "add_referral_clicks")

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add referral clicks")
	assert.Contains(t, string(up), "Track clicks on referral links")
	assert.Contains(t, string(up), "Write your UP migration SQL here")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")
	assert.Contains(t, string(down), "Write your DOWN migration SQL here")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "db", "migrations")

	_, err := CreateMigration(nested, "init schema", "")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	writeFiles := func(t *testing.T, dir string, names ...string) {
		t.Helper()
		for _, name := range names {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- sql"), 0644))
		}
	}

	t.Run("returns sorted pair base names", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000002_add_referral_codes.up.sql",
			"000002_add_referral_codes.down.sql",
			"000001_init_schema.up.sql",
			"000001_init_schema.down.sql",
			"000003_add_clicks.up.sql",
			"000003_add_clicks.down.sql",
		)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"000001_init_schema",
			"000002_add_referral_codes",
			"000003_add_clicks",
		}, migrations)
	})

	t.Run("ignores files that are not up migrations", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000001_init.up.sql",
			"000001_init.down.sql",
			"README.md",
			"schema.yaml",
			".gitkeep",
		)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init"}, migrations)
	})

	t.Run("ignores directories", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "000001_init.up.sql")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.up.sql"), 0755))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init"}, migrations)
	})

	t.Run("empty directory", func(t *testing.T) {
		migrations, err := ListMigrations(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("missing directory is treated as empty", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}

package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ryznreal/offers/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add brochure column", "add_brochure_column"},
		{"Add-Unit-Index", "add_unit_index"},
		{"ADD__BOOKINGS__TABLE", "add_bookings_table"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_Sequential(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "create projects", "Project aggregate table")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_create_projects.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_create_projects.down.sql"), first.DownPath)

	content, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "-- Migration: create projects")
	assert.Contains(t, string(content), "-- Description: Project aggregate table")

	second, err := CreateMigration(dir, "create properties", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)
}

func TestCreateMigration_ContinuesAfterGap(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000007_x.up.sql"), nil, 0o644))

	mf, err := CreateMigration(dir, "next", "")
	require.NoError(t, err)
	assert.Equal(t, "000008", mf.Version)
}

func TestCreateMigration_Errors(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(dir, "init", "")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000010_ten.up.sql", "000010_ten.down.sql",
		"000002_two.up.sql", "000002_two.down.sql",
		"README.md", "notes.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000003_dir.up.sql"), 0o755))

	got, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000002_two", "000010_ten"}, got)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	got, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmbeddedMigrations(t *testing.T) {
	ups, err := filepath.Glob("../../../migrations/*.up.sql")
	require.NoError(t, err)

	for _, path := range ups {
		name := filepath.Base(path)
		embedded, err := migrations.FS.ReadFile(name)
		require.NoError(t, err, name)
		onDisk, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, string(onDisk), string(embedded))

		down := name[:len(name)-len(".up.sql")] + ".down.sql"
		_, err = migrations.FS.ReadFile(down)
		assert.NoError(t, err, "missing rollback for %s", name)
	}

	listed, err := ListMigrations("../../../migrations")
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_create_projects", "000002_create_properties"}, listed)
}

package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pawfund/pawfund-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestMigrationsCreateEveryTable(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	var all strings.Builder
	for _, f := range files {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		all.Write(data)
	}
	content := all.String()

	for _, table := range []string{
		"users",
		"verification_tokens",
		"pets",
		"screening_results",
		"guest_carts",
		"user_carts",
		"adoptions",
		"events",
		"event_collaborators",
		"event_volunteers",
		"event_donors",
		"collaboration_requests",
		"donations",
		"notifications",
	} {
		require.Contains(t, content, "CREATE TABLE IF NOT EXISTS "+table+" (", "missing table %s", table)
		require.Contains(t, content, "DROP TABLE IF EXISTS "+table+";", "missing rollback for %s", table)
	}
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Pet Tags!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_pet_tags.sql"))
	require.NoError(t, migrate.ValidateDir(dir))
}

package migrate_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/migrate"
)

func TestMigrationDirsAreValid(t *testing.T) {
	for _, dialect := range []string{"postgres", "sqlite"} {
		require.NoError(t, migrate.ValidateDir(migrate.DirFor("migrations", dialect)), dialect)
	}
}

func TestDialectsShipTheSameVersions(t *testing.T) {
	pg, err := filepath.Glob(filepath.Join("migrations", "postgres", "*.sql"))
	require.NoError(t, err)
	lite, err := filepath.Glob(filepath.Join("migrations", "sqlite", "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, pg)
	require.Len(t, lite, len(pg))
	for i := range pg {
		require.Equal(t, filepath.Base(pg[i]), filepath.Base(lite[i]))
	}
}

func TestGroupMembersMigrationEnforcesUniquePair(t *testing.T) {
	for _, dialect := range []string{"postgres", "sqlite"} {
		matches, err := filepath.Glob(filepath.Join("migrations", dialect, "*_create_group_members.sql"))
		require.NoError(t, err)
		require.Len(t, matches, 1)

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		content := string(data)

		for _, sub := range []string{
			"CREATE TABLE IF NOT EXISTS group_members",
			"CREATE UNIQUE INDEX IF NOT EXISTS uq_group_members_group_user ON group_members (group_id, user_id)",
			"CHECK (status IN ('pending', 'active', 'rejected'))",
			"DROP TABLE IF EXISTS group_members",
		} {
			if !strings.Contains(content, sub) {
				t.Errorf("%s: missing expected statement %q", dialect, sub)
			}
		}
	}
}

func TestSQLiteMigrationsApplyAndRollBack(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrate_test?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	dir := migrate.DirFor("migrations", "sqlite")
	require.NoError(t, migrate.Run(ctx, db, "sqlite", dir, "up"))

	for _, table := range []string{"users", "groups", "group_members", "contributions", "notifications"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	require.NoError(t, migrate.Run(ctx, db, "sqlite", dir, "reset"))
	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='groups'").Scan(&count))
	require.Zero(t, count)
}

func TestRunRejectsUnknownDialect(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.Error(t, migrate.Run(context.Background(), db, "mysql", "migrations", "up"))
}

func TestCreateSQLMigrationWritesGooseTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Group Archive Flag")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_group_archive_flag.sql"))
	require.NoError(t, migrate.ValidateDir(dir))
}

func TestCreateForDialectsSharesOneVersion(t *testing.T) {
	base := t.TempDir()
	paths, err := migrate.CreateForDialects(base, "add-contribution-receipts")
	require.NoError(t, err)
	require.Len(t, paths, len(migrate.Dialects))

	first := filepath.Base(paths[0])
	for i, dialect := range migrate.Dialects {
		require.Equal(t, first, filepath.Base(paths[i]))
		require.NoError(t, migrate.ValidateDir(migrate.DirFor(base, dialect)))
	}

	_, err = migrate.CreateSQLMigration(base, "!!!")
	require.Error(t, err)
}

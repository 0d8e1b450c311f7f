package migrate

import (
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/require"

	"github.com/edyou/engine-dashboard/internal/db"
)

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"up", "down"} {
		d, err := ParseDirection(s)
		require.NoError(t, err)
		require.Equal(t, Direction(s), d)
	}
	for _, s := range []string{"", "UP", "sideways"} {
		_, err := ParseDirection(s)
		require.Error(t, err)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	err := Run("   ", Up)
	require.ErrorContains(t, err, "dsn is not set")

	err = Run("postgres://localhost/edyou", Direction("left"))
	require.ErrorContains(t, err, "direction must be up or down")
}

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(db.MigrationFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Fatalf("unexpected file %s", name)
		}
	}
	require.Equal(t, ups, downs)
}

func TestMigrationSourceReadable(t *testing.T) {
	src, err := iofs.New(db.MigrationFS, "migrations")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	require.EqualValues(t, 1, first)

	r, _, err := src.ReadUp(first)
	require.NoError(t, err)
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	r.Close()

	sql := string(body)
	for _, table := range []string{"users", "runs", "events", "features", "decisions", "email_templates", "email_attempts", "automation_triggers", "email_suppression"} {
		require.Contains(t, sql, "CREATE TABLE "+table+" (")
	}
	require.Contains(t, sql, "CREATE VIEW latest_features")
	require.Contains(t, sql, "DISTINCT ON (user_id, name)")
}

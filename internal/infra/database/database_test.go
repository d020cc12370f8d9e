package database

import (
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, entry := range entries {
		switch {
		case strings.HasSuffix(entry.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(entry.Name(), ".down.sql"):
			downs++
		}
	}
	require.Equal(t, 2, ups)
	require.Equal(t, ups, downs)
}

func TestMigrateRejectsKeywordDSN(t *testing.T) {
	err := Migrate("host=localhost user=findmy", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}

package migrations

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecer struct {
	statements []string
	err        error
}

func (r *recordingExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	r.statements = append(r.statements, sql)
	return pgconn.CommandTag{}, r.err
}

func TestRunPostgresMigrationsAppliesEmbeddedFiles(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_init.sql", files[0])

	db := &recordingExecer{}
	require.NoError(t, RunPostgresMigrations(context.Background(), db))
	require.Len(t, db.statements, len(files))
	assert.True(t, strings.Contains(db.statements[0], "CREATE TABLE IF NOT EXISTS token_snapshots"))
	assert.True(t, strings.Contains(db.statements[0], "local_activities"))
}

func TestRunPostgresMigrationsStopsOnError(t *testing.T) {
	db := &recordingExecer{err: errors.New("syntax error")}
	err := RunPostgresMigrations(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_init.sql")
}

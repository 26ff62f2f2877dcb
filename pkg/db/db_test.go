package db

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.Migrate(context.Background()))
	return database
}

func TestMigrateIsIdempotent(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, database.Migrate(ctx))
	v, err := database.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, v)
}

func TestDocumentRoundTrip(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	_, ok, err := database.LoadDocument(ctx, "effects.cfg")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, database.SaveDocument(ctx, "effects.cfg", json.RawMessage(`{"ivl":30,"efs":[]}`)))
	require.NoError(t, database.SaveDocument(ctx, "effects.cfg", json.RawMessage(`{"ivl":0,"efs":[]}`)))

	doc, ok, err := database.LoadDocument(ctx, "effects.cfg")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"ivl":0,"efs":[]}`, string(doc))

	keys, err := database.Documents().Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"effects.cfg"}, keys)

	require.NoError(t, database.RemoveDocument(ctx, "effects.cfg"))
	_, ok, err = database.LoadDocument(ctx, "effects.cfg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveDocumentRejectsInvalidJSON(t *testing.T) {
	database := openTestDB(t)

	err := database.SaveDocument(context.Background(), "bad", json.RawMessage(`{not json`))
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestScalarReplace(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, database.WriteScalar(ctx, "current.cfg", "4"))
	require.NoError(t, database.WriteScalar(ctx, "current.cfg", "17"))

	v, ok, err := database.ReadScalar(ctx, "current.cfg")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "17", v)

	require.NoError(t, database.RemoveScalar(ctx, "current.cfg"))
	_, ok, err = database.ReadScalar(ctx, "current.cfg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBootstrapKeepsExistingDocuments(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	needs, err := database.NeedsBootstrap(ctx)
	require.NoError(t, err)
	assert.True(t, needs)

	require.NoError(t, database.SaveDocument(ctx, "device.cfg", json.RawMessage(`{"hostname":"porch"}`)))
	require.NoError(t, database.Bootstrap(ctx, map[string]json.RawMessage{
		"device.cfg": json.RawMessage(`{"hostname":"lightd"}`),
	}))

	doc, _, err := database.LoadDocument(ctx, "device.cfg")
	require.NoError(t, err)
	assert.JSONEq(t, `{"hostname":"porch"}`, string(doc))

	needs, err = database.NeedsBootstrap(ctx)
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestOpenMemory(t *testing.T) {
	database, err := Open(MemoryPath)
	require.NoError(t, err)
	defer database.Close()
	ctx := context.Background()

	require.NoError(t, database.Migrate(ctx))
	require.NoError(t, database.WriteScalar(ctx, "k", "v"))
	v, ok, err := database.ReadScalar(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Equal(t, MemoryPath, database.Path())
}

func TestResolvePath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	p, err := resolvePath("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/lightd/lightd.db", p)

	p, err = resolvePath("/var/lib/lightd.db")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/lightd.db", p)
}

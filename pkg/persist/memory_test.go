package persist

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGatewayDocuments(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()

	_, ok, err := g.LoadDocument(ctx, "effects.cfg")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.SaveDocument(ctx, "effects.cfg", json.RawMessage(`{"ivl":30}`)))
	doc, ok, err := g.LoadDocument(ctx, "effects.cfg")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"ivl":30}`, string(doc))

	require.NoError(t, g.RemoveDocument(ctx, "effects.cfg"))
	_, ok, _ = g.LoadDocument(ctx, "effects.cfg")
	assert.False(t, ok)
}

func TestMemoryGatewayScalarOverwrites(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()

	require.NoError(t, g.WriteScalar(ctx, "current.cfg", "12"))
	require.NoError(t, g.WriteScalar(ctx, "current.cfg", "3"))

	v, ok, err := g.ReadScalar(ctx, "current.cfg")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestMemoryGatewayFailWrites(t *testing.T) {
	g := NewMemoryGateway()
	g.FailWrites = true

	err := g.SaveDocument(context.Background(), "k", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrUnavailable)
}

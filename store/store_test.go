package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveRecent(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	require.NoError(t, s.Save(ctx, Equation{Signature: "a:1|", Expression: "1+1", Value: "2", Backend: "stroke", CreatedAt: base}))
	require.NoError(t, s.Save(ctx, Equation{Signature: "b:1|", Expression: "36+15", Value: "51", Backend: "vision", MaxX: 10, CreatedAt: base.Add(time.Second)}))

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "51", got[0].Value)
	assert.Equal(t, "vision", got[0].Backend)
	assert.Equal(t, 10.0, got[0].MaxX)
	assert.Equal(t, base.Add(time.Second).Unix(), got[0].CreatedAt.Unix())
	assert.Equal(t, "2", got[1].Value)

	got, err = s.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSaveRequiresValue(t *testing.T) {
	s := openTest(t)
	assert.Error(t, s.Save(context.Background(), Equation{Signature: "a"}))
}

func TestBySignature(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	e, err := s.BySignature(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, e)

	require.NoError(t, s.Save(ctx, Equation{Signature: "x:2|", Value: "4"}))
	e, err = s.BySignature(ctx, "x:2|")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "4", e.Value)
	assert.NotZero(t, e.ID)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "eq.sqlite")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), Equation{Signature: "s", Value: "1"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

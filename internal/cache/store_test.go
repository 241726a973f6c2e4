package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/token"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.InitSchema(context.Background()))
	return s
}

func TestKey(t *testing.T) {
	base := Key("a.still.yaml", []byte("input"), "0.4.0", "crate::still_core")
	assert.Len(t, base, 64)
	assert.Equal(t, base, Key("a.still.yaml", []byte("input"), "0.4.0", "crate::still_core"))
	assert.NotEqual(t, base, Key("a.still.yaml", []byte("input2"), "0.4.0", "crate::still_core"))
	assert.NotEqual(t, base, Key("a.still.yaml", []byte("input"), "0.5.0", "crate::still_core"))
	assert.NotEqual(t, base, Key("a.still.yaml", []byte("input"), "0.4.0", "still_core"))
	assert.NotEqual(t, base, Key("b/a.still.yaml", []byte("input"), "0.4.0", "crate::still_core"))
	assert.NotEqual(t, Key("ab", []byte("c"), "v", "m"), Key("a", []byte("bc"), "v", "m"))
}

func TestGetMiss(t *testing.T) {
	s := openTestStore(t)
	a, err := s.Get(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestPutGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rng := token.Range{Start: token.Position{Line: 3, Column: 5}, End: token.Position{Line: 3, Column: 12}}
	in := &Artifact{
		Name: "main",
		Rust: "pub const answer: Int = 42;\n",
		Diagnostics: []*diagnostics.Diagnostic{
			{Code: diagnostics.ErrN004, Range: rng, Message: "I could not find a variable named nowhere", File: "main"},
		},
	}
	require.NoError(t, s.Put(ctx, "k1", in))

	out, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "main", out.Name)
	assert.Equal(t, in.Rust, out.Rust)
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, *in.Diagnostics[0], *out.Diagnostics[0])
	assert.Equal(t, s.RunID(), out.RunID)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt), "created_at %v != %v", in.CreatedAt, out.CreatedAt)
}

func TestPutReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "k", &Artifact{Name: "a", Rust: "old"}))
	require.NoError(t, s.Put(ctx, "k", &Artifact{Name: "a", Rust: "new"}))

	out, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", out.Rust)
	assert.Empty(t, out.Diagnostics)
}

func TestReopenKeepsArtifacts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.InitSchema(ctx))
	require.NoError(t, s.Put(ctx, "k", &Artifact{Name: "a", Rust: "text"}))
	firstRun := s.RunID()
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	require.NoError(t, s.InitSchema(ctx))
	assert.NotEqual(t, firstRun, s.RunID())

	out, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "text", out.Rust)
	assert.Equal(t, firstRun, out.RunID)
}

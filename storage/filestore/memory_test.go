package filestore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreContract(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// a file cannot land in a directory that was never created
	err := s.Store(ctx, "uploads/2025/file.pdf", strings.NewReader("x"))
	require.Error(t, err)

	// directories are created one level at a time
	require.Error(t, s.EnsureDir(ctx, "uploads/2025"))
	require.NoError(t, s.EnsureDir(ctx, "uploads"))
	require.NoError(t, s.EnsureDir(ctx, "uploads/2025"))
	// creating an existing directory is idempotent
	require.NoError(t, s.EnsureDir(ctx, "uploads/2025"))

	require.NoError(t, s.Store(ctx, "uploads/2025/file.pdf", strings.NewReader("contenido")))
	assert.True(t, s.Exists("uploads/2025/file.pdf"))

	data, err := s.Fetch(ctx, "uploads/2025/file.pdf")
	require.NoError(t, err)
	assert.Equal(t, "contenido", string(data))

	names, err := s.List(ctx, "uploads/2025")
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads/2025/file.pdf"}, names)

	require.NoError(t, s.Delete(ctx, "uploads/2025/file.pdf"))
	assert.False(t, s.Exists("uploads/2025/file.pdf"))
	require.Error(t, s.Delete(ctx, "uploads/2025/file.pdf"))
}

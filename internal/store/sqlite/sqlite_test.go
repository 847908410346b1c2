package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vintagepos/backend/internal/store"
)

func TestGetSetPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pos.db")

	s, err := New(ctx, path)
	require.NoError(t, err)

	_, err = s.Get(ctx, store.KeyInvoices)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, store.KeyInvoices, []byte(`[{"id":"INV-1"}]`)))
	require.NoError(t, s.Set(ctx, store.KeyInvoices, []byte(`[{"id":"INV-2"}]`)))
	require.NoError(t, s.Close())

	s, err = New(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.Get(ctx, store.KeyInvoices)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"INV-2"}]`, string(got))
}

package testkit

import (
	"context"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevedylandev/cid-proof/cidutil"
	"github.com/stevedylandev/cid-proof/storage"
)

// NewCAS constructs a fresh, empty CAS isolated from other tests.
type NewCAS func(t *testing.T) storage.CAS

// RunCASConformance checks the storage.CAS contract against newCAS.
func RunCASConformance(t *testing.T, newCAS NewCAS) {
	t.Helper()
	ctx := context.Background()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		cas := newCAS(t)
		want := []byte("hello, cidproof storage")

		id, err := cas.Put(ctx, want)
		require.NoError(t, err)
		assert.True(t, cidutil.CIDv1RawSHA256CID(want).Equals(id), "Put CID mismatch: %s", id)

		got, err := cas.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("same bytes")

		id1, err := cas.Put(ctx, b)
		require.NoError(t, err)
		id2, err := cas.Put(ctx, b)
		require.NoError(t, err)
		assert.True(t, id1.Equals(id2))
	})

	t.Run("EmptyContent", func(t *testing.T) {
		cas := newCAS(t)
		id, err := cas.Put(ctx, nil)
		require.NoError(t, err)
		got, err := cas.Get(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("missing")
		id := cidutil.CIDv1RawSHA256CID(b)

		ok, err := cas.Has(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = cas.Get(ctx, id)
		assert.True(t, storage.IsNotFound(err), "Get missing: got %v", err)

		_, err = cas.Put(ctx, b)
		require.NoError(t, err)
		ok, err = cas.Has(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("RejectUndefCID", func(t *testing.T) {
		cas := newCAS(t)
		ok, err := cas.Has(ctx, cid.Undef)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = cas.Get(ctx, cid.Undef)
		assert.Error(t, err)
	})
}

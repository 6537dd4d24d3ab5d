package verifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevedylandev/cid-proof/guest"
	"github.com/stevedylandev/cid-proof/publicvalues"
	"github.com/stevedylandev/cid-proof/storage"
	"github.com/stevedylandev/cid-proof/storage/localfs"
)

func committed(t *testing.T, content []byte) []byte {
	t.Helper()
	pv, _, err := guest.Execute(context.Background(), content, nil)
	require.NoError(t, err)
	return pv.Bytes()
}

func TestResolveCID(t *testing.T) {
	id, r := publicvalues.FromContent([]byte("abc"))
	got, err := ResolveCID(r)
	require.NoError(t, err)
	assert.True(t, id.Equals(got))
	assert.Equal(t, id.Bytes(), Reconstruct(r))
}

func TestResolveCID_TrailingZero(t *testing.T) {
	_, r := publicvalues.FromContent([]byte("403"))
	require.Equal(t, uint8(35), r.CIDLength)

	_, err := ResolveCID(r)
	assert.ErrorIs(t, err, ErrTruncatedCID)
}

func TestVerifyContent(t *testing.T) {
	for _, content := range [][]byte{[]byte("abc"), nil, []byte("403")} {
		pv := committed(t, content)
		r, err := VerifyContent(pv, content)
		require.NoError(t, err, "content %q", content)
		_, want := publicvalues.FromContent(content)
		assert.Equal(t, want, r)
	}
}

func TestVerifyContent_Mismatch(t *testing.T) {
	pv := committed(t, []byte("abc"))
	_, err := VerifyContent(pv, []byte("abd"))
	assert.ErrorIs(t, err, ErrCIDMismatch)

	// Same bytes as "abc" but a shorter length; a length disagreement is
	// reported before any byte comparison.
	_, r := publicvalues.FromContent([]byte("abc"))
	r.CIDLength--
	assert.ErrorIs(t, VerifyRecord(r, []byte("abc")), ErrLengthMismatch)

	_, r = publicvalues.FromContent([]byte("abc"))
	r.CIDBytesRemainder[15] = 0x01
	r.CIDLength = 36
	assert.ErrorIs(t, VerifyRecord(r, []byte("abc")), ErrCIDMismatch)

	_, err = VerifyContent(pv[:95], []byte("abc"))
	assert.ErrorIs(t, err, publicvalues.ErrPublicValuesLength)
}

func TestFetchAndVerify(t *testing.T) {
	ctx := context.Background()
	cas, err := localfs.New(t.TempDir())
	require.NoError(t, err)

	content := []byte("stored file")
	stored, err := cas.Put(ctx, content)
	require.NoError(t, err)

	id, got, err := FetchAndVerify(ctx, cas, committed(t, content))
	require.NoError(t, err)
	assert.True(t, stored.Equals(id))
	assert.Equal(t, content, got)

	_, _, err = FetchAndVerify(ctx, cas, committed(t, []byte("never stored")))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, _, err = FetchAndVerify(ctx, cas, committed(t, []byte("403")))
	assert.ErrorIs(t, err, ErrTruncatedCID)
}

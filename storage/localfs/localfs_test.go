package localfs

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevedylandev/cid-proof/cidutil"
	"github.com/stevedylandev/cid-proof/storage"
	"github.com/stevedylandev/cid-proof/storage/casregistry"
	"github.com/stevedylandev/cid-proof/storage/testkit"
)

func TestLocalFS_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		t.Helper()
		cas, err := New(t.TempDir())
		require.NoError(t, err)
		return cas
	})
}

func TestLocalFS_ShardedLayout(t *testing.T) {
	dir := t.TempDir()
	cas, err := New(dir)
	require.NoError(t, err)

	id, err := cas.Put(context.Background(), []byte("abc"))
	require.NoError(t, err)

	_, err = os.Stat(dir + "/ba/bafkreif2pall7dybz7vecqka3zo24irdwabwdi4wc55jznaq75q7eaavvu")
	assert.NoError(t, err)
	assert.Equal(t, cas.pathFor(id), dir+"/ba/"+id.String())
}

func TestLocalFS_RejectMutationByOverwrite(t *testing.T) {
	ctx := context.Background()
	cas, err := New(t.TempDir())
	require.NoError(t, err)

	orig := []byte("original")
	id, err := cas.Put(ctx, orig)
	require.NoError(t, err)

	// Corrupt the stored object out-of-band.
	path := cas.pathFor(id)
	require.NoError(t, os.Chmod(path, 0o644))
	require.NoError(t, os.WriteFile(path, []byte("corrupted"), 0o644))

	_, err = cas.Get(ctx, id)
	assert.ErrorIs(t, err, storage.ErrCIDMismatch)

	// Put must not repair the corrupted object.
	_, err = cas.Put(ctx, orig)
	assert.ErrorIs(t, err, storage.ErrImmutable)

	assert.True(t, cidutil.CIDv1RawSHA256CID(orig).Equals(id))
}

func TestLocalFS_CancelledContext(t *testing.T) {
	cas, err := New(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = cas.Put(ctx, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_RequiresRoot(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestRegistryBackend(t *testing.T) {
	assert.Contains(t, casregistry.Names(casregistry.UsageDaemon), "localfs")

	_, _, err := casregistry.Open("localfs", casregistry.UsageCLI, nil)
	assert.Error(t, err)

	cas, closeFn, err := casregistry.Open("localfs", casregistry.UsageCLI, map[string]string{"dir": t.TempDir()})
	require.NoError(t, err)
	assert.Nil(t, closeFn)
	assert.IsType(t, &CAS{}, cas)
}

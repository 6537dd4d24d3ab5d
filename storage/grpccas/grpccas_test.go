package grpccas

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/stevedylandev/cid-proof/cidutil"
	"github.com/stevedylandev/cid-proof/storage"
	"github.com/stevedylandev/cid-proof/storage/localfs"
	"github.com/stevedylandev/cid-proof/storage/testkit"
)

func newBufconnClient(t *testing.T, backend storage.CAS) *Client {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterCASServer(srv, &Server{CAS: backend})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
	client, err := Dial("passthrough:///bufnet", DialOptions{Extra: []grpc.DialOption{grpc.WithContextDialer(dialer)}})
	require.NoError(t, err)
	client.Timeout = 2 * time.Second
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newLocalFS(t *testing.T) storage.CAS {
	t.Helper()
	cas, err := localfs.New(t.TempDir())
	require.NoError(t, err)
	return cas
}

func TestGRPCCAS_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		return newBufconnClient(t, newLocalFS(t))
	})
}

func TestGRPCCAS_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newBufconnClient(t, newLocalFS(t))

	payload := []byte("hello grpccas")
	id, err := client.Put(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, cidutil.CIDv1RawSHA256(payload), id.String())

	ok, err := client.Has(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := client.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

// lyingCAS returns bytes that do not match the requested CID.
type lyingCAS struct{ storage.CAS }

func (l lyingCAS) Get(context.Context, cid.Cid) ([]byte, error) { return []byte("not it"), nil }

func TestGRPCCAS_ServerRejectsMismatchedBytes(t *testing.T) {
	ctx := context.Background()
	client := newBufconnClient(t, lyingCAS{CAS: newLocalFS(t)})

	_, err := client.Get(ctx, cidutil.CIDv1RawSHA256CID([]byte("abc")))
	assert.ErrorIs(t, err, storage.ErrCIDMismatch)
}

func TestMapErrRoundTrip(t *testing.T) {
	for _, want := range []error{storage.ErrNotFound, storage.ErrInvalidCID, storage.ErrCIDMismatch, storage.ErrImmutable} {
		assert.ErrorIs(t, mapRPC(mapErr(want)), want)
	}
	st, _ := status.FromError(mapErr(context.DeadlineExceeded))
	assert.Equal(t, codes.DeadlineExceeded, st.Code())
	assert.Nil(t, mapRPC(nil))
}

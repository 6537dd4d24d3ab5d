package main

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stevedylandev/cid-proof/internal/config"
	"github.com/stevedylandev/cid-proof/storage/casconfig"
	"github.com/stevedylandev/cid-proof/storage/grpccas"
	"github.com/stevedylandev/cid-proof/storage/localfs"
)

func TestServe(t *testing.T) {
	backend, err := localfs.New(t.TempDir())
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, lis, backend, zap.NewNop()) }()

	client, err := grpccas.Dial(lis.Addr().String(), grpccas.DialOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	rpcCtx, rpcCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer rpcCancel()
	id, err := client.Put(rpcCtx, []byte("served"))
	require.NoError(t, err)

	ok, err := backend.Has(rpcCtx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := client.Get(rpcCtx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("served"), got)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestOpenBackend(t *testing.T) {
	cfg := config.Config{CAS: casconfig.Config{Backends: []casconfig.BackendConfig{
		{Name: "localfs", ID: "primary", Config: map[string]string{"dir": t.TempDir()}},
		{Name: "localfs", ID: "secondary", Config: map[string]string{"dir": t.TempDir()}},
	}}}

	cfg.Daemon.Backend = "secondary"
	cas, closeFn, err := openBackend(cfg)
	require.NoError(t, err)
	require.NoError(t, closeFn())
	assert.IsType(t, &localfs.CAS{}, cas)

	cfg.Daemon.Backend = "missing"
	_, _, err = openBackend(cfg)
	assert.Error(t, err)

	cfg.Daemon.Backend = ""
	cfg.CAS.Backends = append(cfg.CAS.Backends, casconfig.BackendConfig{
		Name: "grpc", Config: map[string]string{"target": "127.0.0.1:1"},
	})
	_, _, err = openBackend(cfg)
	assert.Error(t, err, "grpc backend is not available to the daemon")
}

func TestListBackends(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--list-backends"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "localfs")
	assert.NotContains(t, out.String(), "grpc")
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "unknown flag", args: []string{"--no-such-flag"}, want: 2},
		{name: "unexpected argument", args: []string{"extra"}, want: 2},
		{name: "missing config file", args: []string{"--config", filepath.Join(dir, "absent.yaml")}, want: 1},
		{name: "unknown backend", args: []string{"--backend", "missing", "--log-format", "json"}, want: 1},
		{name: "bad log format", args: []string{"--log-format", "xml"}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := run(context.Background(), tt.args, &out, &errOut)
			assert.Equal(t, tt.want, code, errOut.String())
		})
	}
}

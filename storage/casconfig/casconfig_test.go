package casconfig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevedylandev/cid-proof/storage"
	"github.com/stevedylandev/cid-proof/storage/casregistry"
	"github.com/stevedylandev/cid-proof/storage/localfs"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "no backends", cfg: Config{}, wantErr: true},
		{name: "missing name", cfg: Config{Backends: []BackendConfig{{}}}, wantErr: true},
		{
			name:    "duplicate id",
			cfg:     Config{Backends: []BackendConfig{{Name: "localfs"}, {Name: "grpc", ID: "localfs"}}},
			wantErr: true,
		},
		{
			name:    "bad policy",
			cfg:     Config{WritePolicy: "most", Backends: []BackendConfig{{Name: "localfs"}}},
			wantErr: true,
		},
		{
			name: "ok",
			cfg:  Config{WritePolicy: "all", Backends: []BackendConfig{{Name: "localfs"}, {Name: "localfs", ID: "mirror"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestOpen_Single(t *testing.T) {
	cfg := Config{Backends: []BackendConfig{{Name: "localfs", Config: map[string]string{"dir": t.TempDir()}}}}
	cas, closeFn, err := cfg.Open(casregistry.UsageCLI, "")
	require.NoError(t, err)
	require.NoError(t, closeFn())
	assert.IsType(t, &localfs.CAS{}, cas)
}

func TestOpen_MultiPreferred(t *testing.T) {
	primary, mirror := t.TempDir(), t.TempDir()
	cfg := Config{
		Backends: []BackendConfig{
			{Name: "localfs", Config: map[string]string{"dir": primary}},
			{Name: "localfs", ID: "mirror", Config: map[string]string{"dir": mirror}},
		},
	}
	cas, closeFn, err := cfg.Open(casregistry.UsageCLI, "mirror")
	require.NoError(t, err)
	defer closeFn()

	m, ok := cas.(storage.Multi)
	require.True(t, ok)
	require.Len(t, m.Backends, 2)
	assert.Equal(t, "mirror", m.Backends[0].Name)
	assert.Equal(t, storage.WriteFirst, m.Policy)

	ctx := context.Background()
	id, err := cas.Put(ctx, []byte("to mirror"))
	require.NoError(t, err)

	direct, err := localfs.New(mirror)
	require.NoError(t, err)
	found, err := direct.Has(ctx, id)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestOpen_Errors(t *testing.T) {
	cfg := Config{Backends: []BackendConfig{{Name: "localfs", Config: map[string]string{"dir": t.TempDir()}}}}
	_, _, err := cfg.Open(casregistry.UsageCLI, "nope")
	assert.Error(t, err)

	cfg = Config{Backends: []BackendConfig{{Name: "does-not-exist"}}}
	_, _, err = cfg.Open(casregistry.UsageCLI, "")
	assert.Error(t, err)
}

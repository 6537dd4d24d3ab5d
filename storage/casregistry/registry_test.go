package casregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevedylandev/cid-proof/storage"
)

func TestRegister(t *testing.T) {
	open := func(map[string]string) (storage.CAS, func() error, error) { return nil, nil, nil }

	assert.Error(t, Register(Backend{Usage: UsageCLI, Open: open}))
	assert.Error(t, Register(Backend{Name: "x-no-open", Usage: UsageCLI}))
	assert.Error(t, Register(Backend{Name: "x-no-usage", Open: open}))

	require.NoError(t, Register(Backend{Name: "test-daemon-only", Usage: UsageDaemon, Open: open}))
	assert.Error(t, Register(Backend{Name: "test-daemon-only", Usage: UsageDaemon, Open: open}))
	assert.Panics(t, func() { MustRegister(Backend{Name: "test-daemon-only", Usage: UsageDaemon, Open: open}) })

	assert.Contains(t, Names(UsageDaemon), "test-daemon-only")
	assert.NotContains(t, Names(UsageCLI), "test-daemon-only")

	_, _, err := Open("test-daemon-only", UsageCLI, nil)
	assert.Error(t, err)
	_, _, err = Open("test-daemon-only", UsageDaemon, nil)
	assert.NoError(t, err)
	_, _, err = Open("missing", UsageDaemon, nil)
	assert.Error(t, err)
}

func TestUsageString(t *testing.T) {
	assert.Equal(t, "cli", UsageCLI.String())
	assert.Equal(t, "daemon", UsageDaemon.String())
	assert.Equal(t, "cli,daemon", (UsageCLI | UsageDaemon).String())
}

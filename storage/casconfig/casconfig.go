package casconfig

import (
	"errors"
	"fmt"

	"github.com/stevedylandev/cid-proof/storage"
	"github.com/stevedylandev/cid-proof/storage/casregistry"
)

// Config describes how to open one or more CAS backends via casregistry.
//
// Example (YAML, as loaded by internal/config):
//
//	cas:
//	  write_policy: all
//	  backends:
//	    - name: localfs
//	      config: {dir: /tmp/cas}
//	    - name: grpc
//	      config: {target: 127.0.0.1:7777}
//
// Config values are backend-specific; see casregistry.Backend.Keys.
type Config struct {
	WritePolicy string          `mapstructure:"write_policy" json:"write_policy,omitempty"`
	Backends    []BackendConfig `mapstructure:"backends" json:"backends"`
}

type BackendConfig struct {
	// Name is the casregistry backend name (e.g. "localfs", "grpc").
	Name string `mapstructure:"name" json:"name"`
	// ID is an optional alias; Name is used when empty.
	ID     string            `mapstructure:"id" json:"id,omitempty"`
	Config map[string]string `mapstructure:"config" json:"config,omitempty"`
}

func (b BackendConfig) id() string {
	if b.ID != "" {
		return b.ID
	}
	return b.Name
}

func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("casconfig: at least one backend is required")
	}
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		if b.Name == "" {
			return errors.New("casconfig: backend name is required")
		}
		if _, ok := seen[b.id()]; ok {
			return fmt.Errorf("casconfig: duplicate backend id %q", b.id())
		}
		seen[b.id()] = struct{}{}
	}
	if _, err := storage.ParseWritePolicy(c.WritePolicy); err != nil {
		return fmt.Errorf("casconfig: %w", err)
	}
	return nil
}

// Open opens every configured backend in order.
//
// If preferred is non-empty, the backend with that name or ID is moved to the
// front, which makes it the write target under the "first" policy. The
// returned close function closes backends in reverse order.
func (c Config) Open(usage casregistry.Usage, preferred string) (storage.CAS, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	policy, _ := storage.ParseWritePolicy(c.WritePolicy)

	ordered := append([]BackendConfig(nil), c.Backends...)
	if preferred != "" {
		idx := -1
		for i := range ordered {
			if ordered[i].Name == preferred || ordered[i].ID == preferred {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, nil, fmt.Errorf("casconfig: preferred backend %q not found in config", preferred)
		}
		b := ordered[idx]
		copy(ordered[1:idx+1], ordered[0:idx])
		ordered[0] = b
	}

	var closers []func() error
	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	named := make([]storage.NamedCAS, 0, len(ordered))
	for _, b := range ordered {
		cas, closeFn, err := casregistry.Open(b.Name, usage, b.Config)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("casconfig: open %s: %w", b.id(), err)
		}
		named = append(named, storage.NamedCAS{Name: b.id(), CAS: cas})
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
	}

	if len(named) == 1 {
		return named[0].CAS, closeAll, nil
	}
	return storage.Multi{Backends: named, Policy: policy}, closeAll, nil
}

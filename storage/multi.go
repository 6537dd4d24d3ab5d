package storage

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/stevedylandev/cid-proof/cidutil"
)

// WritePolicy selects which backends a Multi writes to.
type WritePolicy string

const (
	// WriteFirst writes only to the first backend.
	WriteFirst WritePolicy = "first"
	// WriteAll writes to every backend and requires each to return the same CID.
	WriteAll WritePolicy = "all"
)

// ParseWritePolicy accepts "", "first" or "all". The empty string means first.
func ParseWritePolicy(s string) (WritePolicy, error) {
	switch WritePolicy(s) {
	case "", WriteFirst:
		return WriteFirst, nil
	case WriteAll:
		return WriteAll, nil
	default:
		return "", fmt.Errorf("storage: invalid write policy %q", s)
	}
}

// NamedCAS associates a CAS with a stable backend name.
type NamedCAS struct {
	Name string
	CAS  CAS
}

// Multi provides ordered read fallback across backends.
//
// Read order is the slice order; callers supply a fixed order so retrieval is
// deterministic.
type Multi struct {
	Backends []NamedCAS
	Policy   WritePolicy
}

var _ CAS = Multi{}

func (m Multi) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	id, _, err := m.PutAll(ctx, data)
	return id, err
}

// PutAll writes data according to Policy and reports the CID returned by each
// backend written to. Any CID differing from the one computed locally yields
// ErrCIDMismatch.
func (m Multi) PutAll(ctx context.Context, data []byte) (cid.Cid, map[string]cid.Cid, error) {
	if len(m.Backends) == 0 {
		return cid.Undef, nil, ErrNoBackends
	}
	want := cidutil.CIDv1RawSHA256CID(data)

	targets := m.Backends[:1]
	if m.Policy == WriteAll {
		targets = m.Backends
	}

	out := make(map[string]cid.Cid, len(targets))
	for _, b := range targets {
		if b.CAS == nil {
			return cid.Undef, out, fmt.Errorf("storage: nil CAS for backend %q", b.Name)
		}
		got, err := b.CAS.Put(ctx, data)
		if err != nil {
			return cid.Undef, out, fmt.Errorf("storage: put %s: %w", b.Name, err)
		}
		out[b.Name] = got
		if !got.Equals(want) {
			return cid.Undef, out, ErrCIDMismatch
		}
	}
	return want, out, nil
}

func (m Multi) Get(ctx context.Context, id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	for _, b := range m.Backends {
		if b.CAS == nil {
			continue
		}
		data, err := b.CAS.Get(ctx, id)
		if err == nil {
			return data, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, fmt.Errorf("storage: get %s: %w", b.Name, err)
	}
	return nil, ErrNotFound
}

func (m Multi) Has(ctx context.Context, id cid.Cid) (bool, error) {
	if !id.Defined() {
		return false, nil
	}
	for _, b := range m.Backends {
		if b.CAS == nil {
			continue
		}
		ok, err := b.CAS.Has(ctx, id)
		if err != nil {
			return false, fmt.Errorf("storage: has %s: %w", b.Name, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

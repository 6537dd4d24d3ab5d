package storage

import (
	"context"

	"github.com/ipfs/go-cid"
)

// CAS is a content-addressable store for proven file content.
//
// Contract:
// - CIDs are CIDv1 raw + sha2-256 of the stored bytes, the identifier the
//   guest program commits to.
// - Put is idempotent and stored objects are immutable.
// - Get returns ErrNotFound when the CID is absent and never returns bytes
//   that do not hash to the requested CID.
type CAS interface {
	Put(ctx context.Context, data []byte) (cid.Cid, error)
	Get(ctx context.Context, id cid.Cid) ([]byte, error)
	Has(ctx context.Context, id cid.Cid) (bool, error)
}

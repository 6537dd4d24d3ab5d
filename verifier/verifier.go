// Package verifier checks committed public values against file content, the
// off-chain counterpart of the on-chain decoder.
//
// Reconstruction follows the same trailing-zero rule as extraction: the CID
// bytes are the first CIDLength bytes of the two segments.
package verifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/stevedylandev/cid-proof/publicvalues"
	"github.com/stevedylandev/cid-proof/storage"
)

var (
	ErrCIDMismatch    = errors.New("verifier: cid mismatch")
	ErrLengthMismatch = errors.New("verifier: cid length mismatch")
	ErrTruncatedCID   = errors.New("verifier: reconstructed bytes are not a complete cid")
)

// Reconstruct returns the CID bytes a verifier recovers from r.
func Reconstruct(r publicvalues.Record) []byte {
	return r.Prefix()
}

// ResolveCID parses the reconstructed bytes as a CID.
//
// Records whose true CID ends in a zero byte report a short length and fail
// here with ErrTruncatedCID; callers holding the content should use
// VerifyRecord instead, which compares under the same rule.
func ResolveCID(r publicvalues.Record) (cid.Cid, error) {
	b := Reconstruct(r)
	n, id, err := cid.CidFromBytes(b)
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: %v", ErrTruncatedCID, err)
	}
	if n != len(b) {
		return cid.Undef, fmt.Errorf("%w: %d trailing bytes", ErrTruncatedCID, len(b)-n)
	}
	return id, nil
}

// VerifyRecord recomputes the record from content and compares.
func VerifyRecord(r publicvalues.Record, content []byte) error {
	_, want := publicvalues.FromContent(content)
	if r.CIDLength != want.CIDLength {
		return fmt.Errorf("%w: committed %d, content gives %d", ErrLengthMismatch, r.CIDLength, want.CIDLength)
	}
	if !bytes.Equal(Reconstruct(r), Reconstruct(want)) {
		return ErrCIDMismatch
	}
	if r != want {
		// Bytes past CIDLength are padding and must be zero.
		return fmt.Errorf("%w: non-zero padding", ErrCIDMismatch)
	}
	return nil
}

// VerifyContent decodes ABI-encoded public values and checks them against content.
func VerifyContent(publicValues []byte, content []byte) (publicvalues.Record, error) {
	r, err := publicvalues.DecodeABI(publicValues)
	if err != nil {
		return r, err
	}
	return r, VerifyRecord(r, content)
}

// FetchAndVerify resolves the committed CID, fetches its content from cas and
// verifies it. It fails with ErrTruncatedCID when the committed length cannot
// be resolved to a full CID.
func FetchAndVerify(ctx context.Context, cas storage.CAS, publicValues []byte) (cid.Cid, []byte, error) {
	r, err := publicvalues.DecodeABI(publicValues)
	if err != nil {
		return cid.Undef, nil, err
	}
	id, err := ResolveCID(r)
	if err != nil {
		return cid.Undef, nil, err
	}
	content, err := cas.Get(ctx, id)
	if err != nil {
		return id, nil, fmt.Errorf("verifier: fetch %s: %w", id, err)
	}
	if err := VerifyRecord(r, content); err != nil {
		return id, nil, err
	}
	return id, content, nil
}

// Package publicvalues packs a content identifier into the fixed-width record
// a zkVM program commits to, and unpacks it again.
//
// The layout mirrors the Solidity struct
//
//	struct PublicValuesStruct {
//	    bytes32 cid_bytes;           // first 32 bytes of the CID
//	    bytes16 cid_bytes_remainder; // next 16 bytes of the CID
//	    uint8   cid_length;          // recovered CID length in bytes
//	}
//
// Both directions are total: every input yields a defined output.
package publicvalues

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ipfs/go-cid"

	"github.com/stevedylandev/cid-proof/cidutil"
)

const (
	// RawCodec is the multicodec tag for raw binary content.
	RawCodec = cid.Raw

	// HeadSize is the width of the bytes32 segment.
	HeadSize = 32
	// TailSize is the width of the bytes16 segment.
	TailSize = 16
	// BufferSize bounds the serialized CID. A CIDv1 raw sha2-256 identifier
	// serializes to 36 bytes; any hash change must re-derive this bound.
	BufferSize = HeadSize + TailSize
)

// Buffer holds a serialized CID left-justified with zero padding.
type Buffer [BufferSize]byte

// Record is the structured form committed as public values.
type Record struct {
	CIDBytes          [HeadSize]byte
	CIDBytesRemainder [TailSize]byte
	CIDLength         uint8
}

// CalculateCID derives the CIDv1 (raw, sha2-256) of content and its
// serialization into a Buffer. Serializations longer than BufferSize are
// truncated.
func CalculateCID(content []byte) (cid.Cid, Buffer) {
	id := cidutil.CIDv1RawSHA256CID(content)
	return id, copyTruncated(id.Bytes())
}

func copyTruncated(b []byte) Buffer {
	var buf Buffer
	copy(buf[:], b)
	return buf
}

// Extract splits buf into the committed record.
//
// CIDLength is one plus the index of the last non-zero byte. A CID whose
// final byte is zero therefore reports a shorter length than it has; on-chain
// decoders apply the same rule, so it must not change.
func Extract(buf Buffer) Record {
	var r Record
	copy(r.CIDBytes[:], buf[:HeadSize])
	copy(r.CIDBytesRemainder[:], buf[HeadSize:])

	for i, b := range buf {
		if b != 0 {
			r.CIDLength = uint8(i + 1)
		}
	}
	return r
}

// Buffer reassembles the 48 bytes the record was extracted from.
func (r Record) Buffer() Buffer {
	var buf Buffer
	copy(buf[:HeadSize], r.CIDBytes[:])
	copy(buf[HeadSize:], r.CIDBytesRemainder[:])
	return buf
}

// Prefix returns the first CIDLength bytes of the buffer, the bytes a
// verifier compares against a recomputed CID.
func (r Record) Prefix() []byte {
	buf := r.Buffer()
	n := int(r.CIDLength)
	if n > BufferSize {
		n = BufferSize
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out
}

// Hex renders both segments as one 0x-prefixed string.
func (r Record) Hex() string {
	buf := r.Buffer()
	return hexutil.Encode(buf[:])
}

// FromContent runs the encoder and extractor in sequence.
func FromContent(content []byte) (cid.Cid, Record) {
	id, buf := CalculateCID(content)
	return id, Extract(buf)
}

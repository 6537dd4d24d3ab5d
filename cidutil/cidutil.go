package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Prefix is the CIDv1 raw sha2-256 prefix every identifier in this module uses.
var Prefix = cid.Prefix{
	Version:  1,
	Codec:    cid.Raw,
	MhType:   multihash.SHA2_256,
	MhLength: -1,
}

// CIDv1RawSHA256 returns a CIDv1 string using the "raw" multicodec
// and a sha2-256 multihash.
func CIDv1RawSHA256(data []byte) string {
	return CIDv1RawSHA256CID(data).String()
}

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) cid.Cid {
	id, err := Prefix.Sum(data)
	if err != nil {
		// Prefix.Sum only errors for unknown hash codes or lengths; with
		// SHA2_256 and -1 length, this should be unreachable.
		return cid.Undef
	}
	return id
}

// Matches reports whether data hashes to id under the CIDv1 raw sha2-256
// contract.
func Matches(id cid.Cid, data []byte) bool {
	if !id.Defined() {
		return false
	}
	return CIDv1RawSHA256CID(data).Equals(id)
}

package publicvalues

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// EncodedSize is the ABI encoding width of Record: three 32-byte words.
const EncodedSize = 3 * 32

var (
	ErrPublicValuesLength  = errors.New("publicvalues: encoded length is not 96 bytes")
	ErrNonCanonicalPadding = errors.New("publicvalues: non-zero ABI padding")
)

// A static tuple encodes identically to its flattened fields, so the struct
// is described as three top-level arguments.
var recordArgs = abi.Arguments{
	{Name: "cid_bytes", Type: mustType("bytes32")},
	{Name: "cid_bytes_remainder", Type: mustType("bytes16")},
	{Name: "cid_length", Type: mustType("uint8")},
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("publicvalues: abi type %q: %v", t, err))
	}
	return typ
}

// ABIEncode returns the standard ABI encoding of the record, the bytes a zkVM
// program commits as its public values.
func (r Record) ABIEncode() ([]byte, error) {
	out, err := recordArgs.Pack(r.CIDBytes, r.CIDBytesRemainder, r.CIDLength)
	if err != nil {
		return nil, fmt.Errorf("publicvalues: abi encode: %w", err)
	}
	return out, nil
}

// DecodeABI parses committed public values.
//
// Decoding is strict: the input must be exactly EncodedSize bytes and every
// padding byte must be zero, matching a validating Solidity decoder.
func DecodeABI(data []byte) (Record, error) {
	var r Record
	if len(data) != EncodedSize {
		return r, fmt.Errorf("%w: got %d", ErrPublicValuesLength, len(data))
	}
	// bytes16 is right-padded in word 1; uint8 is left-padded in word 2.
	for _, b := range data[32+TailSize : 64] {
		if b != 0 {
			return r, fmt.Errorf("%w: cid_bytes_remainder", ErrNonCanonicalPadding)
		}
	}
	for _, b := range data[64 : EncodedSize-1] {
		if b != 0 {
			return r, fmt.Errorf("%w: cid_length", ErrNonCanonicalPadding)
		}
	}

	vals, err := recordArgs.Unpack(data)
	if err != nil {
		return r, fmt.Errorf("publicvalues: abi decode: %w", err)
	}
	head, ok := vals[0].([HeadSize]byte)
	if !ok {
		return r, fmt.Errorf("publicvalues: abi decode: unexpected %T for cid_bytes", vals[0])
	}
	tail, ok := vals[1].([TailSize]byte)
	if !ok {
		return r, fmt.Errorf("publicvalues: abi decode: unexpected %T for cid_bytes_remainder", vals[1])
	}
	length, ok := vals[2].(uint8)
	if !ok {
		return r, fmt.Errorf("publicvalues: abi decode: unexpected %T for cid_length", vals[2])
	}

	r.CIDBytes = head
	r.CIDBytesRemainder = tail
	r.CIDLength = length
	return r, nil
}

// Digest hashes committed public values with sha2-256 and clears the top three
// bits so the result is a valid BN254 scalar, the form on-chain verifiers
// receive as the committed-values digest.
func Digest(publicValues []byte) [32]byte {
	d := sha256.Sum256(publicValues)
	d[0] &= 0x1f
	return d
}

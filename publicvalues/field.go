package publicvalues

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// limbSize keeps every limb below the BN254 scalar modulus.
const limbSize = 16

// FieldElements packs the record into BN254 scalars for circuits that take the
// CID as public inputs: the head as two big-endian limbs, the tail as one,
// then the length.
func (r Record) FieldElements() []fr.Element {
	out := make([]fr.Element, 4)
	out[0].SetBytes(r.CIDBytes[:limbSize])
	out[1].SetBytes(r.CIDBytes[limbSize:])
	out[2].SetBytes(r.CIDBytesRemainder[:])
	out[3].SetUint64(uint64(r.CIDLength))
	return out
}

// Commitment is the MiMC hash of FieldElements.
func (r Record) Commitment() (fr.Element, error) {
	var c fr.Element
	h := mimc.NewMiMC()
	for i, e := range r.FieldElements() {
		if _, err := h.Write(e.Marshal()); err != nil {
			return c, fmt.Errorf("publicvalues: mimc limb %d: %w", i, err)
		}
	}
	c.SetBytes(h.Sum(nil))
	return c, nil
}

// DigestElement returns Digest(publicValues) as a scalar.
func DigestElement(publicValues []byte) fr.Element {
	var e fr.Element
	d := Digest(publicValues)
	e.SetBytes(d[:])
	return e
}

// Package fixture writes the JSON files Solidity tests load to check decoding
// of committed public values.
package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/stevedylandev/cid-proof/publicvalues"
	"github.com/stevedylandev/cid-proof/verifier"
)

// Fixture is serialized with camelCase keys. Proof and verifying key fields
// are left to the proving toolchain and are not produced here.
type Fixture struct {
	CID                string   `json:"cid"`
	CIDBytes           string   `json:"cidBytes"`
	CIDBytesRemainder  string   `json:"cidBytesRemainder"`
	CIDLength          uint8    `json:"cidLength"`
	PublicValues       string   `json:"publicValues"`
	PublicValuesDigest string   `json:"publicValuesDigest"`
	PublicInputs       []string `json:"publicInputs"`
	Commitment         string   `json:"commitment"`
}

// New builds a fixture from committed public values.
//
// CID is empty when the committed length does not resolve to a full CID.
func New(publicValues []byte) (Fixture, error) {
	var f Fixture
	r, err := publicvalues.DecodeABI(publicValues)
	if err != nil {
		return f, err
	}
	if id, err := verifier.ResolveCID(r); err == nil {
		f.CID = id.String()
	}

	f.CIDBytes = hexutil.Encode(r.CIDBytes[:])
	f.CIDBytesRemainder = hexutil.Encode(r.CIDBytesRemainder[:])
	f.CIDLength = r.CIDLength
	f.PublicValues = hexutil.Encode(publicValues)

	digest := publicvalues.Digest(publicValues)
	f.PublicValuesDigest = hexutil.Encode(digest[:])

	for _, e := range r.FieldElements() {
		f.PublicInputs = append(f.PublicInputs, hexutil.Encode(e.Marshal()))
	}
	d := publicvalues.DigestElement(publicValues)
	f.PublicInputs = append(f.PublicInputs, hexutil.Encode(d.Marshal()))
	c, err := r.Commitment()
	if err != nil {
		return f, err
	}
	f.Commitment = hexutil.Encode(c.Marshal())
	return f, nil
}

// Record decodes the fixture's public values.
func (f Fixture) Record() (publicvalues.Record, error) {
	b, err := hexutil.Decode(f.PublicValues)
	if err != nil {
		return publicvalues.Record{}, fmt.Errorf("fixture: publicValues: %w", err)
	}
	return publicvalues.DecodeABI(b)
}

// Path returns dir/<name>-fixture.json with name lowercased.
func Path(dir, name string) string {
	return filepath.Join(dir, strings.ToLower(name)+"-fixture.json")
}

// Write stores f as indented JSON at Path(dir, name), creating dir if needed.
func Write(dir, name string, f Fixture) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("fixture: create dir: %w", err)
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "", err
	}
	path := Path(dir, name)
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("fixture: write: %w", err)
	}
	return path, nil
}

// Read loads a fixture written by Write.
func Read(path string) (Fixture, error) {
	var f Fixture
	b, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err := json.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("fixture: decode %s: %w", filepath.Base(path), err)
	}
	return f, nil
}

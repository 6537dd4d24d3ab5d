// Package zkvm models the two channels a zkVM guest program sees: an input
// stream of byte vectors and a sink for committed public values.
//
// The in-memory implementations here let the guest run natively, which is how
// the CLI executes it without generating a proof.
package zkvm

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	ErrInputExhausted = errors.New("zkvm: input exhausted")
	ErrNilProgram     = errors.New("zkvm: nil program")
)

// Input supplies byte vectors to a program.
type Input interface {
	ReadVec(ctx context.Context) ([]byte, error)
}

// Committer receives the bytes a program makes public.
type Committer interface {
	CommitSlice(ctx context.Context, b []byte) error
}

// Program is a guest entry point.
type Program func(ctx context.Context, in Input, out Committer) error

// Stdin is a FIFO of byte vectors.
type Stdin struct {
	mu     sync.Mutex
	frames [][]byte
	size   int
}

func NewStdin() *Stdin { return &Stdin{} }

// Write appends a copy of b as one frame.
func (s *Stdin) Write(b []byte) {
	frame := append([]byte(nil), b...)
	s.mu.Lock()
	s.frames = append(s.frames, frame)
	s.size += len(frame)
	s.mu.Unlock()
}

// Size is the total number of bytes written so far.
func (s *Stdin) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *Stdin) ReadVec(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil, ErrInputExhausted
	}
	b := s.frames[0]
	s.frames = s.frames[1:]
	return b, nil
}

// PublicValues accumulates committed bytes in order.
type PublicValues struct {
	mu  sync.Mutex
	buf []byte
}

func (p *PublicValues) CommitSlice(ctx context.Context, b []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.buf = append(p.buf, b...)
	p.mu.Unlock()
	return nil
}

// Bytes returns a copy of everything committed.
func (p *PublicValues) Bytes() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.buf...)
}

func (p *PublicValues) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buf)
}

func (p *PublicValues) Hex() string { return hexutil.Encode(p.Bytes()) }

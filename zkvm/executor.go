package zkvm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Report summarizes one execution.
type Report struct {
	InputBytes     int
	CommittedBytes int
	Duration       time.Duration
}

// Executor runs programs natively against in-memory channels.
type Executor struct {
	Logger *zap.Logger
}

// Execute runs prog once with stdin as its input channel.
func (e Executor) Execute(ctx context.Context, prog Program, stdin *Stdin) (*PublicValues, Report, error) {
	var rep Report
	if prog == nil {
		return nil, rep, ErrNilProgram
	}
	if stdin == nil {
		stdin = NewStdin()
	}
	if err := ctx.Err(); err != nil {
		return nil, rep, err
	}
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}

	rep.InputBytes = stdin.Size()
	out := &PublicValues{}
	start := time.Now()
	err := prog(ctx, stdin, out)
	rep.Duration = time.Since(start)
	rep.CommittedBytes = out.Len()
	if err != nil {
		log.Debug("program failed", zap.Error(err), zap.Duration("duration", rep.Duration))
		return nil, rep, fmt.Errorf("zkvm: execute: %w", err)
	}

	log.Debug("program executed",
		zap.Int("input_bytes", rep.InputBytes),
		zap.Int("committed_bytes", rep.CommittedBytes),
		zap.Duration("duration", rep.Duration),
	)
	return out, rep, nil
}

// Package guest is the program proven inside the zkVM: it reads file content,
// derives its CID and commits the ABI-encoded public values.
package guest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stevedylandev/cid-proof/publicvalues"
	"github.com/stevedylandev/cid-proof/zkvm"
)

// Main returns the guest entry point. A nil logger discards output.
func Main(logger *zap.Logger) zkvm.Program {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, in zkvm.Input, out zkvm.Committer) error {
		content, err := in.ReadVec(ctx)
		if err != nil {
			return fmt.Errorf("read content: %w", err)
		}
		logger.Info("processing file", zap.Int("size", len(content)))

		id, record := publicvalues.FromContent(content)
		logger.Info("calculated cid", zap.Stringer("cid", id))

		encoded, err := record.ABIEncode()
		if err != nil {
			return err
		}
		if err := out.CommitSlice(ctx, encoded); err != nil {
			return fmt.Errorf("commit public values: %w", err)
		}
		logger.Debug("committed public values", zap.Int("bytes", len(encoded)))
		return nil
	}
}

// Execute writes content to a fresh input channel and runs Main natively.
func Execute(ctx context.Context, content []byte, logger *zap.Logger) (*zkvm.PublicValues, zkvm.Report, error) {
	stdin := zkvm.NewStdin()
	stdin.Write(content)
	return zkvm.Executor{Logger: logger}.Execute(ctx, Main(logger), stdin)
}

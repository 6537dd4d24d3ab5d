package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ipfs/go-cid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stevedylandev/cid-proof/cidutil"
	"github.com/stevedylandev/cid-proof/fixture"
	"github.com/stevedylandev/cid-proof/guest"
	"github.com/stevedylandev/cid-proof/publicvalues"
	"github.com/stevedylandev/cid-proof/storage"
	"github.com/stevedylandev/cid-proof/storage/casregistry"
	"github.com/stevedylandev/cid-proof/verifier"
)

func (a *app) cidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cid <file>",
		Short: "Print the CIDv1 (raw, sha2-256) of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, cidutil.CIDv1RawSHA256(content))
			return nil
		},
	}
}

func (a *app) executeCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Run the guest program natively and print the committed public values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readFile(file)
			if err != nil {
				return err
			}
			pv, report, err := guest.Execute(cmd.Context(), content, a.log)
			if err != nil {
				return fail("execute: %w", err)
			}
			r, err := publicvalues.DecodeABI(pv.Bytes())
			if err != nil {
				return fail("decode committed values: %w", err)
			}
			a.log.Info("program executed",
				zap.Int("input_bytes", report.InputBytes),
				zap.Int("committed_bytes", report.CommittedBytes),
				zap.Duration("duration", report.Duration))

			fmt.Fprintf(a.out, "CID (hex): %s\n", r.Hex())
			fmt.Fprintf(a.out, "CID length: %d bytes\n", r.CIDLength)
			fmt.Fprintf(a.out, "cid: %s\n", cidutil.CIDv1RawSHA256(content))
			printRecord(a, r)
			fmt.Fprintf(a.out, "publicValues: %s\n", pv.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "file to process")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) fixtureCmd() *cobra.Command {
	var file, name, dir string
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Execute the guest program and write a JSON fixture for contract tests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readFile(file)
			if err != nil {
				return err
			}
			pv, _, err := guest.Execute(cmd.Context(), content, a.log)
			if err != nil {
				return fail("execute: %w", err)
			}
			f, err := fixture.New(pv.Bytes())
			if err != nil {
				return fail("build fixture: %w", err)
			}
			if dir == "" {
				dir = a.cfg.Fixtures.Dir
			}
			path, err := fixture.Write(dir, name, f)
			if err != nil {
				return fail("%w", err)
			}
			a.log.Info("wrote fixture", zap.String("path", path), zap.String("cid", f.CID))
			fmt.Fprintln(a.out, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "file to process")
	cmd.Flags().StringVar(&name, "name", "native", "fixture name; written as <name>-fixture.json")
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default fixtures.dir from config)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <0x-public-values>",
		Short: "Decode ABI-encoded public values and print the embedded CID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pv, err := decodeHex(args[0])
			if err != nil {
				return err
			}
			r, err := publicvalues.DecodeABI(pv)
			if err != nil {
				return fail("%w", err)
			}
			printRecord(a, r)
			id, err := verifier.ResolveCID(r)
			if err != nil {
				a.log.Warn("committed bytes do not resolve to a cid", zap.Error(err))
				return nil
			}
			fmt.Fprintf(a.out, "cid: %s\n", id)
			return nil
		},
	}
}

func (a *app) verifyCmd() *cobra.Command {
	var pvHex, file string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check committed public values against a file or the configured CAS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pv, err := decodeHex(pvHex)
			if err != nil {
				return err
			}
			if file != "" {
				content, err := readFile(file)
				if err != nil {
					return err
				}
				if _, err := verifier.VerifyContent(pv, content); err != nil {
					return fail("verify %s: %w", file, err)
				}
				fmt.Fprintf(a.out, "OK %s\n", cidutil.CIDv1RawSHA256(content))
				return nil
			}

			cas, closeFn, err := a.openCAS()
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()
			id, content, err := verifier.FetchAndVerify(cmd.Context(), cas, pv)
			if err != nil {
				return fail("verify: %w", err)
			}
			a.log.Debug("fetched content", zap.Stringer("cid", id), zap.Int("size", len(content)))
			fmt.Fprintf(a.out, "OK %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&pvHex, "public-values", "", "0x-prefixed ABI-encoded public values")
	cmd.Flags().StringVar(&file, "file", "", "file to verify against (default: fetch from CAS)")
	_ = cmd.MarkFlagRequired("public-values")
	return cmd
}

func (a *app) putCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <file>",
		Short: "Store a file in the configured CAS and print its CID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readFile(args[0])
			if err != nil {
				return err
			}
			cas, closeFn, err := a.openCAS()
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			if m, ok := cas.(storage.Multi); ok {
				id, written, err := m.PutAll(cmd.Context(), content)
				if err != nil {
					return fail("put: %w", err)
				}
				for name := range written {
					a.log.Debug("stored", zap.String("backend", name), zap.Stringer("cid", id))
				}
				fmt.Fprintln(a.out, id)
				return nil
			}
			id, err := cas.Put(cmd.Context(), content)
			if err != nil {
				return fail("put: %w", err)
			}
			fmt.Fprintln(a.out, id)
			return nil
		},
	}
}

func (a *app) getCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "get <cid>",
		Short: "Fetch content from the configured CAS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cid.Decode(args[0])
			if err != nil {
				return fail("%w: %v", storage.ErrInvalidCID, err)
			}
			cas, closeFn, err := a.openCAS()
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			b, err := cas.Get(cmd.Context(), id)
			if err != nil {
				return fail("get %s: %w", id, err)
			}
			if outPath == "" {
				_, _ = a.out.Write(b)
				return nil
			}
			if err := os.WriteFile(outPath, b, 0o600); err != nil {
				return fail("write %s: %w", outPath, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}

func (a *app) backendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List CAS backends available to the CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, b := range casregistry.List(casregistry.UsageCLI) {
				line := b.Name
				if b.Description != "" {
					line += "\t" + b.Description
				}
				if len(b.Keys) > 0 {
					line += "\t[" + strings.Join(b.Keys, ", ") + "]"
				}
				fmt.Fprintln(a.out, line)
			}
			return nil
		},
	}
}

func printRecord(a *app, r publicvalues.Record) {
	fmt.Fprintf(a.out, "cidBytes: %s\n", hexutil.Encode(r.CIDBytes[:]))
	fmt.Fprintf(a.out, "cidBytesRemainder: %s\n", hexutil.Encode(r.CIDBytesRemainder[:]))
	fmt.Fprintf(a.out, "cidLength: %d\n", r.CIDLength)
}

func decodeHex(s string) ([]byte, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fail("invalid hex %q: %w", s, err)
	}
	return b, nil
}

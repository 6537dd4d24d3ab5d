package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/stevedylandev/cid-proof/internal/config"
	"github.com/stevedylandev/cid-proof/internal/logging"
	"github.com/stevedylandev/cid-proof/storage"
	"github.com/stevedylandev/cid-proof/storage/casconfig"
	"github.com/stevedylandev/cid-proof/storage/casregistry"
	"github.com/stevedylandev/cid-proof/storage/grpccas"

	_ "github.com/stevedylandev/cid-proof/storage/localfs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// failure marks errors raised while running, as opposed to usage errors cobra
// reports while parsing.
type failure struct{ err error }

func (f failure) Error() string { return f.err.Error() }
func (f failure) Unwrap() error { return f.err }

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	v := config.New()
	var cfgFile string
	var listBackends bool

	cmd := &cobra.Command{
		Use:           "cidproofd",
		Short:         "Serve the configured content-addressed store over gRPC",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listBackends {
				for _, b := range casregistry.List(casregistry.UsageDaemon) {
					if b.Description == "" {
						fmt.Fprintln(out, b.Name)
						continue
					}
					fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
				}
				return nil
			}

			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return failure{err: err}
			}
			logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: errOut})
			if err != nil {
				return failure{err: err}
			}
			defer func() { _ = logger.Sync() }()

			cas, closeFn, err := openBackend(cfg)
			if err != nil {
				return failure{err: err}
			}
			defer func() { _ = closeFn() }()

			lis, err := net.Listen("tcp", cfg.Daemon.Listen)
			if err != nil {
				return failure{err: err}
			}
			if err := serve(cmd.Context(), lis, cas, logger); err != nil {
				return failure{err: err}
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfgFile, "config", "", "config file (default ./cidproof.yaml or $HOME/.cidproof/cidproof.yaml)")
	fs.String("listen", "", "listen address (default daemon.listen from config)")
	fs.String("backend", "", "serve only this configured backend (name or id)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("log-format", "", "log format: console or json")
	fs.BoolVar(&listBackends, "list-backends", false, "list supported backends and exit")
	for key, flag := range map[string]string{
		"daemon.listen":  "listen",
		"daemon.backend": "backend",
		"log.level":      "log-level",
		"log.format":     "log-format",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	fmt.Fprintf(errOut, "Error: %v\n", err)
	var f failure
	if errors.As(err, &f) {
		return 1
	}
	return 2
}

// openBackend opens the backend named by daemon.backend, or every configured
// backend usable by a daemon when it is empty.
func openBackend(cfg config.Config) (storage.CAS, func() error, error) {
	cc := cfg.CAS
	if want := cfg.Daemon.Backend; want != "" {
		cc.Backends = nil
		for _, b := range cfg.CAS.Backends {
			if b.Name == want || b.ID == want {
				cc.Backends = []casconfig.BackendConfig{b}
				break
			}
		}
		if len(cc.Backends) == 0 {
			return nil, nil, fmt.Errorf("backend %q not found in config", want)
		}
	}
	cas, closeFn, err := cc.Open(casregistry.UsageDaemon, "")
	if err != nil {
		return nil, nil, err
	}
	return cas, closeFn, nil
}

// serve blocks until ctx is done or the server fails.
func serve(ctx context.Context, lis net.Listener, cas storage.CAS, logger *zap.Logger) error {
	s := grpc.NewServer()
	grpccas.RegisterCASServer(s, &grpccas.Server{CAS: cas, Logger: logger})

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(lis) }()
	logger.Info("cidproofd listening", zap.String("addr", lis.Addr().String()))

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		s.GracefulStop()
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/stevedylandev/cid-proof/internal/config"
	"github.com/stevedylandev/cid-proof/internal/logging"
	"github.com/stevedylandev/cid-proof/storage"
	"github.com/stevedylandev/cid-proof/storage/casconfig"
	"github.com/stevedylandev/cid-proof/storage/casregistry"

	_ "github.com/stevedylandev/cid-proof/storage/grpccas"
	_ "github.com/stevedylandev/cid-proof/storage/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// failure marks errors raised while running a command, as opposed to usage
// errors cobra reports while parsing.
type failure struct{ err error }

func (f failure) Error() string { return f.err.Error() }
func (f failure) Unwrap() error { return f.err }

func fail(format string, args ...any) error {
	return failure{err: fmt.Errorf(format, args...)}
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	a := &app{v: config.New(), out: out, errOut: errOut}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(context.Background())
	if a.log != nil {
		_ = a.log.Sync()
	}
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

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	log     *zap.Logger
	out     io.Writer
	errOut  io.Writer
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cidproof",
		Short:         "Compute CIDv1 public values for zkVM commitment and verify them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return failure{err: err}
			}
			a.cfg = cfg
			log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: a.errOut})
			if err != nil {
				return failure{err: err}
			}
			a.log = log
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ./cidproof.yaml or $HOME/.cidproof/cidproof.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: console or json")
	pf.String("cas-dir", "", "use a single localfs CAS at this directory instead of the configured backends")
	pf.String("cas-backend", "", "preferred configured CAS backend (name or id) for writes")
	mustBind(a.v, "log.level", pf.Lookup("log-level"))
	mustBind(a.v, "log.format", pf.Lookup("log-format"))
	mustBind(a.v, "cli.cas_dir", pf.Lookup("cas-dir"))
	mustBind(a.v, "cli.cas_backend", pf.Lookup("cas-backend"))

	root.AddCommand(
		a.cidCmd(),
		a.executeCmd(),
		a.fixtureCmd(),
		a.decodeCmd(),
		a.verifyCmd(),
		a.putCmd(),
		a.getCmd(),
		a.backendsCmd(),
	)
	return root
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// openCAS opens the configured CAS, or a single localfs store when --cas-dir
// is set.
func (a *app) openCAS() (storage.CAS, func() error, error) {
	cfg := a.cfg.CAS
	if dir := a.v.GetString("cli.cas_dir"); dir != "" {
		cfg = casconfig.Config{Backends: []casconfig.BackendConfig{
			{Name: "localfs", Config: map[string]string{"dir": config.ExpandHome(dir)}},
		}}
	}
	cas, closeFn, err := cfg.Open(casregistry.UsageCLI, a.v.GetString("cli.cas_backend"))
	if err != nil {
		return nil, nil, failure{err: err}
	}
	if closeFn == nil {
		closeFn = func() error { return nil }
	}
	return cas, closeFn, nil
}

// readFile reads path, reporting a missing file distinctly.
func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fail("file not found: %s", path)
		}
		return nil, fail("read %s: %w", path, err)
	}
	return b, nil
}

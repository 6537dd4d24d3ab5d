// Package config loads cidproof settings from defaults, an optional YAML file
// and CIDPROOF_* environment variables, in increasing precedence. Flags bound
// to the same viper instance take precedence over all three.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/stevedylandev/cid-proof/storage/casconfig"
)

const (
	EnvPrefix = "CIDPROOF"
	// FileName is searched for as cidproof.yaml in ./ and $HOME/.cidproof/.
	FileName = "cidproof"
)

type Config struct {
	Log      LogConfig        `mapstructure:"log"`
	CAS      casconfig.Config `mapstructure:"cas"`
	Fixtures FixturesConfig   `mapstructure:"fixtures"`
	Daemon   DaemonConfig     `mapstructure:"daemon"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type FixturesConfig struct {
	Dir string `mapstructure:"dir"`
}

type DaemonConfig struct {
	Listen string `mapstructure:"listen"`
	// Backend is the casregistry backend to serve; empty serves the
	// configured CAS as a whole.
	Backend string `mapstructure:"backend"`
}

// New returns a viper instance carrying defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("cas.write_policy", "first")
	v.SetDefault("cas.backends", []map[string]any{
		{"name": "localfs", "config": map[string]any{"dir": "~/.cidproof/cas"}},
	})

	v.SetDefault("fixtures.dir", filepath.Join("contracts", "src", "fixtures"))
	v.SetDefault("daemon.listen", "127.0.0.1:7777")
	v.SetDefault("daemon.backend", "")
}

// Load reads cfgFile (or searches for cidproof.yaml when empty) into v and
// decodes the result. A missing searched-for file is not an error; a missing
// explicit file is.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	var cfg Config
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".cidproof"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("config: read: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: decode: %w", err)
	}
	for i := range cfg.CAS.Backends {
		if dir, ok := cfg.CAS.Backends[i].Config["dir"]; ok {
			cfg.CAS.Backends[i].Config["dir"] = ExpandHome(dir)
		}
	}
	cfg.Fixtures.Dir = ExpandHome(cfg.Fixtures.Dir)
	return cfg, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

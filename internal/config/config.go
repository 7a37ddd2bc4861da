// Package config loads serpkey settings from flags, SERPKEY_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/duboisf/serpkey/internal/credential"
)

// Setting keys, shared by flags, environment variables and the config file.
const (
	KeyName     = "name"
	KeyInputEnv = "input_env"
	KeyBackend  = "backend"
	KeyFile     = "file"
	KeyVerbose  = "verbose"
)

// Backend kinds accepted by --backend.
const (
	BackendAuto    = "auto"
	BackendEnv     = "env"
	BackendFile    = "file"
	BackendKeyring = "keyring"
)

// Backends lists the accepted backend kinds.
var Backends = []string{BackendAuto, BackendEnv, BackendFile, BackendKeyring}

// EnvPrefix prefixes every environment variable that configures serpkey.
const EnvPrefix = "SERPKEY"

// Config is the resolved configuration for one invocation.
type Config struct {
	// Name is the variable to provision.
	Name string
	// InputEnv is the variable read for non-interactive input.
	InputEnv string
	// Backend is one of Backends.
	Backend string
	// File overrides the fallback env file path.
	File    string
	Verbose bool
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault(KeyName, credential.DefaultName)
	v.SetDefault(KeyInputEnv, credential.DefaultInputEnv)
	v.SetDefault(KeyBackend, BackendAuto)
	v.SetDefault(KeyFile, "")
	v.SetDefault(KeyVerbose, false)
	return v
}

// BindFlags binds every flag in fs whose name is a setting key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range []string{KeyName, KeyBackend, KeyFile, KeyVerbose} {
		f := fs.Lookup(key)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the config file and returns the validated configuration. An
// explicit path must exist; the default <configDir>/serpkey/config.yaml is
// optional.
func Load(v *viper.Viper, path string, configDir func() (string, error)) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("yaml")
		}
	} else {
		if configDir == nil {
			configDir = os.UserConfigDir
		}
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "serpkey"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := Config{
		Name:     v.GetString(KeyName),
		InputEnv: v.GetString(KeyInputEnv),
		Backend:  v.GetString(KeyBackend),
		File:     v.GetString(KeyFile),
		Verbose:  v.GetBool(KeyVerbose),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks names and the backend kind.
func (c Config) Validate() error {
	if err := credential.ValidateName(c.Name); err != nil {
		return fmt.Errorf("%s: %w", KeyName, err)
	}
	if err := credential.ValidateName(c.InputEnv); err != nil {
		return fmt.Errorf("%s: %w", KeyInputEnv, err)
	}
	for _, b := range Backends {
		if c.Backend == b {
			return nil
		}
	}
	return fmt.Errorf("%s: unknown backend %q (want one of %v)", KeyBackend, c.Backend, Backends)
}

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/duboisf/serpkey/internal/config"
	"github.com/duboisf/serpkey/internal/credential"
)

// Options holds injectable dependencies for all commands.
type Options struct {
	// NewBackend builds the persistence backend for a configuration.
	// Defaults to newBackend with ConfigDir.
	NewBackend func(cfg config.Config) (credential.Backend, error)
	// ConfigDir returns the user's config directory. Defaults to os.UserConfigDir.
	ConfigDir func() (string, error)
	// LookupEnv allows overriding os.LookupEnv for testing.
	LookupEnv func(key string) (string, bool)
	// ReadPassword allows overriding term.ReadPassword for testing.
	ReadPassword func(fd int) ([]byte, error)
	// IsTerminal allows overriding term.IsTerminal for testing.
	IsTerminal func(fd int) bool
	// Stdin for interactive and piped input.
	Stdin io.Reader
	// Stdout for status output. Never receives the secret.
	Stdout io.Writer
	// Stderr for prompts, warnings and errors. Never receives the secret.
	Stderr io.Writer
}

func (o Options) lookupEnv() func(string) (string, bool) {
	if o.LookupEnv != nil {
		return o.LookupEnv
	}
	return os.LookupEnv
}

func (o Options) backend(cfg config.Config) (credential.Backend, error) {
	if o.NewBackend != nil {
		return o.NewBackend(cfg)
	}
	return newBackend(cfg, o.ConfigDir)
}

// rootState is shared by the root command and its subcommands.
type rootState struct {
	v          *viper.Viper
	configFile string
	configDir  func() (string, error)
}

func (s *rootState) load() (config.Config, error) {
	return config.Load(s.v, s.configFile, s.configDir)
}

// NewRootCmd creates the root cobra command with all subcommands wired up.
// Running it without a subcommand provisions the secret.
func NewRootCmd(opts Options) *cobra.Command {
	st := &rootState{v: config.New(), configDir: opts.ConfigDir}

	root := &cobra.Command{
		Use:   "serpkey",
		Short: "Store your SerpApi key as a user environment variable",
		Long: `Store your SerpApi key as a user environment variable.

The key is read from, in order of precedence: the --value flag, standard
input (--stdin), the SERPAPI_KEY_INPUT environment variable, or an
interactive prompt that does not echo. It is then written to the per-user
environment store (the HKCU\Environment registry key on Windows, a systemd
environment.d file on Linux) or, where none exists, to an env file under the
user config directory.

Exit status is 0 on success, 1 when no value was entered and 2 when the
value could not be stored.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          newSetRunE(opts, st),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	pf := root.PersistentFlags()
	pf.String(config.KeyName, credential.DefaultName, "Environment variable to set")
	pf.String(config.KeyBackend, config.BackendAuto, "Where to store the value: auto, env, file, keyring")
	pf.String(config.KeyFile, "", "Path of the env file used by the file backend")
	pf.BoolP(config.KeyVerbose, "v", false, "Log diagnostics to stderr (the value is never logged)")
	pf.StringVar(&st.configFile, "config", "", "Config file (default <user config dir>/serpkey/config.yaml)")
	_ = root.RegisterFlagCompletionFunc(config.KeyBackend, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return config.Backends, cobra.ShellCompDirectiveNoFileComp
	})
	_ = root.RegisterFlagCompletionFunc(config.KeyName, cobra.NoFileCompletions)
	_ = config.BindFlags(st.v, pf)

	addSetFlags(root)

	root.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "setup", Title: "Setup Commands:"},
	)

	statusCmd := newStatusCmd(opts, st)
	statusCmd.GroupID = "core"
	completionCmd := newCompletionCmd()
	completionCmd.GroupID = "setup"
	versionCmd := newVersionCmd()
	versionCmd.GroupID = "setup"

	root.SetHelpCommand(&cobra.Command{Hidden: true})

	root.AddCommand(
		statusCmd,
		completionCmd,
		versionCmd,
	)
	return root
}

// ExecuteContext creates the root command with default options and runs it.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd(DefaultOptions()).ExecuteContext(ctx)
}

// DefaultOptions returns production-ready Options bound to the real
// terminal, environment and config directory.
func DefaultOptions() Options {
	return Options{
		ConfigDir: os.UserConfigDir,
		LookupEnv: os.LookupEnv,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/duboisf/serpkey/internal/config"
	"github.com/duboisf/serpkey/internal/credential"
	"github.com/duboisf/serpkey/internal/format"
	"github.com/duboisf/serpkey/internal/logging"
)

const (
	flagValue = "value"
	flagStdin = "stdin"
)

func addSetFlags(c *cobra.Command) {
	c.Flags().String(flagValue, "", "Value to store (visible in the process list; prefer --stdin or "+credential.DefaultInputEnv+")")
	c.Flags().Bool(flagStdin, false, "Read the value from the first line of standard input")
	c.MarkFlagsMutuallyExclusive(flagValue, flagStdin)
	_ = c.RegisterFlagCompletionFunc(flagValue, cobra.NoFileCompletions)
}

// newSetRunE returns the action that reads the secret and persists it.
func newSetRunE(opts Options, st *rootState) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := st.load()
		if err != nil {
			return err
		}
		logger := logging.New(cmd.ErrOrStderr(), cfg.Verbose)
		defer func() { _ = logger.Sync() }()
		warnIgnoredFile(cmd.ErrOrStderr(), cfg)

		backend, err := opts.backend(cfg)
		if err != nil {
			return err
		}

		value, _ := cmd.Flags().GetString(flagValue)
		fromStdin, _ := cmd.Flags().GetBool(flagStdin)
		source := credential.ChooseSource(credential.SourceOptions{
			Value:     value,
			ValueSet:  cmd.Flags().Changed(flagValue),
			FromStdin: fromStdin,
			Stdin:     cmd.InOrStdin(),
			Env: &credential.EnvSource{
				Name:      cfg.InputEnv,
				LookupEnv: opts.lookupEnv(),
			},
			Prompt: &credential.PromptSource{
				Name:         cfg.Name,
				Stdin:        cmd.InOrStdin(),
				MsgWriter:    cmd.ErrOrStderr(),
				ReadPassword: opts.ReadPassword,
				IsTerminal:   opts.IsTerminal,
			},
		})

		setter := &credential.Setter{
			Name:    cfg.Name,
			Backend: backend,
			Stdout:  cmd.OutOrStdout(),
			Stderr:  cmd.ErrOrStderr(),
			Logger:  logger,
		}
		if code := setter.Run(cmd.Context(), source); code != credential.ExitOK {
			return &ExitError{Code: int(code)}
		}
		return nil
	}
}

// fileIgnored reports whether cfg names an env file that the selected
// backend never writes.
func fileIgnored(cfg config.Config) bool {
	if cfg.File == "" {
		return false
	}
	switch cfg.Backend {
	case config.BackendEnv, config.BackendKeyring:
		return true
	case config.BackendAuto:
		return credential.NativeAvailable
	default:
		return false
	}
}

func warnIgnoredFile(w io.Writer, cfg config.Config) {
	if !fileIgnored(cfg) {
		return
	}
	msg := fmt.Sprintf("Warning: --file %s has no effect with --backend %s; use --backend file to write there.", cfg.File, cfg.Backend)
	fmt.Fprintln(w, format.Colorize(format.ColorEnabled(w), format.Yellow, msg))
}

// newBackend builds the backend selected by cfg.Backend.
func newBackend(cfg config.Config, configDir func() (string, error)) (credential.Backend, error) {
	fallback := credential.FallbackFile(configDir, cfg.File)
	switch cfg.Backend {
	case config.BackendAuto:
		return &credential.ChainBackend{
			Backends: []credential.Backend{credential.NativeBackend(configDir), fallback},
		}, nil
	case config.BackendEnv:
		return credential.NativeBackend(configDir), nil
	case config.BackendFile:
		return fallback, nil
	case config.BackendKeyring:
		return &credential.KeyringBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

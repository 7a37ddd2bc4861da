package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/duboisf/serpkey/internal/credential"
	"github.com/duboisf/serpkey/internal/format"
)

// newStatusCmd creates the "status" command, which reports where the
// variable is set with its value masked.
func newStatusCmd(opts Options, st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the variable is stored",
		Long: `Show whether the variable is stored in the selected backend and in the
current process environment. Values are masked. Exits with status 1 when
the backend holds no value.`,
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := st.load()
			if err != nil {
				return err
			}
			backend, err := opts.backend(cfg)
			if err != nil {
				return err
			}
			warnIgnoredFile(cmd.ErrOrStderr(), cfg)

			out := cmd.OutOrStdout()
			color := format.ColorEnabled(out)
			notSet := format.Colorize(color, format.Gray, "not set")
			fmt.Fprintln(out, format.Colorize(color, format.Bold, cfg.Name))

			location := backend.Location(cfg.Name)
			stored, err := backend.Get(cmd.Context(), cfg.Name)
			switch {
			case err == nil:
				fmt.Fprintf(out, "  %s: %s\n", location, format.Mask(stored))
			case errors.Is(err, credential.ErrNotFound), errors.Is(err, credential.ErrUnsupported):
				fmt.Fprintf(out, "  %s: %s\n", location, notSet)
			default:
				return &ExitError{
					Code: int(credential.ExitPersistence),
					Err:  fmt.Errorf("reading %s: %w", location, err),
				}
			}

			if val, ok := opts.lookupEnv()(cfg.Name); ok && val != "" {
				fmt.Fprintf(out, "  current process environment: %s\n", format.Mask(val))
			} else {
				fmt.Fprintf(out, "  current process environment: %s\n", notSet)
			}

			if stored == "" {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
}

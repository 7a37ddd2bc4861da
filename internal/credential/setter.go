package credential

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/duboisf/serpkey/internal/format"
)

// Setter reads one secret and persists it.
type Setter struct {
	// Name is the variable to set. Defaults to DefaultName.
	Name    string
	Backend Backend
	// Stdout receives the confirmation; it never sees the value.
	Stdout io.Writer
	// Stderr receives warnings and errors, scrubbed of the value.
	Stderr io.Writer
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

func (s *Setter) name() string {
	if s.Name != "" {
		return s.Name
	}
	return DefaultName
}

func (s *Setter) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// Run reads from source, validates, and makes a single write to the backend.
// Nothing is written when the input is empty or ctx ends first.
func (s *Setter) Run(ctx context.Context, source InputSource) ExitCode {
	stdout := writerOrDiscard(s.Stdout)
	stderr := writerOrDiscard(s.Stderr)
	name := s.name()
	log := s.logger().With(zap.String("source", source.Describe()), zap.String("name", name))

	raw, err := source.ReadSecret(ctx)
	if err != nil {
		log.Debug("input aborted", zap.String("error", Scrub(err.Error(), raw)))
		s.warn(stderr, fmt.Sprintf("No value read from %s: %s. %s was not changed.",
			source.Describe(), Scrub(err.Error(), raw), name))
		return ExitEmptyInput
	}

	entry, err := NewEntry(name, raw)
	if err != nil {
		log.Debug("input rejected", zap.Error(err))
		switch {
		case errors.Is(err, ErrEmptyInput):
			s.warn(stderr, fmt.Sprintf("No value entered. %s was not changed.", name))
		default:
			s.warn(stderr, fmt.Sprintf("%s. %s was not changed.", err, name))
		}
		return ExitEmptyInput
	}

	if err := ctx.Err(); err != nil {
		log.Debug("interrupted before write", zap.Error(err))
		s.warn(stderr, fmt.Sprintf("Interrupted. %s was not changed.", name))
		return ExitEmptyInput
	}

	location := s.Backend.Location(name)
	log.Debug("persisting", zap.Object("entry", entry), zap.String("backend", location))
	if err := s.Backend.Set(ctx, entry); err != nil {
		perr := &PersistenceError{Backend: s.Backend.Location(name), Name: name, Err: err}
		msg := Scrub(perr.Error(), entry.Value)
		log.Debug("persist failed", zap.String("error", msg))
		fmt.Fprintln(stderr, format.Colorize(format.ColorEnabled(stderr), format.Red, "Error: "+msg))
		return ExitPersistence
	}

	location = s.Backend.Location(name)
	log.Debug("persisted", zap.String("backend", location))
	fmt.Fprintf(stdout, "%s %s saved to %s.\n",
		format.Colorize(format.ColorEnabled(stdout), format.Green, "✓"), name, location)
	fmt.Fprintln(stdout, "Open a new terminal session for the change to take effect.")
	return ExitOK
}

func (s *Setter) warn(w io.Writer, msg string) {
	fmt.Fprintln(w, format.Colorize(format.ColorEnabled(w), format.Yellow, "Warning: "+msg))
}

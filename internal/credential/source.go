package credential

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// InputSource supplies the raw secret value for one run.
type InputSource interface {
	// ReadSecret returns the untrimmed value.
	ReadSecret(ctx context.Context) (string, error)
	// Describe names the source for log lines and messages.
	Describe() string
}

// StaticSource returns a value given on the command line.
type StaticSource struct {
	Value string
}

func (s StaticSource) ReadSecret(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Value, nil
}

func (StaticSource) Describe() string { return "--value flag" }

// EnvSource reads the secret from an environment variable.
type EnvSource struct {
	// Name is the variable to read. Defaults to DefaultInputEnv.
	Name string
	// LookupEnv allows overriding os.LookupEnv for testing.
	LookupEnv func(key string) (string, bool)
}

func (s *EnvSource) name() string {
	if s.Name != "" {
		return s.Name
	}
	return DefaultInputEnv
}

func (s *EnvSource) lookup() (string, bool) {
	lookup := s.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return lookup(s.name())
}

// Present reports whether the variable is set, even to an empty string.
func (s *EnvSource) Present() bool {
	_, ok := s.lookup()
	return ok
}

// ReadSecret returns the variable's value. A variable that is set but empty
// yields an empty value rather than ErrNoInput.
func (s *EnvSource) ReadSecret(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	val, ok := s.lookup()
	if !ok {
		return "", fmt.Errorf("%w: %s is not set", ErrNoInput, s.name())
	}
	return val, nil
}

func (s *EnvSource) Describe() string { return s.name() + " environment variable" }

// ReaderSource reads the first line of R, typically a pipe on stdin.
type ReaderSource struct {
	R io.Reader
}

func (s *ReaderSource) ReadSecret(ctx context.Context) (string, error) {
	return readAsync(ctx, func() (string, error) {
		return readLine(s.R)
	})
}

func (s *ReaderSource) Describe() string { return "standard input" }

// fdReader is implemented by readers backed by a file descriptor (e.g. *os.File).
type fdReader interface {
	io.Reader
	Fd() uintptr
}

// PromptSource asks for the secret interactively.
type PromptSource struct {
	// Name is the variable being provisioned, shown in the prompt.
	Name string
	// Stdin is read when it is not a terminal.
	Stdin io.Reader
	// MsgWriter receives the prompt text. Callers typically pass stderr.
	MsgWriter io.Writer
	// ReadPassword allows overriding term.ReadPassword for testing.
	ReadPassword func(fd int) ([]byte, error)
	// IsTerminal allows overriding term.IsTerminal for testing.
	IsTerminal func(fd int) bool
}

func (p *PromptSource) terminalFD() (int, bool) {
	f, ok := p.Stdin.(fdReader)
	if !ok {
		return 0, false
	}
	isTerminal := p.IsTerminal
	if isTerminal == nil {
		isTerminal = term.IsTerminal
	}
	fd := int(f.Fd())
	return fd, isTerminal(fd)
}

// ReadSecret prints the prompt and reads the value. On a terminal the input
// is not echoed; otherwise a single line is read from Stdin.
func (p *PromptSource) ReadSecret(ctx context.Context) (string, error) {
	name := p.Name
	if name == "" {
		name = DefaultName
	}
	w := p.MsgWriter
	if w == nil {
		w = io.Discard
	}
	fmt.Fprintf(w, "Enter the value for %s (get a SerpApi key at https://serpapi.com/manage-api-key): ", name)

	fd, isTTY := p.terminalFD()
	if !isTTY {
		return readAsync(ctx, func() (string, error) {
			return readLine(p.Stdin)
		})
	}

	readPassword := p.ReadPassword
	if readPassword == nil {
		readPassword = term.ReadPassword
	}
	// ReadPassword restores echo only when it returns, so an interrupt has to
	// put the terminal back itself.
	state, stateErr := term.GetState(fd)
	val, err := readAsync(ctx, func() (string, error) {
		b, err := readPassword(fd)
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return string(b), nil
	})
	if ctx.Err() != nil && stateErr == nil {
		_ = term.Restore(fd, state)
	}
	fmt.Fprintln(w) // newline after hidden input
	return val, err
}

func (p *PromptSource) Describe() string { return "interactive prompt" }

// SourceOptions collects the inputs ChooseSource picks from.
type SourceOptions struct {
	// Value is the --value flag; ValueSet reports whether it was given.
	Value    string
	ValueSet bool
	// FromStdin is the --stdin flag; Stdin is read when it is set.
	FromStdin bool
	Stdin     io.Reader
	Env       *EnvSource
	Prompt    *PromptSource
}

// ChooseSource returns the first applicable source in this order:
// --value, --stdin, the input environment variable, the interactive prompt.
func ChooseSource(opts SourceOptions) InputSource {
	switch {
	case opts.ValueSet:
		return StaticSource{Value: opts.Value}
	case opts.FromStdin:
		return &ReaderSource{R: opts.Stdin}
	case opts.Env != nil && opts.Env.Present():
		return opts.Env
	default:
		return opts.Prompt
	}
}

// readLine returns the first line of r without its line terminator. An empty
// stream yields an empty value.
func readLine(r io.Reader) (string, error) {
	if r == nil {
		return "", fmt.Errorf("%w: no input stream", ErrNoInput)
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readAsync runs a blocking read and gives up when ctx is done. The read
// goroutine is abandoned on cancellation; the process exits shortly after.
func readAsync(ctx context.Context, read func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	type result struct {
		val string
		err error
	}
	ch := make(chan result, 1)
	go func() {
		val, err := read()
		ch <- result{val, err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.val, r.err
	}
}

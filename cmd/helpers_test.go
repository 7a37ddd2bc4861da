package cmd_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/duboisf/serpkey/cmd"
	"github.com/duboisf/serpkey/internal/config"
	"github.com/duboisf/serpkey/internal/credential"
)

// --- Mock backend ---

type memBackend struct {
	values map[string]string
	setErr error
	getErr error
	sets   int
	cfg    config.Config
}

func newMemBackend() *memBackend {
	return &memBackend{values: map[string]string{}}
}

func (m *memBackend) Set(_ context.Context, e credential.SecretEntry) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.values[e.Name] = e.Value
	return nil
}

func (m *memBackend) Get(_ context.Context, name string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.values[name]
	if !ok {
		return "", credential.ErrNotFound
	}
	return v, nil
}

func (m *memBackend) Location(name string) string { return "memory store" }

// --- Test options ---

// testOptions returns Options wired to backend, a fake environment and an
// empty config directory. Stdin defaults to an empty reader.
func testOptions(t *testing.T, backend *memBackend, env map[string]string) cmd.Options {
	t.Helper()
	dir := t.TempDir()
	return cmd.Options{
		NewBackend: func(cfg config.Config) (credential.Backend, error) {
			backend.cfg = cfg
			return backend, nil
		},
		ConfigDir: func() (string, error) { return dir, nil },
		LookupEnv: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
		ReadPassword: func(int) ([]byte, error) {
			t.Error("ReadPassword called without a terminal")
			return nil, nil
		},
		IsTerminal: func(int) bool { return false },
		Stdin:      strings.NewReader(""),
	}
}

// executeCommand executes the given cobra command with args and captures output.
func executeCommand(root *cobra.Command, args ...string) (stdout, stderr string, err error) {
	return executeCommandWithInput(root, nil, args...)
}

// executeCommandWithInput is executeCommand with stdin replaced by in when non-nil.
func executeCommandWithInput(root *cobra.Command, in io.Reader, args ...string) (stdout, stderr string, err error) {
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	root.SetOut(outBuf)
	root.SetErr(errBuf)
	if in != nil {
		root.SetIn(in)
	}
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

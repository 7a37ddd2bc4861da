package credential_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duboisf/serpkey/internal/credential"
	"github.com/duboisf/serpkey/internal/logging"
)

type setterRun struct {
	code    credential.ExitCode
	backend *memBackend
	stdout  string
	stderr  string
}

func runSetter(t *testing.T, backend *memBackend, source credential.InputSource) setterRun {
	t.Helper()
	var stdout, stderr bytes.Buffer
	s := &credential.Setter{
		Backend: backend,
		Stdout:  &stdout,
		Stderr:  &stderr,
		Logger:  logging.New(&stderr, true),
	}
	code := s.Run(context.Background(), source)
	return setterRun{code: code, backend: backend, stdout: stdout.String(), stderr: stderr.String()}
}

func TestSetter_Run(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		prior     string
		wantCode  credential.ExitCode
		wantValue string
		wantSets  int
	}{
		{name: "plain value", input: "abc123", wantCode: credential.ExitOK, wantValue: "abc123", wantSets: 1},
		{name: "trimmed value", input: "  abc123 \n", wantCode: credential.ExitOK, wantValue: "abc123", wantSets: 1},
		{name: "overwrites prior", input: "new-key", prior: "old-key", wantCode: credential.ExitOK, wantValue: "new-key", wantSets: 1},
		{name: "empty keeps prior", input: "", prior: "old-key", wantCode: credential.ExitEmptyInput, wantValue: "old-key"},
		{name: "whitespace keeps prior", input: " \t ", prior: "old-key", wantCode: credential.ExitEmptyInput, wantValue: "old-key"},
		{name: "empty with nothing stored", input: "", wantCode: credential.ExitEmptyInput},
		{name: "multi-line rejected", input: "abc\ndef", prior: "old-key", wantCode: credential.ExitEmptyInput, wantValue: "old-key"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := newMemBackend()
			if tt.prior != "" {
				backend.values[credential.DefaultName] = tt.prior
			}
			run := runSetter(t, backend, credential.StaticSource{Value: tt.input})

			assert.Equal(t, tt.wantCode, run.code)
			assert.Equal(t, tt.wantValue, backend.values[credential.DefaultName])
			assert.Equal(t, tt.wantSets, backend.sets)
			if tt.wantCode == credential.ExitOK {
				assert.Contains(t, run.stdout, "SERPAPI_KEY saved to memory:SERPAPI_KEY")
			} else {
				assert.Empty(t, run.stdout)
				assert.Contains(t, run.stderr, "was not changed")
			}
		})
	}
}

func TestSetter_PersistenceFailure(t *testing.T) {
	t.Parallel()

	backend := newMemBackend()
	backend.values[credential.DefaultName] = "old-key"
	backend.setErr = errors.New("permission denied")

	run := runSetter(t, backend, credential.StaticSource{Value: "abc123"})

	assert.Equal(t, credential.ExitPersistence, run.code)
	assert.Equal(t, 1, backend.sets, "no retries")
	assert.Equal(t, "old-key", backend.values[credential.DefaultName])
	assert.Contains(t, run.stderr, "permission denied")
	assert.Contains(t, run.stderr, "storing SERPAPI_KEY in memory:SERPAPI_KEY")
	assert.Empty(t, run.stdout)
}

func TestSetter_NeverPrintsSecret(t *testing.T) {
	t.Parallel()

	const secret = "s3cr3t-value-0123456789"
	tests := []struct {
		name    string
		backend *memBackend
		source  credential.InputSource
	}{
		{name: "success", backend: newMemBackend(), source: credential.StaticSource{Value: secret}},
		{
			name:    "backend error echoing the value",
			backend: &memBackend{values: map[string]string{}, setErr: fmt.Errorf("rejected %q", secret)},
			source:  credential.StaticSource{Value: secret},
		},
		{
			name:    "read error after partial input",
			backend: newMemBackend(),
			source:  errSource{partial: secret, err: fmt.Errorf("broken pipe after %s", secret)},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			run := runSetter(t, tt.backend, tt.source)
			assert.NotContains(t, run.stdout, secret)
			assert.NotContains(t, run.stderr, secret)
		})
	}
}

func TestSetter_ReadErrorIsAbortedInput(t *testing.T) {
	t.Parallel()

	backend := newMemBackend()
	run := runSetter(t, backend, errSource{err: errors.New("terminal error")})

	assert.Equal(t, credential.ExitEmptyInput, run.code)
	assert.Zero(t, backend.sets)
	assert.Contains(t, run.stderr, "terminal error")
}

func TestSetter_CanceledBeforeWrite(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	backend := newMemBackend()
	var stderr bytes.Buffer
	s := &credential.Setter{Backend: backend, Stderr: &stderr}

	// The source returns a value but the interrupt lands before the write.
	code := s.Run(ctx, cancelingSource{cancel: cancel, value: "abc123"})

	require.Equal(t, credential.ExitEmptyInput, code)
	assert.Zero(t, backend.sets)
	assert.Contains(t, stderr.String(), "Interrupted")
}

func TestSetter_CustomName(t *testing.T) {
	t.Parallel()

	backend := newMemBackend()
	var stdout bytes.Buffer
	s := &credential.Setter{Name: "OTHER_KEY", Backend: backend, Stdout: &stdout}

	code := s.Run(context.Background(), credential.StaticSource{Value: "abc123"})

	require.Equal(t, credential.ExitOK, code)
	assert.Equal(t, "abc123", backend.values["OTHER_KEY"])
	assert.Contains(t, stdout.String(), "OTHER_KEY saved")
}

func TestSetter_NilWriters(t *testing.T) {
	t.Parallel()

	s := &credential.Setter{Backend: newMemBackend()}
	assert.Equal(t, credential.ExitOK, s.Run(context.Background(), credential.StaticSource{Value: "abc123"}))
	assert.Equal(t, credential.ExitEmptyInput, s.Run(context.Background(), credential.StaticSource{Value: ""}))
}

type cancelingSource struct {
	cancel context.CancelFunc
	value  string
}

func (s cancelingSource) ReadSecret(context.Context) (string, error) {
	s.cancel()
	return s.value, nil
}

func (cancelingSource) Describe() string { return "canceling source" }

package credential_test

import (
	"context"
	"io"
	"os"

	"github.com/duboisf/serpkey/internal/credential"
)

// --- memBackend records writes in a map ---

type memBackend struct {
	values map[string]string
	setErr error
	getErr error
	sets   int
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

func (m *memBackend) Location(name string) string { return "memory:" + name }

var _ credential.Backend = (*memBackend)(nil)

// --- sources ---

type errSource struct {
	partial string
	err     error
}

func (s errSource) ReadSecret(context.Context) (string, error) { return s.partial, s.err }
func (errSource) Describe() string                               { return "failing source" }

// fakeTTY looks like a terminal-backed *os.File to PromptSource.
type fakeTTY struct {
	io.Reader
}

// Fd returns a descriptor that is never open, so term.GetState fails.
func (fakeTTY) Fd() uintptr { return uintptr(1 << 20) }

// --- memFS for EnvFileBackend testing ---

type memFS struct {
	files    map[string][]byte
	readErr  error
	writeErr error
	mkdirErr error

	writtenPath string
	writtenData []byte
	writtenPerm os.FileMode
	mkdirPath   string
	mkdirPerm   os.FileMode
}

var _ credential.FileSystem = (*memFS)(nil)

func (m *memFS) ReadFile(name string) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	data, ok := m.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (m *memFS) WriteFileAtomic(name string, data []byte, perm os.FileMode) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writtenPath = name
	m.writtenData = data
	m.writtenPerm = perm
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[name] = data
	return nil
}

func (m *memFS) MkdirAll(path string, perm os.FileMode) error {
	m.mkdirPath = path
	m.mkdirPerm = perm
	return m.mkdirErr
}

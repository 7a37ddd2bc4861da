package credential

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem abstracts filesystem operations needed by EnvFileBackend.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	MkdirAll(path string, perm os.FileMode) error
	// WriteFileAtomic replaces name with data so that readers see either the
	// old content or the new one, never a mix.
	WriteFileAtomic(name string, data []byte, perm os.FileMode) error
}

// osFileSystem implements FileSystem using the real filesystem.
type osFileSystem struct{}

var _ FileSystem = osFileSystem{}

func (osFileSystem) ReadFile(name string) ([]byte, error)         { return os.ReadFile(name) }
func (osFileSystem) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

func (osFileSystem) WriteFileAtomic(name string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), name)
}

// EnvFileBackend stores each variable as a single NAME=value line in a file
// readable only by its owner (0600, directory 0700).
type EnvFileBackend struct {
	// FS provides filesystem operations. Defaults to the real OS filesystem.
	FS FileSystem
	// Path returns the file holding name.
	Path func(name string) (string, error)
	// Label prefixes the path in Location.
	Label string
	// Encode and Decode convert the value to and from its on-disk form.
	// Nil stores the value verbatim.
	Encode func(value string) string
	Decode func(raw string) string
}

func (b *EnvFileBackend) fs() FileSystem {
	if b.FS != nil {
		return b.FS
	}
	return osFileSystem{}
}

// Set writes entry as the only line of its file.
func (b *EnvFileBackend) Set(ctx context.Context, entry SecretEntry) error {
	path, err := b.Path(entry.Name)
	if err != nil {
		return err
	}
	if err := b.fs().MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	value := entry.Value
	if b.Encode != nil {
		value = b.Encode(value)
	}
	data := []byte(entry.Name + "=" + value + "\n")
	if err := b.fs().WriteFileAtomic(path, data, 0600); err != nil {
		return fmt.Errorf("writing env file: %w", err)
	}
	return nil
}

// Get returns the value of the first NAME= line, passed through Decode.
// Without a Decode the value is taken verbatim.
func (b *EnvFileBackend) Get(_ context.Context, name string) (string, error) {
	path, err := b.Path(name)
	if err != nil {
		return "", err
	}
	data, err := b.fs().ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reading env file: %w", err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "export ")
		key, val, ok := strings.Cut(line, "=")
		if ok && strings.TrimSpace(key) == name {
			if b.Decode != nil {
				val = b.Decode(val)
			}
			if val == "" {
				return "", ErrNotFound
			}
			return val, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading env file: %w", err)
	}
	return "", ErrNotFound
}

// Location returns the label and the file path for name.
func (b *EnvFileBackend) Location(name string) string {
	path, err := b.Path(name)
	if err != nil {
		return b.Label
	}
	if b.Label == "" {
		return path
	}
	return b.Label + " (" + path + ")"
}

// FallbackFile returns the env file backend used where no native user
// environment store exists. A non-empty override is used as the path for
// every name; otherwise files live under <configDir>/serpkey/<NAME>.env.
func FallbackFile(configDir func() (string, error), override string) *EnvFileBackend {
	if configDir == nil {
		configDir = os.UserConfigDir
	}
	return &EnvFileBackend{
		Label: "env file",
		Path: func(name string) (string, error) {
			if override != "" {
				return override, nil
			}
			dir, err := configDir()
			if err != nil {
				return "", fmt.Errorf("determining config directory: %w", err)
			}
			return filepath.Join(dir, "serpkey", name+".env"), nil
		},
	}
}

package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Backend persists named user-scoped secrets.
type Backend interface {
	// Set stores entry, replacing any previous value for entry.Name.
	Set(ctx context.Context, entry SecretEntry) error
	// Get returns the stored value for name, or ErrNotFound.
	Get(ctx context.Context, name string) (string, error)
	// Location describes where name is (or would be) stored.
	Location(name string) string
}

// unsupportedBackend stands in for a native store the platform lacks.
type unsupportedBackend struct {
	platform string
}

func (b unsupportedBackend) Set(context.Context, SecretEntry) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, b.platform)
}

func (b unsupportedBackend) Get(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrUnsupported, b.platform)
}

func (b unsupportedBackend) Location(string) string {
	return "user environment (unavailable on " + b.platform + ")"
}

// ChainBackend writes to the first backend that exists on this platform.
// Only ErrUnsupported moves on to the next backend; any other failure is
// returned as is so a value is never silently written to a second store.
type ChainBackend struct {
	Backends []Backend

	used Backend
}

// Set stores entry using the first supported backend.
func (c *ChainBackend) Set(ctx context.Context, entry SecretEntry) error {
	for _, b := range c.Backends {
		err := b.Set(ctx, entry)
		if err == nil {
			c.used = b
			return nil
		}
		if !errors.Is(err, ErrUnsupported) {
			c.used = b
			return err
		}
	}
	return fmt.Errorf("%w: no backend in chain", ErrUnsupported)
}

// Get returns the first value found, skipping unsupported and empty backends.
func (c *ChainBackend) Get(ctx context.Context, name string) (string, error) {
	for _, b := range c.Backends {
		val, err := b.Get(ctx, name)
		if err == nil {
			return val, nil
		}
		if errors.Is(err, ErrUnsupported) || errors.Is(err, ErrNotFound) {
			continue
		}
		return "", err
	}
	return "", ErrNotFound
}

// Location names the backend used by the last Set, or lists the chain.
func (c *ChainBackend) Location(name string) string {
	if c.used != nil {
		return c.used.Location(name)
	}
	locs := make([]string, 0, len(c.Backends))
	for _, b := range c.Backends {
		locs = append(locs, b.Location(name))
	}
	return strings.Join(locs, ", falling back to ")
}

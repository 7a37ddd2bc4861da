package credential

import (
	"context"
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"
)

// DefaultKeyringService is the service name entries are filed under.
const DefaultKeyringService = "serpkey"

// KeyringBackend stores variables in the OS keyring (macOS Keychain, Secret
// Service on Linux, Windows Credential Manager), one entry per name.
type KeyringBackend struct {
	// Service defaults to DefaultKeyringService.
	Service string
}

func (b *KeyringBackend) service() string {
	if b.Service != "" {
		return b.Service
	}
	return DefaultKeyringService
}

// Set stores entry, replacing an existing keyring item.
func (b *KeyringBackend) Set(ctx context.Context, entry SecretEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := gokeyring.Set(b.service(), entry.Name, entry.Value); err != nil {
		return fmt.Errorf("writing to OS keyring: %w", err)
	}
	return nil
}

// Get reads name from the keyring.
func (b *KeyringBackend) Get(_ context.Context, name string) (string, error) {
	val, err := gokeyring.Get(b.service(), name)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reading from OS keyring: %w", err)
	}
	return val, nil
}

func (b *KeyringBackend) Location(name string) string {
	return fmt.Sprintf("OS keyring (service %s, account %s)", b.service(), name)
}

package credential

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const environmentKey = `Environment`

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	procSendMessageTimeout = user32.NewProc("SendMessageTimeoutW")
)

const (
	hwndBroadcast   = 0xffff
	wmSettingChange = 0x001A
	smtoAbortIfHung = 0x0002
)

// RegistryBackend stores variables under HKCU\Environment, the store that
// setx and the System Properties dialog write to.
type RegistryBackend struct{}

// Set writes entry as a REG_SZ value and notifies running shells.
func (RegistryBackend) Set(ctx context.Context, entry SecretEntry) error {
	k, err := registry.OpenKey(registry.CURRENT_USER, environmentKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening HKCU\\%s: %w", environmentKey, err)
	}
	defer k.Close()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := k.SetStringValue(entry.Name, entry.Value); err != nil {
		return fmt.Errorf("setting registry value: %w", err)
	}
	broadcastEnvironmentChange()
	return nil
}

// Get reads name from HKCU\Environment.
func (RegistryBackend) Get(_ context.Context, name string) (string, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, environmentKey, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("opening HKCU\\%s: %w", environmentKey, err)
	}
	defer k.Close()
	val, _, err := k.GetStringValue(name)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reading registry value: %w", err)
	}
	if val == "" {
		return "", ErrNotFound
	}
	return val, nil
}

func (RegistryBackend) Location(string) string {
	return `user environment (HKCU\Environment)`
}

// broadcastEnvironmentChange tells top-level windows (Explorer in particular)
// to reload the environment, so newly started programs see the change.
// Failures are ignored: the value is already stored.
func broadcastEnvironmentChange() {
	param, err := windows.UTF16PtrFromString(environmentKey)
	if err != nil {
		return
	}
	var result uintptr
	_, _, _ = procSendMessageTimeout.Call(
		hwndBroadcast,
		wmSettingChange,
		0,
		uintptr(unsafe.Pointer(param)),
		smtoAbortIfHung,
		5000,
		uintptr(unsafe.Pointer(&result)),
	)
}

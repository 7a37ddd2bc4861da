//go:build !linux && !windows

package credential

import "runtime"

// NativeAvailable is false: the auto backend always uses the fallback file.
const NativeAvailable = false

// NativeBackend reports ErrUnsupported: this platform has no per-user
// environment store, so callers fall back to FallbackFile.
func NativeBackend(func() (string, error)) Backend {
	return unsupportedBackend{platform: runtime.GOOS}
}

package credential

// NativeAvailable reports whether this platform has a per-user environment
// store, so the auto backend never reaches the fallback file.
const NativeAvailable = true

// NativeBackend returns the per-user environment store for Windows, the
// HKCU\Environment registry key. configDir is unused.
func NativeBackend(func() (string, error)) Backend {
	return RegistryBackend{}
}

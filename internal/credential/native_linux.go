package credential

// NativeAvailable reports whether this platform has a per-user environment
// store, so the auto backend never reaches the fallback file.
const NativeAvailable = true

// NativeBackend returns the per-user environment store for Linux: a
// systemd environment.d drop-in, imported into the user session at login.
func NativeBackend(configDir func() (string, error)) Backend {
	return EnvironmentD(configDir)
}

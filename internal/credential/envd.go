package credential

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvironmentD returns a backend writing systemd environment.d drop-ins
// under <configDir>/environment.d. Values are quoted so the user manager
// imports them literally.
func EnvironmentD(configDir func() (string, error)) *EnvFileBackend {
	if configDir == nil {
		configDir = os.UserConfigDir
	}
	return &EnvFileBackend{
		Label: "systemd user environment",
		Path: func(name string) (string, error) {
			dir, err := configDir()
			if err != nil {
				return "", fmt.Errorf("determining config directory: %w", err)
			}
			return filepath.Join(dir, "environment.d", "60-"+strings.ToLower(name)+".conf"), nil
		},
		Encode: quoteEnvironmentD,
		Decode: unquoteEnvironmentD,
	}
}

// quoteEnvironmentD encodes value for an environment.d assignment. systemd
// expands $VAR and ${VAR:-x} after quote removal, so every $ is doubled.
// Single quotes keep backslashes and double quotes literal; a value holding
// a single quote is double-quoted with \ and " escaped instead.
func quoteEnvironmentD(value string) string {
	value = strings.ReplaceAll(value, "$", "$$")
	if !strings.Contains(value, "'") {
		return "'" + value + "'"
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(value) + `"`
}

// unquoteEnvironmentD reverses quoteEnvironmentD. Unquoted values, as
// written by hand, only have $$ collapsed.
func unquoteEnvironmentD(raw string) string {
	switch {
	case len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'':
		raw = raw[1 : len(raw)-1]
	case len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"':
		inner := raw[1 : len(raw)-1]
		var b strings.Builder
		for i := 0; i < len(inner); i++ {
			if inner[i] == '\\' && i+1 < len(inner) {
				i++
			}
			b.WriteByte(inner[i])
		}
		raw = b.String()
	}
	return strings.ReplaceAll(raw, "$$", "$")
}

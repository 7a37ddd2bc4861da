package credential

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
)

// DefaultName is the variable provisioned when no other name is configured.
const DefaultName = "SERPAPI_KEY"

// DefaultInputEnv is the environment variable read for scripted provisioning.
const DefaultInputEnv = "SERPAPI_KEY_INPUT"

// Scope is the visibility boundary of a persisted variable.
type Scope int

const (
	// CurrentUser limits the variable to the invoking user.
	CurrentUser Scope = iota
)

func (s Scope) String() string {
	switch s {
	case CurrentUser:
		return "user"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

const redacted = "[redacted]"

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateName reports whether name can be used as an environment variable.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// SecretEntry is a named secret on its way to a backend.
// Formatting an entry with %v, %+v, %#v or through zap never prints Value.
type SecretEntry struct {
	Name  string
	Value string
	Scope Scope
}

// NewEntry validates name and the trimmed raw value and builds a
// CurrentUser entry.
func NewEntry(name, raw string) (SecretEntry, error) {
	if err := ValidateName(name); err != nil {
		return SecretEntry{}, err
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return SecretEntry{}, ErrEmptyInput
	}
	if strings.ContainsAny(value, "\r\n\x00") {
		return SecretEntry{}, ErrInvalidValue
	}
	return SecretEntry{Name: name, Value: value, Scope: CurrentUser}, nil
}

func (e SecretEntry) String() string {
	return e.Name + "=" + redacted
}

func (e SecretEntry) GoString() string {
	return fmt.Sprintf("credential.SecretEntry{Name:%q, Value:%q, Scope:%s}", e.Name, redacted, e.Scope)
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e SecretEntry) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("name", e.Name)
	enc.AddString("scope", e.Scope.String())
	enc.AddBool("empty", e.Value == "")
	return nil
}

// Scrub replaces every occurrence of secret in text, including its
// %q-escaped form.
func Scrub(text, secret string) string {
	if secret == "" {
		return text
	}
	text = strings.ReplaceAll(text, secret, redacted)
	if quoted := strconv.Quote(secret); quoted[1:len(quoted)-1] != secret {
		text = strings.ReplaceAll(text, quoted[1:len(quoted)-1], redacted)
	}
	return text
}

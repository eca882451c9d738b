// Package featureflags evaluates on/off switches supplied through FEATURE_FLAGS.
package featureflags

import "strings"

// Known flags.
const (
	// RegisterAdminRole lets /register honour role=ADMIN in the payload.
	RegisterAdminRole = "register_admin_role"
	// BasicAuth accepts HTTP Basic credentials alongside bearer tokens.
	BasicAuth = "basic_auth"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "register_admin_role=off,basic_auth=on"
type Manager struct {
	flags map[string]bool
}

// Defaults returns the flag values used when FEATURE_FLAGS does not mention a flag.
func Defaults(development bool) map[string]bool {
	return map[string]bool{
		RegisterAdminRole: development,
		BasicAuth:         true,
	}
}

// NewManager parses raw over defaults. Pairs that do not parse are ignored.
func NewManager(raw string, defaults map[string]bool) *Manager {
	out := make(map[string]bool, len(defaults))
	for k, v := range defaults {
		out[normalize(k)] = v
	}

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = normalize(key)
		if key == "" {
			continue
		}
		switch normalize(value) {
		case "on", "true", "1":
			out[key] = true
		case "off", "false", "0":
			out[key] = false
		}
	}

	return &Manager{flags: out}
}

// Enabled reports whether name is switched on. Unknown flags are off.
func (m *Manager) Enabled(name string) bool {
	if m == nil {
		return false
	}
	return m.flags[normalize(name)]
}

// Snapshot returns a copy of every evaluated flag.
func (m *Manager) Snapshot() map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

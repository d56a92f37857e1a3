package types

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"
)

// Config is the core's input, produced by the config loader from
// .veendor.yaml plus environment and flags.
type Config struct {
	// Backends is the ordered chain. Order is significant: earlier
	// entries are preferred for pull and repaired via push on a miss.
	Backends []BackendConfig `yaml:"backends"`

	// UseGitHistory activates the history walker when Depth > 0.
	UseGitHistory *GitHistory `yaml:"useGitHistory,omitempty"`

	// FallbackToNpm permits a full native install when every backend
	// and the history walk came up empty.
	FallbackToNpm bool `yaml:"fallbackToNpm,omitempty"`

	// PackageHash is an operator-controlled salt folded into every
	// fingerprint. Changing it invalidates all caches at once.
	PackageHash map[string]any `yaml:"packageHash,omitempty"`
}

type GitHistory struct {
	Depth int `yaml:"depth"`
}

// BackendConfig is one backend descriptor as declared in config.
// Options stays an undecoded yaml node; each backend implementation
// decodes and validates its own options record.
type BackendConfig struct {
	Alias       string    `yaml:"alias"`
	Backend     string    `yaml:"backend"`
	Push        bool      `yaml:"push,omitempty"`
	PushMayFail bool      `yaml:"pushMayFail,omitempty"`
	Options     yaml.Node `yaml:"options,omitempty"`
}

// Validate checks the structural invariants the engine relies on:
// a non-empty chain, unique aliases, a non-negative history depth.
func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("config must declare at least one backend")
	}
	seen := map[string]struct{}{}
	for _, backend := range c.Backends {
		alias := strings.TrimSpace(backend.Alias)
		if alias == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("backend alias must not be empty")
		}
		if _, dup := seen[alias]; dup {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("backend alias duplicated: " + alias)
		}
		seen[alias] = struct{}{}
		if strings.TrimSpace(backend.Backend) == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("backend kind must not be empty for alias " + alias)
		}
	}
	if c.UseGitHistory != nil && c.UseGitHistory.Depth < 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("useGitHistory.depth must not be negative")
	}
	return nil
}

// HistoryDepth returns the configured history depth, zero when the
// walker is not configured.
func (c Config) HistoryDepth() int {
	if c.UseGitHistory == nil {
		return 0
	}
	return c.UseGitHistory.Depth
}

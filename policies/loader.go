package policies

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/marcelsud/wallet-connector/retry"
	"gopkg.in/yaml.v3"
)

/* Loader manages retry policy configuration from policies.yaml
 * Provides in-memory lookup with built-in defaults for missing names
 */

const (
	Upstream = "upstream"
	Callback = "callback"
)

// Config represents the structure of policies.yaml
type Config struct {
	Policies []PolicyConfig `yaml:"policies"`
}

// PolicyConfig represents a single policy in the YAML file
type PolicyConfig struct {
	Name              string  `yaml:"name"`
	MaxAttempts       int     `yaml:"max_attempts"`
	BaseDelayMS       int     `yaml:"base_delay_ms"`
	MaxDelayMS        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
}

// Loader holds the loaded policies
type Loader struct {
	policies map[string]retry.Policy
}

// NewLoader creates a loader pre-populated with the built-in policies
func NewLoader() *Loader {
	return &Loader{
		policies: map[string]retry.Policy{
			Upstream: retry.UpstreamPolicy(),
			Callback: retry.CallbackPolicy(),
		},
	}
}

// Load reads and parses the policies file, overriding defaults by name
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading policies file: %w", err)
	}
	return l.Parse(data)
}

// Parse parses YAML policy definitions
func (l *Loader) Parse(data []byte) error {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing policies YAML: %w", err)
	}

	seen := make(map[string]bool)
	loaded := make(map[string]retry.Policy)
	for _, pc := range config.Policies {
		if pc.Name == "" {
			return fmt.Errorf("validating policy: name cannot be empty")
		}
		if seen[pc.Name] {
			return fmt.Errorf("validating policy: duplicate name %s", pc.Name)
		}
		seen[pc.Name] = true

		multiplier := pc.BackoffMultiplier
		if multiplier == 0 {
			multiplier = 2
		}
		policy := retry.Policy{
			MaxAttempts:       pc.MaxAttempts,
			BaseDelay:         time.Duration(pc.BaseDelayMS) * time.Millisecond,
			MaxDelay:          time.Duration(pc.MaxDelayMS) * time.Millisecond,
			BackoffMultiplier: multiplier,
		}
		if err := policy.Validate(); err != nil {
			return fmt.Errorf("validating policy %s: %w", pc.Name, err)
		}
		loaded[pc.Name] = policy
	}

	for name, policy := range loaded {
		l.policies[name] = policy
	}
	return nil
}

// Get retrieves a policy by name
func (l *Loader) Get(name string) (retry.Policy, error) {
	policy, exists := l.policies[name]
	if !exists {
		return retry.Policy{}, fmt.Errorf("policy not found: %s", name)
	}
	return policy, nil
}

// MustGet retrieves a policy by name, falling back to the upstream default
func (l *Loader) MustGet(name string) retry.Policy {
	if policy, err := l.Get(name); err == nil {
		return policy
	}
	return retry.UpstreamPolicy()
}

// Names returns the loaded policy names in lexical order
func (l *Loader) Names() []string {
	names := make([]string, 0, len(l.policies))
	for name := range l.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

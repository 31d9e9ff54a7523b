package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"sdr_agent/pkg/core/llm"
)

// Config routes agent roles (researcher, scorer, writer) to providers.
type Config struct {
	ActiveProvider string                `yaml:"active_provider"`
	Agents         map[string]RoleConfig `yaml:"agents"`
}

// RoleConfig optionally overrides the provider for one agent role.
type RoleConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Description string `yaml:"description"`
}

// LoadConfig reads a YAML routing file. A missing file yields the default
// routing (everything on the active provider).
func LoadConfig(path string) (Config, error) {
	cfg := Config{ActiveProvider: "openai"}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read agent config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse agent config: %w", err)
	}
	if cfg.ActiveProvider == "" {
		cfg.ActiveProvider = "openai"
	}
	return cfg, nil
}

// Manager holds the provider registry and resolves roles to providers.
type Manager struct {
	config    Config
	providers map[string]llm.Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"openai": &llm.OpenAIProvider{},
			"gemini": &llm.GeminiProvider{},
		},
	}
}

// Register adds or replaces a named provider. Tests use this to install
// the static stub.
func (m *Manager) Register(name string, p llm.Provider) {
	m.providers[name] = p
}

// GetProvider resolves the provider for an agent role: role override first,
// then the global active provider, then openai.
func (m *Manager) GetProvider(role string) llm.Provider {
	if roleCfg, ok := m.config.Agents[role]; ok && roleCfg.Provider != "" {
		if p, ok := m.providers[roleCfg.Provider]; ok {
			return p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return m.providers["openai"]
}

// SetGlobalProvider switches the active provider for all roles.
func (m *Manager) SetGlobalProvider(name string) error {
	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("provider %s not found", name)
	}
	m.config.ActiveProvider = name
	return nil
}

func (m *Manager) ActiveProvider() string {
	return m.config.ActiveProvider
}

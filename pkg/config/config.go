package config

import (
	"fmt"
	"os"
)

// ConfigurationError indicates a required key is missing for the one
// mandatory dependency (text generation). All other missing keys degrade
// the affected integration to demo mode instead.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %v", e.Missing)
}

// OpenAIConfig holds text-generation API settings.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // OpenAI-compatible endpoints; empty means api.openai.com
}

// SalesforceConfig holds Salesforce credentials.
type SalesforceConfig struct {
	Username      string
	Password      string
	SecurityToken string
	InstanceURL   string
}

func (c SalesforceConfig) Configured() bool {
	return c.Username != "" && c.Password != "" && c.SecurityToken != ""
}

// HubSpotConfig holds the HubSpot private-app token.
type HubSpotConfig struct {
	APIKey string
}

// EmailConfig holds SendGrid settings.
type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
}

func (c EmailConfig) Configured() bool {
	return c.SendGridAPIKey != "" && c.FromEmail != ""
}

// AgentConfig holds cosmetic identity inserted into message signatures.
type AgentConfig struct {
	AgentName   string
	CompanyName string
}

// Config is the full environment-backed configuration surface.
// Load .env with godotenv at the cmd boundary before calling Load.
type Config struct {
	OpenAI     OpenAIConfig
	GeminiKey  string
	Salesforce SalesforceConfig
	HubSpot    HubSpotConfig
	Email      EmailConfig
	Agent      AgentConfig
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   getenvDefault("OPENAI_MODEL", "gpt-4"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
		},
		GeminiKey: os.Getenv("GEMINI_API_KEY"),
		Salesforce: SalesforceConfig{
			Username:      os.Getenv("SALESFORCE_USERNAME"),
			Password:      os.Getenv("SALESFORCE_PASSWORD"),
			SecurityToken: os.Getenv("SALESFORCE_SECURITY_TOKEN"),
			InstanceURL:   os.Getenv("SALESFORCE_INSTANCE_URL"),
		},
		HubSpot: HubSpotConfig{
			APIKey: os.Getenv("HUBSPOT_API_KEY"),
		},
		Email: EmailConfig{
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			FromEmail:      os.Getenv("SENDGRID_FROM_EMAIL"),
		},
		Agent: AgentConfig{
			AgentName:   getenvDefault("SDR_AGENT_NAME", "AI SDR Agent"),
			CompanyName: getenvDefault("SDR_AGENT_COMPANY", "Your Company"),
		},
	}
}

// MissingRequired reports absent keys without which no useful work is
// possible. Only the generation key is mandatory.
func (c *Config) MissingRequired() []string {
	var missing []string
	if c.OpenAI.APIKey == "" && c.GeminiKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	return missing
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

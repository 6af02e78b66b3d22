package config

import "time"

// SupplierConfig configures the external question supplier. Groq is tried
// first, OpenAI is the fallback; both speak the same chat-completions API.
type SupplierConfig struct {
	GroqAPIKey   string `json:"-"` // Never serialize
	OpenAIAPIKey string `json:"-"`
	GroqURL      string `json:"groqUrl"`
	OpenAIURL    string `json:"openAiUrl"`
	GroqModel    string `json:"groqModel"`
	OpenAIModel  string `json:"openAiModel"`
	Timeout      time.Duration
}

// DefaultSupplierConfig returns the env-driven supplier configuration
func DefaultSupplierConfig() SupplierConfig {
	return SupplierConfig{
		GroqAPIKey:   getEnv("GROQ_API_KEY", ""),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		GroqURL:      getEnv("GROQ_URL", "https://api.groq.com/openai/v1/chat/completions"),
		OpenAIURL:    getEnv("OPENAI_URL", "https://api.openai.com/v1/chat/completions"),
		GroqModel:    getEnv("GROQ_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		Timeout:      getDuration("SUPPLIER_TIMEOUT", 10*time.Second),
	}
}

// IsEnabled returns true if at least one upstream API is configured
func (c *SupplierConfig) IsEnabled() bool {
	return c.GroqAPIKey != "" || c.OpenAIAPIKey != ""
}

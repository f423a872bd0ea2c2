package llm

// DefaultModel is the model used for structured extraction.
const DefaultModel = "gemini-2.5-flash"

// Config holds LLM client settings.
type Config struct {
	Model string `json:"model"`
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{Model: DefaultModel}
}

package config

import "os"

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// QuestionGen is for assessment question generation (blocks session start)
	QuestionGen string `json:"questionGen"`

	// Grading is for per-answer open-response grading (needs to be fast)
	Grading string `json:"grading"`

	// Curriculum is for learning path generation (quality over speed)
	Curriculum string `json:"curriculum"`

	// Mentor is for tutor chat replies
	Mentor string `json:"mentor"`

	// Validator is for code review verdicts
	Validator string `json:"validator"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string       `json:"-"` // Never serialize
	BaseURL   string       `json:"baseUrl"`
	Models    GeminiModels `json:"models"`
	TimeoutMS int          `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: GeminiModels{
			// Fast models for in-session operations
			QuestionGen: getEnvOrDefault("GEMINI_MODEL_QUESTIONS", "gemini-2.5-flash-preview-05-20"),
			Grading:     getEnvOrDefault("GEMINI_MODEL_GRADING", "gemini-2.5-flash-preview-05-20"),
			Mentor:      getEnvOrDefault("GEMINI_MODEL_MENTOR", "gemini-2.0-flash"),

			// Quality models for non-blocking tasks
			Curriculum: getEnvOrDefault("GEMINI_MODEL_CURRICULUM", "gemini-2.0-flash"),
			Validator:  getEnvOrDefault("GEMINI_MODEL_VALIDATOR", "gemini-2.0-flash"),
		},
		TimeoutMS: 15000,
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

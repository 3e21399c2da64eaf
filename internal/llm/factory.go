package llm

import (
	"fmt"
	"strings"

	"github.com/decoda/decoda/internal/model"
)

// NewProvider creates a provider from configuration. An empty provider name
// disables generation; the pipeline then runs in similarity-only mode.
func NewProvider(config model.LLMConfig) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai", "sonar":
		return NewOpenAIProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, sonar)", config.Provider)
	}
}

package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/college-hq/advising-engine/pkg/config"
)

// NewFromConfig creates the configured provider's client.
func NewFromConfig(cfg *config.AIConfig, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIClient(cfg, logger)
	case "anthropic":
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", cfg.Provider)
	}
}

// Package llm wraps the Gemini API behind a small client used for outreach content generation.
package llm

import "time"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short utility calls: email extraction, note shortening
	TierLite ModelTier = "lite"
	// TierStandard is the fallback for tiers without their own model
	TierStandard ModelTier = "standard"
	// TierAdvanced is for tailoring the full content bundle
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultTemperature keeps generated content close to the applicant's templates.
const DefaultTemperature float32 = 0.2

// DefaultCallTimeout bounds a single generation request.
const DefaultCallTimeout = 2 * time.Minute

// DefaultSystemInstruction frames every request as job application writing.
const DefaultSystemInstruction = "You write concise, professional job application material for the applicant. " +
	"Never invent experience the applicant did not provide. Follow the requested output format exactly."

// Config holds the model configuration for the application
type Config struct {
	Provider          Provider
	Models            map[ModelTier]string
	Temperature       float32
	CallTimeout       time.Duration // zero disables the per-call timeout
	SystemInstruction string
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature:       DefaultTemperature,
		CallTimeout:       DefaultCallTimeout,
		SystemInstruction: DefaultSystemInstruction,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the Config using model for tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := *c
	out.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		out.Models[k] = v
	}
	out.Models[tier] = model
	return &out
}

// Package llm abstracts the generative completion collaborator. The rest of
// the pipeline treats its output as untrusted text to be verified, never as
// ground truth.
package llm

import (
	"context"

	"github.com/decoda/decoda/internal/model"
)

// Provider defines the interface for completion backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces a completion for the request
	Generate(ctx context.Context, req Request) (*model.Generation, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Request is one completion call
type Request struct {
	// System sets the assistant's role and constraints
	System string

	// Prompt is the user-facing query text, already normalized
	Prompt string

	// Context carries session context lines prepended to the prompt
	Context []string

	// Model overrides the configured model when set
	Model string

	// MaxTokens limits the response length; 0 uses the configured default
	MaxTokens int
}

// SystemPrompt is the fixed role given to the backend. Answers are grounded
// in the official scheme sources and always cite them.
const SystemPrompt = "You are an assistant answering questions about the NDIS " +
	"(National Disability Insurance Scheme). Base answers on official sources " +
	"(ndis.gov.au, dss.gov.au, ndiscommission.gov.au) and list source URLs at " +
	"the end under a Sources: heading. If you are unsure, say so explicitly."

// Package llm relays prompts to an OpenAI-compatible chat-completion endpoint.
package llm

import "context"

// ChatRequest is a single-turn completion request
type ChatRequest struct {
	System      string
	User        string
	Temperature *float32 // nil leaves the endpoint default
	TopP        *float32
}

// ChatClient completes a prompt and returns the first choice
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// Float32 returns a pointer to v
func Float32(v float32) *float32 {
	return &v
}

package llm

import (
	"context"
	"fmt"
	"sync"
)

// StaticProvider returns canned responses in order. Used as the
// deterministic stub in tests and demo mode.
type StaticProvider struct {
	Responses []string
	Err       error

	mu    sync.Mutex
	calls int
}

var _ Provider = (*StaticProvider)(nil)

func (p *StaticProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Responses) == 0 {
		return "", fmt.Errorf("static provider has no responses configured")
	}
	resp := p.Responses[p.calls%len(p.Responses)]
	p.calls++
	return resp, nil
}

// Calls reports how many times the provider was invoked.
func (p *StaticProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

package llm

import (
	"context"
)

// Provider is the narrow text-completion capability: prompt in, text out.
// Tests substitute StaticProvider instead of a live network call.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// JSONMode returns the options map requesting a JSON object response.
func JSONMode() map[string]interface{} {
	return map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	}
}

func wantsJSON(options map[string]interface{}) bool {
	val, ok := options["response_format"].(map[string]interface{})
	return ok && val["type"] == "json_object"
}

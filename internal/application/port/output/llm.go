package output

import (
	"context"

	"voice-browser/internal/domain/entity"
)

// TextCompleter is the text-generation capability. Output may be unusable;
// callers validate it.
type TextCompleter interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type LLMPort interface {
	TextCompleter
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	Messages    []entity.Message
	Temperature float32
}

type ChatResponse struct {
	Message entity.Message
}

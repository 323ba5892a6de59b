package ports

import (
	"context"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

type ChatMessage struct {
	Role    string
	Content string
}

// CompletionInput is a chat completion request from an authenticated caller.
type CompletionInput struct {
	AccountID int64
	KeyID     int64
	Model     string
	Messages  []ChatMessage
}

type CompletionResult struct {
	ID               string
	Model            string
	Created          int64
	Reply            ChatMessage
	FinishReason     string
	PromptTokens     int64
	CompletionTokens int64
}

// UsageSink accepts usage for asynchronous recording.
type UsageSink interface {
	Enqueue(usage UsageInput)
}

type ChatService interface {
	Models() []domain.Model
	Complete(ctx context.Context, input CompletionInput) (*CompletionResult, error)
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lumen-ai/api-platform/internal/core/domain"
	"github.com/lumen-ai/api-platform/internal/core/ports"
)

const (
	minPromptTokens      = 10
	baseCompletionTokens = 50
	completionTokenRange = 200
)

// ChatService serves canned completions and reports their usage.
type ChatService struct {
	usage  ports.UsageSink
	gen    *Generator
	now    func() time.Time
	logger zerolog.Logger
}

func NewChatService(usage ports.UsageSink, gen *Generator, logger zerolog.Logger) *ChatService {
	if gen == nil {
		gen = NewGenerator(nil)
	}
	return &ChatService{usage: usage, gen: gen, now: time.Now, logger: logger}
}

func (s *ChatService) Models() []domain.Model {
	out := make([]domain.Model, len(domain.Catalog))
	copy(out, domain.Catalog)
	return out
}

func (s *ChatService) Complete(ctx context.Context, input ports.CompletionInput) (*ports.CompletionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model := domain.LookupModel(input.Model)

	extra, err := s.gen.Intn(completionTokenRange)
	if err != nil {
		return nil, fmt.Errorf("sample completion length: %w", err)
	}

	result := &ports.CompletionResult{
		ID:               "chatcmpl-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24],
		Model:            model.ID,
		Created:          s.now().Unix(),
		Reply:            ports.ChatMessage{Role: "assistant", Content: cannedReply(input.Messages)},
		FinishReason:     "stop",
		PromptTokens:     estimatePromptTokens(input.Messages),
		CompletionTokens: int64(baseCompletionTokens + extra),
	}

	if s.usage != nil {
		s.usage.Enqueue(ports.UsageInput{
			AccountID:        input.AccountID,
			KeyID:            input.KeyID,
			Model:            model.ID,
			PromptTokens:     result.PromptTokens,
			CompletionTokens: result.CompletionTokens,
		})
	}
	return result, nil
}

// estimatePromptTokens approximates four characters per token plus a fixed
// per-message overhead.
func estimatePromptTokens(messages []ports.ChatMessage) int64 {
	var total int64
	for _, m := range messages {
		total += int64(len(m.Content)/4 + 10)
	}
	if total < minPromptTokens {
		return minPromptTokens
	}
	return total
}

func cannedReply(messages []ports.ChatMessage) string {
	last := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			last = strings.ToLower(messages[i].Content)
			break
		}
	}

	switch {
	case strings.Contains(last, "hello") || strings.Contains(last, "hi"):
		return "Hello! I'm an AI assistant. How can I help you today?"
	case strings.Contains(last, "code") || strings.Contains(last, "programming"):
		return "Sure, I can help with code. Share the language and what you are trying to build, and I'll walk you through it."
	default:
		return "This is a simulated response from the model. Your message has been received and processed."
	}
}

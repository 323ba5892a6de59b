package service

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lumen-ai/api-platform/internal/core/domain"
	"github.com/lumen-ai/api-platform/internal/core/ports"
)

func TestChatService_Complete(t *testing.T) {
	sink := &stubSink{}
	svc := NewChatService(sink, NewGenerator(nil), zerolog.Nop())

	res, err := svc.Complete(context.Background(), ports.CompletionInput{
		AccountID: 3,
		KeyID:     9,
		Model:     "deepseek-coder",
		Messages: []ports.ChatMessage{
			{Role: "system", Content: "You are helpful."},
			{Role: "user", Content: "Help me with some code please"},
		},
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	if !strings.HasPrefix(res.ID, "chatcmpl-") || len(res.ID) != len("chatcmpl-")+24 {
		t.Fatalf("unexpected completion id %q", res.ID)
	}
	if res.Model != "deepseek-coder" {
		t.Fatalf("expected model deepseek-coder, got %q", res.Model)
	}
	if res.Reply.Role != "assistant" || !strings.Contains(res.Reply.Content, "code") {
		t.Fatalf("unexpected reply: %+v", res.Reply)
	}
	wantPrompt := int64(len("You are helpful.")/4 + 10 + len("Help me with some code please")/4 + 10)
	if res.PromptTokens != wantPrompt {
		t.Fatalf("prompt tokens = %d, want %d", res.PromptTokens, wantPrompt)
	}
	if res.CompletionTokens < 50 || res.CompletionTokens >= 250 {
		t.Fatalf("completion tokens %d outside [50, 250)", res.CompletionTokens)
	}

	if len(sink.queued) != 1 {
		t.Fatalf("expected one queued usage event, got %d", len(sink.queued))
	}
	want := ports.UsageInput{
		AccountID:        3,
		KeyID:            9,
		Model:            "deepseek-coder",
		PromptTokens:     res.PromptTokens,
		CompletionTokens: res.CompletionTokens,
	}
	if sink.queued[0] != want {
		t.Fatalf("queued %+v, want %+v", sink.queued[0], want)
	}
}

func TestChatService_UnknownModelFallsBack(t *testing.T) {
	svc := NewChatService(nil, nil, zerolog.Nop())

	res, err := svc.Complete(context.Background(), ports.CompletionInput{Model: "gpt-9"})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if res.Model != domain.DefaultModelID {
		t.Fatalf("expected fallback to %q, got %q", domain.DefaultModelID, res.Model)
	}
	if res.PromptTokens != minPromptTokens {
		t.Fatalf("empty conversation must count %d prompt tokens, got %d", minPromptTokens, res.PromptTokens)
	}
}

func TestChatService_Models(t *testing.T) {
	svc := NewChatService(nil, nil, zerolog.Nop())
	models := svc.Models()
	if len(models) != 3 {
		t.Fatalf("expected 3 models, got %d", len(models))
	}
	for _, m := range models {
		if m.OwnedBy != "deepseek" {
			t.Errorf("model %s owned by %q", m.ID, m.OwnedBy)
		}
	}
}

func TestCannedReply(t *testing.T) {
	if got := cannedReply([]ports.ChatMessage{{Role: "user", Content: "Hello there"}}); !strings.Contains(got, "Hello") {
		t.Fatalf("greeting reply missing: %q", got)
	}
	if got := cannedReply([]ports.ChatMessage{{Role: "user", Content: "what is the weather"}}); !strings.Contains(got, "simulated") {
		t.Fatalf("fallback reply missing: %q", got)
	}
}

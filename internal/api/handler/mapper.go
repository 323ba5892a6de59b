package handler

import (
	"github.com/lumen-ai/api-platform/internal/core/domain"
	"github.com/lumen-ai/api-platform/internal/core/ports"
)

// modelsCreated is the fixed creation timestamp reported for catalog models.
const modelsCreated int64 = 1704067200

const tokenType = "Bearer"

// --- Domain → HTTP response ---

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Username:  a.Username,
		Balance:   a.Balance.StringFixed(2),
		AvatarURL: a.AvatarURL,
		CreatedAt: a.CreatedAt.UTC(),
	}
}

func toAPIKeyResponse(k *domain.APIKey) apiKeyResponse {
	resp := apiKeyResponse{
		ID:        k.ID,
		Name:      k.Name,
		KeyPrefix: k.KeyPrefix,
		Status:    string(k.Status),
		CreatedAt: k.CreatedAt.UTC(),
	}
	if k.LastUsedAt != nil {
		at := k.LastUsedAt.UTC()
		resp.LastUsedAt = &at
	}
	return resp
}

func toBindingResponse(i *domain.ExternalIdentity) bindingResponse {
	return bindingResponse{Provider: string(i.Provider), CreatedAt: i.CreatedAt.UTC()}
}

func toUsageResponse(u *domain.UsageStats) usageResponse {
	return usageResponse{
		TotalTokens:      u.TotalTokens,
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		RequestCount:     u.RequestCount,
	}
}

func toBillingRecordResponse(r *domain.BillingRecord) billingRecordResponse {
	return billingRecordResponse{
		ID:           r.ID,
		Type:         string(r.Type),
		Amount:       r.Amount.StringFixed(2),
		BalanceAfter: r.BalanceAfter.StringFixed(2),
		Description:  r.Description,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

func toModelList(models []domain.Model) modelListResponse {
	data := make([]modelResponse, 0, len(models))
	for _, m := range models {
		data = append(data, modelResponse{ID: m.ID, Object: "model", Created: modelsCreated, OwnedBy: m.OwnedBy})
	}
	return modelListResponse{Object: "list", Data: data}
}

func toCompletionResponse(r *ports.CompletionResult) chatCompletionResponse {
	return chatCompletionResponse{
		ID:      r.ID,
		Object:  "chat.completion",
		Created: r.Created,
		Model:   r.Model,
		Choices: []chatChoice{{
			Index:        0,
			Message:      chatMessage{Role: r.Reply.Role, Content: r.Reply.Content},
			FinishReason: r.FinishReason,
		}},
		Usage: chatUsage{
			PromptTokens:     r.PromptTokens,
			CompletionTokens: r.CompletionTokens,
			TotalTokens:      r.PromptTokens + r.CompletionTokens,
		},
	}
}

// --- HTTP request → service input ---

func toCompletionInput(req chatCompletionRequest, caller callerIdentity) ports.CompletionInput {
	msgs := make([]ports.ChatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, ports.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return ports.CompletionInput{
		AccountID: caller.AccountID,
		KeyID:     caller.KeyID,
		Model:     req.Model,
		Messages:  msgs,
	}
}

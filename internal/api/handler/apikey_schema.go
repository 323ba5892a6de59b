package handler

import "time"

type createAPIKeyRequest struct {
	Name string `json:"name" validate:"max=64"`
}

type updateAPIKeyStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active disabled"`
}

type apiKeyResponse struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	KeyPrefix  string     `json:"key_prefix"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// createdAPIKeyResponse carries the raw key. It is only ever returned once.
type createdAPIKeyResponse struct {
	apiKeyResponse
	Key string `json:"key"`
}

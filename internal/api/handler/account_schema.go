package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Request types ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=32"`
	Email    string `json:"email"    validate:"omitempty,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6"`
}

// --- Response types ---

type accountResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Balance   string    `json:"balance"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	Token string          `json:"token"`
	Type  string          `json:"type"`
	User  accountResponse `json:"user"`
}

type authorizationURLResponse struct {
	URL string `json:"url"`
}

type oauthCallbackResponse struct {
	Outcome    string          `json:"outcome"`
	Token      string          `json:"token,omitempty"`
	Type       string          `json:"type,omitempty"`
	NewAccount bool            `json:"new_account"`
	User       accountResponse `json:"user"`
}

type bindingResponse struct {
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumen-ai/api-platform/internal/api/metrics"
	"github.com/lumen-ai/api-platform/internal/core/ports"
)

// ChatHandler serves the OpenAI-compatible /v1 endpoints.
type ChatHandler struct {
	service ports.ChatService
}

func NewChatHandler(service ports.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Models handles GET /v1/models.
//
// @Summary      List models
// @Tags         v1
// @Produce      json
// @Success      200  {object}  modelListResponse
// @Router       /v1/models [get]
func (h *ChatHandler) Models(c echo.Context) error {
	return c.JSON(http.StatusOK, toModelList(h.service.Models()))
}

// Completions handles POST /v1/chat/completions.
//
// @Summary      Create a chat completion
// @Tags         v1
// @Accept       json
// @Produce      json
// @Security     APIKeyAuth
// @Param        body  body      chatCompletionRequest  true  "Completion request"
// @Success      200   {object}  chatCompletionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /v1/chat/completions [post]
func (h *ChatHandler) Completions(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	var req chatCompletionRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if req.Stream {
		return echo.NewHTTPError(http.StatusBadRequest, "streaming is not supported")
	}

	result, err := h.service.Complete(c.Request().Context(), toCompletionInput(req, caller))
	if err != nil {
		return err
	}

	metrics.ChatCompletionsTotal.WithLabelValues(result.Model).Inc()
	metrics.ChatTokensTotal.WithLabelValues("prompt").Add(float64(result.PromptTokens))
	metrics.ChatTokensTotal.WithLabelValues("completion").Add(float64(result.CompletionTokens))

	return c.JSON(http.StatusOK, toCompletionResponse(result))
}

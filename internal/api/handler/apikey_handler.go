package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumen-ai/api-platform/internal/api/metrics"
	"github.com/lumen-ai/api-platform/internal/core/domain"
	"github.com/lumen-ai/api-platform/internal/core/ports"
)

// APIKeyHandler manages the caller's API keys.
type APIKeyHandler struct {
	service ports.APIKeyService
}

func NewAPIKeyHandler(service ports.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{service: service}
}

// List handles GET /api/api-keys.
//
// @Summary      List API keys
// @Tags         api-keys
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   apiKeyResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/api-keys [get]
func (h *APIKeyHandler) List(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}
	keys, err := h.service.List(c.Request().Context(), accountID)
	if err != nil {
		return err
	}

	resp := make([]apiKeyResponse, 0, len(keys))
	for _, k := range keys {
		resp = append(resp, toAPIKeyResponse(k))
	}
	return c.JSON(http.StatusOK, resp)
}

// Create handles POST /api/api-keys. The raw key appears only in this response.
//
// @Summary      Create an API key
// @Tags         api-keys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAPIKeyRequest  true  "Key name"
// @Success      201   {object}  createdAPIKeyResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/api-keys [post]
func (h *APIKeyHandler) Create(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}
	var req createAPIKeyRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	created, err := h.service.Create(c.Request().Context(), accountID, req.Name)
	if err != nil {
		return err
	}
	metrics.APIKeysCreatedTotal.Inc()

	return c.JSON(http.StatusCreated, createdAPIKeyResponse{
		apiKeyResponse: toAPIKeyResponse(created.Key),
		Key:            created.RawKey,
	})
}

// Delete handles DELETE /api/api-keys/:id.
//
// @Summary      Delete an API key
// @Tags         api-keys
// @Security     BearerAuth
// @Param        id   path  int  true  "Key id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/api-keys/{id} [delete]
func (h *APIKeyHandler) Delete(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), accountID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateStatus handles PATCH /api/api-keys/:id/status.
//
// @Summary      Enable or disable an API key
// @Tags         api-keys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                        true  "Key id"
// @Param        body  body      updateAPIKeyStatusRequest  true  "New status"
// @Success      200   {object}  apiKeyResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/api-keys/{id}/status [patch]
func (h *APIKeyHandler) UpdateStatus(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateAPIKeyStatusRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	key, err := h.service.SetStatus(c.Request().Context(), accountID, id, domain.APIKeyStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAPIKeyResponse(key))
}

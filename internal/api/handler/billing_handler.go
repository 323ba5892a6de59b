package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumen-ai/api-platform/internal/core/domain"
	"github.com/lumen-ai/api-platform/internal/core/ports"
)

type BillingHandler struct {
	service ports.BillingService
}

func NewBillingHandler(service ports.BillingService) *BillingHandler {
	return &BillingHandler{service: service}
}

// Usage handles GET /api/billing/usage.
//
// @Summary      Token usage totals
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usageResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/billing/usage [get]
func (h *BillingHandler) Usage(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}
	stats, err := h.service.Usage(c.Request().Context(), accountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUsageResponse(stats))
}

// Records handles GET /api/billing/records, newest first.
//
// @Summary      Billing records
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   billingRecordResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/billing/records [get]
func (h *BillingHandler) Records(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}
	records, err := h.service.Records(c.Request().Context(), accountID)
	if err != nil {
		return err
	}

	resp := make([]billingRecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, toBillingRecordResponse(r))
	}
	return c.JSON(http.StatusOK, resp)
}

// Recharge handles POST /api/billing/recharge. Payment capture is simulated.
//
// @Summary      Recharge balance
// @Tags         billing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      rechargeRequest  true  "Amount and payment method (alipay, wechat)"
// @Success      201   {object}  billingRecordResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/billing/recharge [post]
func (h *BillingHandler) Recharge(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}
	var req rechargeRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	method := domain.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = domain.PaymentAlipay
	}

	record, err := h.service.Recharge(c.Request().Context(), accountID, req.Amount, method)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toBillingRecordResponse(record))
}

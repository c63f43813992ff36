package handler

import (
	payoutapp "github.com/bazaar/backend/internal/application/payout"
	"github.com/gin-gonic/gin"
)

// PayoutHandler handles payout-related API endpoints. Generation and
// settlement are admin workflows.
type PayoutHandler struct {
	BaseHandler
	payoutService *payoutapp.PayoutService
}

// NewPayoutHandler creates a new PayoutHandler
func NewPayoutHandler(payoutService *payoutapp.PayoutService) *PayoutHandler {
	return &PayoutHandler{
		payoutService: payoutService,
	}
}

// Generate runs a payout generation sweep. Without a period_start the run
// covers the previous ISO week. Re-running for the same period with no new
// deliveries reports zero created payouts.
// POST /api/v1/payouts/generate
func (h *PayoutHandler) Generate(c *gin.Context) {
	var req payoutapp.GeneratePayoutsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.payoutService.Generate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID retrieves a payout by ID
// GET /api/v1/payouts/:id
func (h *PayoutHandler) GetByID(c *gin.Context) {
	payoutID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payout ID format")
		return
	}

	payout, err := h.payoutService.GetByID(c.Request.Context(), payoutID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payout)
}

// List lists payouts with filtering and pagination
// GET /api/v1/payouts
func (h *PayoutHandler) List(c *gin.Context) {
	var filter payoutapp.PayoutListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	payouts, total, err := h.payoutService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, payouts, total, filter.Page, filter.PageSize)
}

// UpdateStatus drives a payout through its ledger states. Completing a
// payout settles its orders; failing it releases them for regeneration.
// PATCH /api/v1/payouts/:id/status
func (h *PayoutHandler) UpdateStatus(c *gin.Context) {
	payoutID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payout ID format")
		return
	}

	var req payoutapp.UpdatePayoutStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payout, err := h.payoutService.UpdateStatus(c.Request.Context(), payoutID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payout)
}

// Adjust applies a signed manual correction to a non-terminal payout
// POST /api/v1/payouts/:id/adjustments
func (h *PayoutHandler) Adjust(c *gin.Context) {
	payoutID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payout ID format")
		return
	}

	var req payoutapp.AdjustPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payout, err := h.payoutService.Adjust(c.Request.Context(), payoutID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payout)
}

package handler

import (
	sellerapp "github.com/bazaar/backend/internal/application/seller"
	"github.com/gin-gonic/gin"
)

// SellerHandler handles seller account API endpoints
type SellerHandler struct {
	BaseHandler
	sellerService *sellerapp.SellerService
}

// NewSellerHandler creates a new SellerHandler
func NewSellerHandler(sellerService *sellerapp.SellerService) *SellerHandler {
	return &SellerHandler{
		sellerService: sellerService,
	}
}

// Register creates a new seller in pending status
// POST /api/v1/sellers
func (h *SellerHandler) Register(c *gin.Context) {
	var req sellerapp.RegisterSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	seller, err := h.sellerService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, seller)
}

// GetByID retrieves a seller with their performance snapshot
// GET /api/v1/sellers/:id
func (h *SellerHandler) GetByID(c *gin.Context) {
	sellerID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid seller ID format")
		return
	}

	seller, err := h.sellerService.GetByID(c.Request.Context(), sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, seller)
}

// Approve makes the seller eligible for routing and payouts
// POST /api/v1/sellers/:id/approve
func (h *SellerHandler) Approve(c *gin.Context) {
	sellerID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid seller ID format")
		return
	}

	seller, err := h.sellerService.Approve(c.Request.Context(), sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, seller)
}

// Suspend removes the seller from routing and payout generation
// POST /api/v1/sellers/:id/suspend
func (h *SellerHandler) Suspend(c *gin.Context) {
	sellerID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid seller ID format")
		return
	}

	seller, err := h.sellerService.Suspend(c.Request.Context(), sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, seller)
}

// RecordPerformance upserts the seller's performance snapshot. The
// snapshot feeds routing as a read-only input; it is computed by an
// external aggregation step after deliveries.
// PUT /api/v1/sellers/:id/performance
func (h *SellerHandler) RecordPerformance(c *gin.Context) {
	sellerID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid seller ID format")
		return
	}

	var req sellerapp.RecordPerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	perf, err := h.sellerService.RecordPerformance(c.Request.Context(), sellerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, perf)
}

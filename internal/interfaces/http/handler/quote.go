package handler

import (
	routingapp "github.com/bazaar/backend/internal/application/routing"
	"github.com/gin-gonic/gin"
)

// QuoteHandler handles routing quote API endpoints
type QuoteHandler struct {
	BaseHandler
	routingService *routingapp.RoutingService
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(routingService *routingapp.RoutingService) *QuoteHandler {
	return &QuoteHandler{
		routingService: routingService,
	}
}

// Create routes a set of requested lines to the best seller per line and
// returns the priced result. Lines without a routable seller come back
// flagged as unavailable rather than failing the whole quote.
// POST /api/v1/quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	var req routingapp.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	quote, err := h.routingService.Quote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, quote)
}

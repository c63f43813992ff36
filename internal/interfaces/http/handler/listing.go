package handler

import (
	catalogapp "github.com/bazaar/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ListingHandler handles seller listing API endpoints
type ListingHandler struct {
	BaseHandler
	listingService *catalogapp.ListingService
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listingService *catalogapp.ListingService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
	}
}

// Create creates a new listing
// POST /api/v1/listings
func (h *ListingHandler) Create(c *gin.Context) {
	var req catalogapp.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	listing, err := h.listingService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, listing)
}

// GetByID retrieves a listing by ID
// GET /api/v1/listings/:id
func (h *ListingHandler) GetByID(c *gin.Context) {
	listingID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	listing, err := h.listingService.GetByID(c.Request.Context(), listingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, listing)
}

// ListBySeller lists all listings owned by a seller
// GET /api/v1/sellers/:id/listings
func (h *ListingHandler) ListBySeller(c *gin.Context) {
	sellerID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid seller ID format")
		return
	}

	listings, err := h.listingService.ListBySeller(c.Request.Context(), sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, listings)
}

// Update updates a listing's price, stock or active flag
// PATCH /api/v1/listings/:id
func (h *ListingHandler) Update(c *gin.Context) {
	listingID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	var req catalogapp.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	listing, err := h.listingService.Update(c.Request.Context(), listingID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, listing)
}

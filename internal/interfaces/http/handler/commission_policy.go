package handler

import (
	commissionapp "github.com/bazaar/backend/internal/application/commission"
	"github.com/gin-gonic/gin"
)

// CommissionPolicyHandler handles commission policy API endpoints
type CommissionPolicyHandler struct {
	BaseHandler
	policyService *commissionapp.PolicyService
}

// NewCommissionPolicyHandler creates a new CommissionPolicyHandler
func NewCommissionPolicyHandler(policyService *commissionapp.PolicyService) *CommissionPolicyHandler {
	return &CommissionPolicyHandler{
		policyService: policyService,
	}
}

// Get returns the active commission policy. When no policy row exists yet
// the built-in default policy is returned.
// GET /api/v1/commission-policy
func (h *CommissionPolicyHandler) Get(c *gin.Context) {
	policy, err := h.policyService.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, policy)
}

// Update changes the active commission policy. Rate changes never
// retroactively affect lines already routed; the rate is captured on the
// line at routing time.
// PUT /api/v1/commission-policy
func (h *CommissionPolicyHandler) Update(c *gin.Context) {
	var req commissionapp.UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	policy, err := h.policyService.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, policy)
}

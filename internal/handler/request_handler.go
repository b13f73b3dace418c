package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dms-api/internal/dto"
	"github.com/noah-isme/dms-api/internal/models"
	appErrors "github.com/noah-isme/dms-api/pkg/errors"
	"github.com/noah-isme/dms-api/pkg/response"
)

type approvalService interface {
	ListRequests(ctx context.Context, query dto.RequestQuery) (*dto.RequestList, error)
	Resolve(ctx context.Context, requestID string, decision models.Decision, reason, adminID string) (*models.ChangeRequest, error)
}

// RequestHandler exposes the change-request review endpoints.
type RequestHandler struct {
	approvals approvalService
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(approvals approvalService) *RequestHandler {
	return &RequestHandler{approvals: approvals}
}

// List godoc
// @Summary List change requests
// @Tags Requests
// @Produce json
// @Param status query string false "Filter by status (PENDING, APPROVED, REJECTED)"
// @Success 200 {object} dto.RequestList
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	result, err := h.approvals.ListRequests(c.Request.Context(), dto.RequestQuery{Status: c.Query("status")})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Approve godoc
// @Summary Approve a pending change request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} models.ChangeRequest
// @Router /requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.approvals.Resolve(c.Request.Context(), c.Param("id"), models.DecisionApprove, "", claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}

// Reject godoc
// @Summary Reject a pending change request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.RejectRequest false "Rejection reason"
// @Success 200 {object} models.ChangeRequest
// @Router /requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	// The reason body is optional; an absent or malformed body means no reason.
	var req dto.RejectRequest
	_ = c.ShouldBindJSON(&req)
	request, err := h.approvals.Resolve(c.Request.Context(), c.Param("id"), models.DecisionReject, req.Reason, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}

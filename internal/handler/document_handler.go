package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dms-api/internal/dto"
	"github.com/noah-isme/dms-api/internal/models"
	"github.com/noah-isme/dms-api/internal/service"
	appErrors "github.com/noah-isme/dms-api/pkg/errors"
	"github.com/noah-isme/dms-api/pkg/response"
)

type documentService interface {
	Create(ctx context.Context, req dto.CreateDocumentRequest, userID string) (*models.Document, error)
	List(ctx context.Context, query dto.DocumentQuery) (*models.DocumentPage, error)
	Get(ctx context.Context, id string) (*models.Document, error)
	Export(ctx context.Context, format string) (*service.ExportResult, error)
}

type approvalOpener interface {
	OpenRequest(ctx context.Context, docID string, reqType models.RequestType, fileURL, requesterID string) (*dto.OpenRequestResult, error)
}

// DocumentHandler exposes document metadata endpoints.
type DocumentHandler struct {
	documents documentService
	approvals approvalOpener
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(documents documentService, approvals approvalOpener) *DocumentHandler {
	return &DocumentHandler{documents: documents, approvals: approvals}
}

// Create godoc
// @Summary Register document metadata
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body dto.CreateDocumentRequest true "Document payload"
// @Success 201 {object} models.Document
// @Router /documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "title is required"))
		return
	}
	doc, err := h.documents.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// List godoc
// @Summary List documents with pagination and search
// @Tags Documents
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (max 50)"
// @Param q query string false "Search term"
// @Success 200 {object} models.DocumentPage
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	query := dto.DocumentQuery{Q: c.Query("q")}
	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			query.Page = page
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			query.Limit = limit
		}
	}
	result, err := h.documents.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Get godoc
// @Summary Document detail
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} models.Document
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc)
}

// RequestDelete godoc
// @Summary Open a delete request for a document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} dto.OpenRequestResult
// @Router /documents/{id} [delete]
func (h *DocumentHandler) RequestDelete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.approvals.OpenRequest(c.Request.Context(), c.Param("id"), models.RequestTypeDelete, "", claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// RequestReplace godoc
// @Summary Open a replace request for a document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.ReplaceDocumentRequest true "Replacement file"
// @Success 200 {object} dto.OpenRequestResult
// @Router /documents/{id}/replace [put]
func (h *DocumentHandler) RequestReplace(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ReplaceDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "fileUrl is required"))
		return
	}
	result, err := h.approvals.OpenRequest(c.Request.Context(), c.Param("id"), models.RequestTypeReplace, req.FileURL, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary Download the document register
// @Tags Documents
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Router /documents/export [get]
func (h *DocumentHandler) Export(c *gin.Context) {
	result, err := h.documents.Export(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

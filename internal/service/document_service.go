package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dms-api/internal/dto"
	"github.com/noah-isme/dms-api/internal/models"
	"github.com/noah-isme/dms-api/pkg/config"
	appErrors "github.com/noah-isme/dms-api/pkg/errors"
	"github.com/noah-isme/dms-api/pkg/export"
)

const (
	listLimitDefault = 10
	listLimitMax     = 50
)

type documentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error)
	All(ctx context.Context) ([]models.Document, error)
}

// ExportResult is a rendered document register ready for download.
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// DocumentService handles document metadata CRUD and listings.
type DocumentService struct {
	repo      documentStore
	cache     *CacheService
	validator *validator.Validate
	defaults  config.DocumentsConfig
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewDocumentService constructs the service.
func NewDocumentService(repo documentStore, cache *CacheService, validate *validator.Validate, defaults config.DocumentsConfig, logger *zap.Logger) *DocumentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.DefaultType == "" {
		defaults.DefaultType = "GENERAL"
	}
	if defaults.DefaultFileURL == "" {
		defaults.DefaultFileURL = "placeholder"
	}
	return &DocumentService{
		repo:      repo,
		cache:     cache,
		validator: validate,
		defaults:  defaults,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
	}
}

// Create registers new document metadata for the calling user.
func (s *DocumentService) Create(ctx context.Context, req dto.CreateDocumentRequest, userID string) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title is required")
	}
	doc := &models.Document{
		Title:        req.Title,
		Description:  req.Description,
		DocumentType: req.DocumentType,
		FileURL:      req.FileURL,
		Version:      1,
		Status:       models.DocumentStatusActive,
		Locked:       false,
		CreatedBy:    userID,
	}
	if doc.DocumentType == "" {
		doc.DocumentType = s.defaults.DefaultType
	}
	if doc.FileURL == "" {
		doc.FileURL = s.defaults.DefaultFileURL
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document")
	}
	s.invalidate(ctx)
	return doc, nil
}

// List returns a page of documents. The limit is clamped to [1, 50] and the
// page floored to 1; the search term matches title, description and type.
func (s *DocumentService) List(ctx context.Context, query dto.DocumentQuery) (*models.DocumentPage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = listLimitDefault
	}
	if limit > listLimitMax {
		limit = listLimitMax
	}
	search := strings.TrimSpace(query.Q)

	cacheKey := "documents:list:" + strconv.Itoa(page) + ":" + strconv.Itoa(limit) + ":" + strings.ToLower(search)
	if s.cache != nil {
		var cached models.DocumentPage
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	docs, total, err := s.repo.List(ctx, models.DocumentFilter{Search: search, Page: page, Limit: limit})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	if docs == nil {
		docs = []models.Document{}
	}
	result := &models.DocumentPage{Page: page, Limit: limit, Total: total, Items: docs}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, 0); err != nil {
			s.logger.Warn("failed to cache document page", zap.Error(err))
		}
	}
	return result, nil
}

// Get returns a single document by id.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

// Export renders the full document register as CSV or PDF.
func (s *DocumentService) Export(ctx context.Context, format string) (*ExportResult, error) {
	docs, err := s.repo.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load documents")
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Title", "Type", "Version", "Status", "File URL", "Created By", "Created At"},
		Rows:    make([]map[string]string, 0, len(docs)),
	}
	for _, doc := range docs {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":         doc.ID,
			"Title":      doc.Title,
			"Type":       doc.DocumentType,
			"Version":    strconv.Itoa(doc.Version),
			"Status":     string(doc.Status),
			"File URL":   doc.FileURL,
			"Created By": doc.CreatedBy,
			"Created At": doc.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}

	switch strings.ToLower(format) {
	case "", "csv":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Data: data, ContentType: "text/csv", Filename: "documents.csv"}, nil
	case "pdf":
		data, err := s.pdf.Render(dataset, "Document Register")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Data: data, ContentType: "application/pdf", Filename: "documents.pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format: %s", format))
	}
}

func (s *DocumentService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "documents:*"); err != nil {
		s.logger.Warn("failed to invalidate document cache", zap.Error(err))
	}
}

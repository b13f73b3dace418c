package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dms-api/internal/dto"
	"github.com/noah-isme/dms-api/internal/models"
	"github.com/noah-isme/dms-api/pkg/config"
	appErrors "github.com/noah-isme/dms-api/pkg/errors"
)

type documentListStub struct {
	created []*models.Document
	items   []models.Document
	total   int
	filter  models.DocumentFilter
}

func (s *documentListStub) Create(ctx context.Context, doc *models.Document) error {
	doc.ID = "doc-1"
	s.created = append(s.created, doc)
	return nil
}

func (s *documentListStub) GetByID(ctx context.Context, id string) (*models.Document, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *documentListStub) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	s.filter = filter
	return s.items, s.total, nil
}

func (s *documentListStub) All(ctx context.Context) ([]models.Document, error) {
	return s.items, nil
}

func TestDocumentServiceCreateAppliesDefaults(t *testing.T) {
	repo := &documentListStub{}
	svc := NewDocumentService(repo, nil, nil, config.DocumentsConfig{DefaultType: "GENERAL", DefaultFileURL: "placeholder"}, nil)

	doc, err := svc.Create(context.Background(), dto.CreateDocumentRequest{Title: "Handbook"}, "user-1")
	require.NoError(t, err)
	require.Equal(t, "GENERAL", doc.DocumentType)
	require.Equal(t, "placeholder", doc.FileURL)
	require.Equal(t, 1, doc.Version)
	require.Equal(t, models.DocumentStatusActive, doc.Status)
	require.False(t, doc.Locked)
	require.Equal(t, "user-1", doc.CreatedBy)
}

func TestDocumentServiceCreateRequiresTitle(t *testing.T) {
	svc := NewDocumentService(&documentListStub{}, nil, nil, config.DocumentsConfig{}, nil)

	_, err := svc.Create(context.Background(), dto.CreateDocumentRequest{}, "user-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDocumentServiceListClampsPagination(t *testing.T) {
	repo := &documentListStub{}
	svc := NewDocumentService(repo, nil, nil, config.DocumentsConfig{}, nil)

	result, err := svc.List(context.Background(), dto.DocumentQuery{Page: 0, Limit: 500, Q: "  plan  "})
	require.NoError(t, err)
	require.Equal(t, 1, result.Page)
	require.Equal(t, 50, result.Limit)
	require.Equal(t, 1, repo.filter.Page)
	require.Equal(t, 50, repo.filter.Limit)
	require.Equal(t, "plan", repo.filter.Search)
}

func TestDocumentServiceListDefaultsLimit(t *testing.T) {
	repo := &documentListStub{}
	svc := NewDocumentService(repo, nil, nil, config.DocumentsConfig{}, nil)

	result, err := svc.List(context.Background(), dto.DocumentQuery{Limit: -3})
	require.NoError(t, err)
	require.Equal(t, 10, result.Limit)
	require.NotNil(t, result.Items)
	require.Empty(t, result.Items)
}

func TestDocumentServiceGetUnknown(t *testing.T) {
	svc := NewDocumentService(&documentListStub{}, nil, nil, config.DocumentsConfig{}, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDocumentServiceExportCSV(t *testing.T) {
	repo := &documentListStub{items: []models.Document{
		{ID: "doc-1", Title: "Handbook", DocumentType: "GENERAL", Version: 2, Status: models.DocumentStatusActive, FileURL: "https://files.example/v2.pdf", CreatedBy: "user-1"},
	}}
	svc := NewDocumentService(repo, nil, nil, config.DocumentsConfig{}, nil)

	result, err := svc.Export(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "text/csv", result.ContentType)
	require.Equal(t, "documents.csv", result.Filename)
	body := string(result.Data)
	require.True(t, strings.HasPrefix(body, "ID,Title,Type,Version,Status,File URL,Created By,Created At"))
	require.Contains(t, body, "Handbook")
}

func TestDocumentServiceExportPDF(t *testing.T) {
	svc := NewDocumentService(&documentListStub{}, nil, nil, config.DocumentsConfig{}, nil)

	result, err := svc.Export(context.Background(), "pdf")
	require.NoError(t, err)
	require.Equal(t, "application/pdf", result.ContentType)
	require.NotEmpty(t, result.Data)
}

func TestDocumentServiceExportUnknownFormat(t *testing.T) {
	svc := NewDocumentService(&documentListStub{}, nil, nil, config.DocumentsConfig{}, nil)

	_, err := svc.Export(context.Background(), "xlsx")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dms-api/internal/models"
)

const documentColumns = "id, title, description, document_type, file_url, version, status, locked, created_by, created_at, updated_at"

// DocumentRepository persists document metadata.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new document row. New documents start ACTIVE and unlocked
// at version 1.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	if doc.Status == "" {
		doc.Status = models.DocumentStatusActive
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	const query = `INSERT INTO documents (id, title, description, document_type, file_url, version, status, locked, created_by, created_at, updated_at)
VALUES (:id, :title, :description, :document_type, :file_url, :version, :status, :locked, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetByID returns a document by identifier.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM documents WHERE id = $1", documentColumns)
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns documents matching the filter together with the total count.
// The search term matches title, description and document type case-insensitively.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	base := "FROM documents"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR document_type ILIKE $%d)", idx, idx, idx))
		args = append(args, "%"+filter.Search+"%")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf("SELECT %s %s%s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		documentColumns, base, whereClause, limit, offset)
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s%s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	return docs, total, nil
}

// All returns every document ordered by creation time, for register exports.
func (r *DocumentRepository) All(ctx context.Context) ([]models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM documents ORDER BY created_at", documentColumns)
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query); err != nil {
		return nil, fmt.Errorf("list all documents: %w", err)
	}
	return docs, nil
}

// Lock flips an unlocked document into the given pending status. The
// `locked = false` guard makes this the commit point for opening a request:
// of two concurrent openers at most one sees a row affected. The loser gets
// sql.ErrNoRows.
func (r *DocumentRepository) Lock(ctx context.Context, id string, status models.DocumentStatus) error {
	const query = `UPDATE documents SET locked = true, status = $2, updated_at = $3 WHERE id = $1 AND locked = false`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("lock document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("lock document rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Unlock restores a document to ACTIVE and clears the lock. A missing row is
// not an error: rejection must still terminate the request when the document
// was already removed.
func (r *DocumentRepository) Unlock(ctx context.Context, id string) error {
	const query = `UPDATE documents SET status = $2, locked = false, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.DocumentStatusActive, time.Now().UTC()); err != nil {
		return fmt.Errorf("unlock document: %w", err)
	}
	return nil
}

// Replace applies an approved replacement: new file URL, version bump, back to
// ACTIVE and unlocked, all in one statement. Tolerates a missing row.
func (r *DocumentRepository) Replace(ctx context.Context, id, fileURL string) error {
	const query = `UPDATE documents SET file_url = $2, version = version + 1, status = $3, locked = false, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, fileURL, models.DocumentStatusActive, time.Now().UTC()); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// Delete removes a document row permanently. Tolerates a missing row.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

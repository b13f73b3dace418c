package models

import "time"

// DocumentStatus captures the lifecycle state of a document.
type DocumentStatus string

const (
	DocumentStatusActive         DocumentStatus = "ACTIVE"
	DocumentStatusPendingDelete  DocumentStatus = "PENDING_DELETE"
	DocumentStatusPendingReplace DocumentStatus = "PENDING_REPLACE"
)

// Document represents a managed document's metadata row.
// Invariant: Locked is true exactly when Status != ACTIVE, and a locked
// document has exactly one PENDING change request referencing it.
type Document struct {
	ID           string         `db:"id" json:"id"`
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	DocumentType string         `db:"document_type" json:"documentType"`
	FileURL      string         `db:"file_url" json:"fileUrl"`
	Version      int            `db:"version" json:"version"`
	Status       DocumentStatus `db:"status" json:"status"`
	Locked       bool           `db:"locked" json:"locked"`
	CreatedBy    string         `db:"created_by" json:"createdBy"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"-"`
}

// DocumentFilter constrains document listing queries.
type DocumentFilter struct {
	Search string
	Page   int
	Limit  int
}

// DocumentPage is the wire shape for paginated document listings.
type DocumentPage struct {
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Total int        `json:"total"`
	Items []Document `json:"items"`
}

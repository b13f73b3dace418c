package dto

// CreateDocumentRequest is the payload for registering document metadata.
type CreateDocumentRequest struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	DocumentType string `json:"documentType"`
	FileURL      string `json:"fileUrl"`
}

// ReplaceDocumentRequest carries the proposed replacement file.
type ReplaceDocumentRequest struct {
	FileURL string `json:"fileUrl"`
}

// DocumentQuery holds pagination and search parameters for listings.
type DocumentQuery struct {
	Page  int
	Limit int
	Q     string
}

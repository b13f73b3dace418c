package dto

import "github.com/noah-isme/dms-api/internal/models"

// RejectRequest optionally explains why a change request was declined.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// RequestQuery filters the admin change-request listing.
type RequestQuery struct {
	Status string
}

// OpenRequestResult pairs a freshly opened request with the now-locked document.
type OpenRequestResult struct {
	Message string                `json:"message"`
	Request *models.ChangeRequest `json:"request"`
	Doc     *models.Document      `json:"doc"`
}

// RequestList is the wire shape for change-request listings.
type RequestList struct {
	Total int                    `json:"total"`
	Items []models.ChangeRequest `json:"items"`
}

// NotificationList is the wire shape for a user's notification feed.
type NotificationList struct {
	Total int                   `json:"total"`
	Items []models.Notification `json:"items"`
}

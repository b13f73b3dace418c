package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dms-api/internal/dto"
	appErrors "github.com/noah-isme/dms-api/pkg/errors"
	"github.com/noah-isme/dms-api/pkg/response"
)

type notificationService interface {
	ListForUser(ctx context.Context, userID string) (*dto.NotificationList, error)
	MarkRead(ctx context.Context, id, userID string) error
}

// NotificationHandler serves the caller's notification inbox.
type NotificationHandler struct {
	notifications notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(notifications notificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List godoc
// @Summary List own notifications, newest first
// @Tags Notifications
// @Produce json
// @Success 200 {object} dto.NotificationList
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.notifications.ListForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// MarkRead godoc
// @Summary Mark an owned notification as read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]string
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "notification marked as read"})
}

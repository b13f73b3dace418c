package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dms-api/internal/dto"
	"github.com/noah-isme/dms-api/internal/models"
	appErrors "github.com/noah-isme/dms-api/pkg/errors"
)

type notificationServiceMock struct {
	listResp    *dto.NotificationList
	listUserID  string
	markReadErr error
	markedID    string
	markedUser  string
}

func (m *notificationServiceMock) ListForUser(ctx context.Context, userID string) (*dto.NotificationList, error) {
	m.listUserID = userID
	if m.listResp != nil {
		return m.listResp, nil
	}
	return &dto.NotificationList{Items: []models.Notification{}}, nil
}

func (m *notificationServiceMock) MarkRead(ctx context.Context, id, userID string) error {
	m.markedID = id
	m.markedUser = userID
	return m.markReadErr
}

func TestNotificationHandlerListUsesCallerIdentity(t *testing.T) {
	svc := &notificationServiceMock{listResp: &dto.NotificationList{
		Total: 1,
		Items: []models.Notification{{ID: "n-1", UserID: "user-1", Title: "Request approved"}},
	}}
	handler := NewNotificationHandler(svc)
	c, w := userContext(t, http.MethodGet, "/notifications", nil)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-1", svc.listUserID)

	var result dto.NotificationList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Equal(t, 1, result.Total)
}

func TestNotificationHandlerMarkRead(t *testing.T) {
	svc := &notificationServiceMock{}
	handler := NewNotificationHandler(svc)
	c, w := userContext(t, http.MethodPost, "/notifications/n-1/read", nil)
	c.Params = gin.Params{{Key: "id", Value: "n-1"}}

	handler.MarkRead(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "n-1", svc.markedID)
	require.Equal(t, "user-1", svc.markedUser)
}

func TestNotificationHandlerMarkReadForeign(t *testing.T) {
	svc := &notificationServiceMock{markReadErr: appErrors.Clone(appErrors.ErrNotFound, "notification not found")}
	handler := NewNotificationHandler(svc)
	c, w := userContext(t, http.MethodPost, "/notifications/n-9/read", nil)
	c.Params = gin.Params{{Key: "id", Value: "n-9"}}

	handler.MarkRead(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dms-api/internal/dto"
	"github.com/noah-isme/dms-api/internal/models"
	"github.com/noah-isme/dms-api/internal/repository"
	appErrors "github.com/noah-isme/dms-api/pkg/errors"
)

type documentStoreStub struct {
	docs    map[string]*models.Document
	deleted []string
}

func newDocumentStoreStub() *documentStoreStub {
	return &documentStoreStub{docs: make(map[string]*models.Document)}
}

func (s *documentStoreStub) GetByID(ctx context.Context, id string) (*models.Document, error) {
	if doc, ok := s.docs[id]; ok {
		copy := *doc
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *documentStoreStub) Lock(ctx context.Context, id string, status models.DocumentStatus) error {
	doc, ok := s.docs[id]
	if !ok || doc.Locked {
		return sql.ErrNoRows
	}
	doc.Locked = true
	doc.Status = status
	return nil
}

func (s *documentStoreStub) Unlock(ctx context.Context, id string) error {
	if doc, ok := s.docs[id]; ok {
		doc.Locked = false
		doc.Status = models.DocumentStatusActive
	}
	return nil
}

func (s *documentStoreStub) Replace(ctx context.Context, id, fileURL string) error {
	if doc, ok := s.docs[id]; ok {
		doc.FileURL = fileURL
		doc.Version++
		doc.Status = models.DocumentStatusActive
		doc.Locked = false
	}
	return nil
}

func (s *documentStoreStub) Delete(ctx context.Context, id string) error {
	delete(s.docs, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type requestStoreStub struct {
	requests  map[string]*models.ChangeRequest
	createErr error
	filter    models.RequestFilter
	seq       int
}

func newRequestStoreStub() *requestStoreStub {
	return &requestStoreStub{requests: make(map[string]*models.ChangeRequest)}
}

func (s *requestStoreStub) Create(ctx context.Context, request *models.ChangeRequest) error {
	if s.createErr != nil {
		return s.createErr
	}
	if request.ID == "" {
		s.seq++
		request.ID = "req-" + strconv.Itoa(s.seq)
	}
	copy := *request
	s.requests[request.ID] = &copy
	return nil
}

func (s *requestStoreStub) GetByID(ctx context.Context, id string) (*models.ChangeRequest, error) {
	if req, ok := s.requests[id]; ok {
		copy := *req
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *requestStoreStub) List(ctx context.Context, filter models.RequestFilter) ([]models.ChangeRequest, error) {
	s.filter = filter
	result := make([]models.ChangeRequest, 0, len(s.requests))
	for _, req := range s.requests {
		result = append(result, *req)
	}
	return result, nil
}

func (s *requestStoreStub) Decide(ctx context.Context, params repository.DecideRequestParams) error {
	req, ok := s.requests[params.ID]
	if !ok || req.Status != models.RequestStatusPending {
		return sql.ErrNoRows
	}
	req.Status = params.Status
	req.DecidedBy = &params.DecidedBy
	req.DecidedAt = &params.DecidedAt
	req.Reason = params.Reason
	return nil
}

type notifierStub struct {
	adminTitles []string
	userEvents  []string
}

func (n *notifierStub) NotifyAdmins(title, message string) {
	n.adminTitles = append(n.adminTitles, title)
}

func (n *notifierStub) NotifyUser(userID, title, message string) {
	n.userEvents = append(n.userEvents, userID+":"+title)
}

func activeDoc(id string) *models.Document {
	return &models.Document{
		ID:      id,
		Title:   "Handbook",
		FileURL: "https://files.example/v1.pdf",
		Version: 1,
		Status:  models.DocumentStatusActive,
	}
}

func TestApprovalServiceOpenDeleteRequest(t *testing.T) {
	docs := newDocumentStoreStub()
	requests := newRequestStoreStub()
	notifier := &notifierStub{}
	docs.docs["doc-1"] = activeDoc("doc-1")
	svc := NewApprovalService(docs, requests, nil, WithApprovalNotifier(notifier))

	result, err := svc.OpenRequest(context.Background(), "doc-1", models.RequestTypeDelete, "", "user-1")
	require.NoError(t, err)
	require.Equal(t, "delete request submitted", result.Message)
	require.Equal(t, models.RequestStatusPending, result.Request.Status)
	require.Equal(t, models.RequestTypeDelete, result.Request.Type)
	require.True(t, result.Doc.Locked)
	require.Equal(t, models.DocumentStatusPendingDelete, result.Doc.Status)
	require.True(t, docs.docs["doc-1"].Locked)
	require.Len(t, notifier.adminTitles, 1)
}

func TestApprovalServiceOpenSecondRequestConflicts(t *testing.T) {
	docs := newDocumentStoreStub()
	requests := newRequestStoreStub()
	docs.docs["doc-1"] = activeDoc("doc-1")
	svc := NewApprovalService(docs, requests, nil)

	_, err := svc.OpenRequest(context.Background(), "doc-1", models.RequestTypeDelete, "", "user-1")
	require.NoError(t, err)

	_, err = svc.OpenRequest(context.Background(), "doc-1", models.RequestTypeReplace, "https://files.example/v2.pdf", "user-2")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	require.Len(t, requests.requests, 1)
}

func TestApprovalServiceOpenUnknownDocument(t *testing.T) {
	svc := NewApprovalService(newDocumentStoreStub(), newRequestStoreStub(), nil)

	_, err := svc.OpenRequest(context.Background(), "missing", models.RequestTypeDelete, "", "user-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestApprovalServiceOpenReplaceRequiresFileURL(t *testing.T) {
	docs := newDocumentStoreStub()
	docs.docs["doc-1"] = activeDoc("doc-1")
	svc := NewApprovalService(docs, newRequestStoreStub(), nil)

	_, err := svc.OpenRequest(context.Background(), "doc-1", models.RequestTypeReplace, "  ", "user-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	require.False(t, docs.docs["doc-1"].Locked)
}

func TestApprovalServiceOpenLockedDocumentConflictsBeforePayloadCheck(t *testing.T) {
	docs := newDocumentStoreStub()
	docs.docs["doc-1"] = activeDoc("doc-1")
	docs.docs["doc-1"].Locked = true
	docs.docs["doc-1"].Status = models.DocumentStatusPendingDelete
	svc := NewApprovalService(docs, newRequestStoreStub(), nil)

	// The missing fileUrl would normally fail validation, but a locked
	// document answers Conflict before the payload is even looked at.
	_, err := svc.OpenRequest(context.Background(), "doc-1", models.RequestTypeReplace, "", "user-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestApprovalServiceOpenRollsBackLockOnCreateFailure(t *testing.T) {
	docs := newDocumentStoreStub()
	requests := newRequestStoreStub()
	requests.createErr = errors.New("insert failed")
	docs.docs["doc-1"] = activeDoc("doc-1")
	svc := NewApprovalService(docs, requests, nil)

	_, err := svc.OpenRequest(context.Background(), "doc-1", models.RequestTypeDelete, "", "user-1")
	require.Error(t, err)
	require.False(t, docs.docs["doc-1"].Locked)
	require.Equal(t, models.DocumentStatusActive, docs.docs["doc-1"].Status)
}

func TestApprovalServiceApproveDeleteRemovesDocument(t *testing.T) {
	docs := newDocumentStoreStub()
	requests := newRequestStoreStub()
	notifier := &notifierStub{}
	docs.docs["doc-1"] = activeDoc("doc-1")
	svc := NewApprovalService(docs, requests, nil, WithApprovalNotifier(notifier))

	opened, err := svc.OpenRequest(context.Background(), "doc-1", models.RequestTypeDelete, "", "user-1")
	require.NoError(t, err)

	decided, err := svc.Resolve(context.Background(), opened.Request.ID, models.DecisionApprove, "", "admin-1")
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedBy)
	require.Equal(t, "admin-1", *decided.DecidedBy)
	require.NotNil(t, decided.DecidedAt)
	require.NotContains(t, docs.docs, "doc-1")
	// The ledger row outlives the document.
	require.Contains(t, requests.requests, opened.Request.ID)
	require.Equal(t, []string{"user-1:Request approved"}, notifier.userEvents)
}

func TestApprovalServiceApproveReplaceBumpsVersion(t *testing.T) {
	docs := newDocumentStoreStub()
	requests := newRequestStoreStub()
	docs.docs["doc-1"] = activeDoc("doc-1")
	svc := NewApprovalService(docs, requests, nil)

	opened, err := svc.OpenRequest(context.Background(), "doc-1", models.RequestTypeReplace, "https://files.example/v2.pdf", "user-1")
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), opened.Request.ID, models.DecisionApprove, "", "admin-1")
	require.NoError(t, err)

	doc := docs.docs["doc-1"]
	require.Equal(t, 2, doc.Version)
	require.Equal(t, "https://files.example/v2.pdf", doc.FileURL)
	require.Equal(t, models.DocumentStatusActive, doc.Status)
	require.False(t, doc.Locked)
}

func TestApprovalServiceRejectRestoresDocument(t *testing.T) {
	docs := newDocumentStoreStub()
	requests := newRequestStoreStub()
	notifier := &notifierStub{}
	docs.docs["doc-1"] = activeDoc("doc-1")
	svc := NewApprovalService(docs, requests, nil, WithApprovalNotifier(notifier))

	opened, err := svc.OpenRequest(context.Background(), "doc-1", models.RequestTypeReplace, "https://files.example/v2.pdf", "user-1")
	require.NoError(t, err)

	decided, err := svc.Resolve(context.Background(), opened.Request.ID, models.DecisionReject, "outdated file", "admin-1")
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusRejected, decided.Status)
	require.NotNil(t, decided.Reason)
	require.Equal(t, "outdated file", *decided.Reason)

	doc := docs.docs["doc-1"]
	require.Equal(t, 1, doc.Version)
	require.Equal(t, "https://files.example/v1.pdf", doc.FileURL)
	require.False(t, doc.Locked)
	require.Equal(t, []string{"user-1:Request rejected"}, notifier.userEvents)
}

func TestApprovalServiceRejectWithoutReasonStoresEmpty(t *testing.T) {
	docs := newDocumentStoreStub()
	requests := newRequestStoreStub()
	docs.docs["doc-1"] = activeDoc("doc-1")
	svc := NewApprovalService(docs, requests, nil)

	opened, err := svc.OpenRequest(context.Background(), "doc-1", models.RequestTypeDelete, "", "user-1")
	require.NoError(t, err)

	decided, err := svc.Resolve(context.Background(), opened.Request.ID, models.DecisionReject, "", "admin-1")
	require.NoError(t, err)
	require.NotNil(t, decided.Reason)
	require.Equal(t, "", *decided.Reason)
}

func TestApprovalServiceResolveTwiceConflicts(t *testing.T) {
	docs := newDocumentStoreStub()
	requests := newRequestStoreStub()
	docs.docs["doc-1"] = activeDoc("doc-1")
	svc := NewApprovalService(docs, requests, nil)

	opened, err := svc.OpenRequest(context.Background(), "doc-1", models.RequestTypeReplace, "https://files.example/v2.pdf", "user-1")
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), opened.Request.ID, models.DecisionApprove, "", "admin-1")
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), opened.Request.ID, models.DecisionReject, "changed my mind", "admin-2")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// First decision stands.
	require.Equal(t, 2, docs.docs["doc-1"].Version)
	require.Equal(t, models.RequestStatusApproved, requests.requests[opened.Request.ID].Status)
}

func TestApprovalServiceResolveLosesGuardedUpdate(t *testing.T) {
	docs := newDocumentStoreStub()
	requests := newRequestStoreStub()
	docs.docs["doc-1"] = activeDoc("doc-1")
	svc := NewApprovalService(docs, requests, nil)

	opened, err := svc.OpenRequest(context.Background(), "doc-1", models.RequestTypeDelete, "", "user-1")
	require.NoError(t, err)

	// A concurrent resolver won the PENDING-guarded update after our read.
	requests.requests[opened.Request.ID].Status = models.RequestStatusRejected

	_, err = svc.Resolve(context.Background(), opened.Request.ID, models.DecisionApprove, "", "admin-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	// The loser never touched the document.
	require.Contains(t, docs.docs, "doc-1")
	require.Empty(t, docs.deleted)
}

func TestApprovalServiceApproveSurvivesRemovedDocument(t *testing.T) {
	docs := newDocumentStoreStub()
	requests := newRequestStoreStub()
	docs.docs["doc-1"] = activeDoc("doc-1")
	svc := NewApprovalService(docs, requests, nil)

	opened, err := svc.OpenRequest(context.Background(), "doc-1", models.RequestTypeReplace, "https://files.example/v2.pdf", "user-1")
	require.NoError(t, err)

	// The document vanished out of band, orphaning the pending request.
	delete(docs.docs, "doc-1")

	decided, err := svc.Resolve(context.Background(), opened.Request.ID, models.DecisionApprove, "", "admin-1")
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusApproved, decided.Status)
	require.Equal(t, models.RequestStatusApproved, requests.requests[opened.Request.ID].Status)
}

func TestApprovalServiceRejectSurvivesRemovedDocument(t *testing.T) {
	docs := newDocumentStoreStub()
	requests := newRequestStoreStub()
	docs.docs["doc-1"] = activeDoc("doc-1")
	svc := NewApprovalService(docs, requests, nil)

	opened, err := svc.OpenRequest(context.Background(), "doc-1", models.RequestTypeDelete, "", "user-1")
	require.NoError(t, err)

	delete(docs.docs, "doc-1")

	decided, err := svc.Resolve(context.Background(), opened.Request.ID, models.DecisionReject, "stale", "admin-1")
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusRejected, decided.Status)
	require.Equal(t, models.RequestStatusRejected, requests.requests[opened.Request.ID].Status)
}

func TestApprovalServiceResolveUnknownRequest(t *testing.T) {
	svc := NewApprovalService(newDocumentStoreStub(), newRequestStoreStub(), nil)

	_, err := svc.Resolve(context.Background(), "missing", models.DecisionApprove, "", "admin-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestApprovalServiceResolveInvalidDecision(t *testing.T) {
	docs := newDocumentStoreStub()
	requests := newRequestStoreStub()
	docs.docs["doc-1"] = activeDoc("doc-1")
	svc := NewApprovalService(docs, requests, nil)

	opened, err := svc.OpenRequest(context.Background(), "doc-1", models.RequestTypeDelete, "", "user-1")
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), opened.Request.ID, models.Decision("MAYBE"), "", "admin-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestApprovalServiceListRequestsStatusFilter(t *testing.T) {
	requests := newRequestStoreStub()
	requests.requests["req-1"] = &models.ChangeRequest{ID: "req-1", Status: models.RequestStatusPending}
	svc := NewApprovalService(newDocumentStoreStub(), requests, nil)

	result, err := svc.ListRequests(context.Background(), dto.RequestQuery{Status: "pending"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	require.Equal(t, []models.RequestStatus{models.RequestStatusPending}, requests.filter.Status)
}

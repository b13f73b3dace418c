package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dms-api/internal/dto"
	"github.com/noah-isme/dms-api/internal/models"
	"github.com/noah-isme/dms-api/internal/repository"
	appErrors "github.com/noah-isme/dms-api/pkg/errors"
)

type approvalDocumentStore interface {
	GetByID(ctx context.Context, id string) (*models.Document, error)
	Lock(ctx context.Context, id string, status models.DocumentStatus) error
	Unlock(ctx context.Context, id string) error
	Replace(ctx context.Context, id, fileURL string) error
	Delete(ctx context.Context, id string) error
}

type approvalRequestStore interface {
	Create(ctx context.Context, request *models.ChangeRequest) error
	GetByID(ctx context.Context, id string) (*models.ChangeRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.ChangeRequest, error)
	Decide(ctx context.Context, params repository.DecideRequestParams) error
}

// Notifier delivers workflow messages outside the critical section. Both
// methods are fire-and-forget: delivery failure never affects document or
// request state.
type Notifier interface {
	NotifyAdmins(title, message string)
	NotifyUser(userID, title, message string)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// ApprovalService enforces the lock/request/resolve protocol between the
// document store and the change-request ledger.
//
// State machine per document and its active request:
//
//	ACTIVE(unlocked) --open(DELETE)----> PENDING_DELETE(locked)
//	ACTIVE(unlocked) --open(REPLACE)---> PENDING_REPLACE(locked)
//	PENDING_DELETE   --resolve(APPROVE)-> document removed
//	PENDING_DELETE   --resolve(REJECT)--> ACTIVE(unlocked)
//	PENDING_REPLACE  --resolve(APPROVE)-> ACTIVE(unlocked), version+1, new fileUrl
//	PENDING_REPLACE  --resolve(REJECT)--> ACTIVE(unlocked)
//
// The lock-flag UPDATE (open) and the PENDING-guarded UPDATE (resolve) are
// the two commit points; each admits exactly one winner under concurrency.
type ApprovalService struct {
	docs     approvalDocumentStore
	requests approvalRequestStore
	notifier Notifier
	cache    cacheInvalidator
	logger   *zap.Logger
}

// ApprovalServiceOption configures the service.
type ApprovalServiceOption func(*ApprovalService)

// WithApprovalNotifier sets the outbound notifier.
func WithApprovalNotifier(n Notifier) ApprovalServiceOption {
	return func(s *ApprovalService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithApprovalCache sets the read-cache invalidator.
func WithApprovalCache(c cacheInvalidator) ApprovalServiceOption {
	return func(s *ApprovalService) {
		if c != nil {
			s.cache = c
		}
	}
}

// NewApprovalService constructs the service.
func NewApprovalService(docs approvalDocumentStore, requests approvalRequestStore, logger *zap.Logger, opts ...ApprovalServiceOption) *ApprovalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ApprovalService{docs: docs, requests: requests, logger: logger}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// OpenRequest locks a document and appends a PENDING change request for it.
// A locked document always refuses a second request, regardless of type.
func (s *ApprovalService) OpenRequest(ctx context.Context, docID string, reqType models.RequestType, fileURL, requesterID string) (*dto.OpenRequestResult, error) {
	var pendingStatus models.DocumentStatus
	switch reqType {
	case models.RequestTypeDelete:
		pendingStatus = models.DocumentStatusPendingDelete
	case models.RequestTypeReplace:
		pendingStatus = models.DocumentStatusPendingReplace
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported request type")
	}

	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	// Lock state is checked before payload constraints; a locked document
	// refuses with Conflict no matter how malformed the request is. The Lock
	// CAS below remains the race-safe commit point.
	if doc.Locked {
		return nil, appErrors.Clone(appErrors.ErrConflict, "document locked (pending approval)")
	}

	fileURL = strings.TrimSpace(fileURL)
	if reqType == models.RequestTypeReplace && fileURL == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fileUrl is required")
	}

	if err := s.docs.Lock(ctx, docID, pendingStatus); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "document locked (pending approval)")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock document")
	}

	request := &models.ChangeRequest{
		DocID:       docID,
		Type:        reqType,
		RequestedBy: requesterID,
		Status:      models.RequestStatusPending,
	}
	if reqType == models.RequestTypeReplace {
		request.PayloadFileURL = &fileURL
	}
	if err := s.requests.Create(ctx, request); err != nil {
		// Roll the lock back so the document is not stranded without a
		// pending request referencing it.
		if unlockErr := s.docs.Unlock(ctx, docID); unlockErr != nil {
			s.logger.Error("failed to release lock after request create failure",
				zap.String("doc_id", docID), zap.Error(unlockErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create change request")
	}

	doc.Locked = true
	doc.Status = pendingStatus
	s.invalidateDocuments(ctx)

	if s.notifier != nil {
		s.notifier.NotifyAdmins("Permission request",
			fmt.Sprintf("%s request for %q (docId=%s)", reqType, doc.Title, doc.ID))
	}

	return &dto.OpenRequestResult{
		Message: fmt.Sprintf("%s request submitted", strings.ToLower(string(reqType))),
		Request: request,
		Doc:     doc,
	}, nil
}

// Resolve terminates a pending request and applies its effect to the
// document. The PENDING-guarded update commits first; only the winner of
// that update touches the document, so a losing concurrent resolver leaves
// every record untouched.
func (s *ApprovalService) Resolve(ctx context.Context, requestID string, decision models.Decision, reason, adminID string) (*models.ChangeRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load change request")
	}
	if request.Status != models.RequestStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "request already decided")
	}

	var terminal models.RequestStatus
	switch decision {
	case models.DecisionApprove:
		terminal = models.RequestStatusApproved
	case models.DecisionReject:
		terminal = models.RequestStatusRejected
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "decision must be APPROVE or REJECT")
	}

	now := time.Now().UTC()
	params := repository.DecideRequestParams{
		ID:        requestID,
		Status:    terminal,
		DecidedBy: adminID,
		DecidedAt: now,
	}
	if terminal == models.RequestStatusRejected {
		params.Reason = &reason
	}
	if err := s.requests.Decide(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "request already decided")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decide change request")
	}

	if err := s.applyEffect(ctx, request, terminal); err != nil {
		return nil, err
	}

	request.Status = terminal
	request.DecidedBy = &adminID
	request.DecidedAt = &now
	request.Reason = params.Reason
	s.invalidateDocuments(ctx)

	if s.notifier != nil {
		switch terminal {
		case models.RequestStatusApproved:
			s.notifier.NotifyUser(request.RequestedBy, "Request approved",
				fmt.Sprintf("Your %s request for docId=%s was approved.", request.Type, request.DocID))
		case models.RequestStatusRejected:
			s.notifier.NotifyUser(request.RequestedBy, "Request rejected",
				fmt.Sprintf("Your %s request was rejected. %s", request.Type, reason))
		}
	}

	return request, nil
}

// applyEffect mutates the document after the request is terminal. A document
// that was already removed is tolerated on every branch: the resolution
// stands on the ledger either way.
func (s *ApprovalService) applyEffect(ctx context.Context, request *models.ChangeRequest, terminal models.RequestStatus) error {
	if terminal == models.RequestStatusRejected {
		if err := s.docs.Unlock(ctx, request.DocID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unlock document")
		}
		return nil
	}

	switch request.Type {
	case models.RequestTypeDelete:
		if err := s.docs.Delete(ctx, request.DocID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
		}
	case models.RequestTypeReplace:
		if request.PayloadFileURL == nil || *request.PayloadFileURL == "" {
			// Should not happen: OpenRequest validates the payload. Restore
			// the document rather than leave it locked.
			s.logger.Warn("replace request approved without payload", zap.String("request_id", request.ID))
			if err := s.docs.Unlock(ctx, request.DocID); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unlock document")
			}
			return nil
		}
		if err := s.docs.Replace(ctx, request.DocID, *request.PayloadFileURL); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace document")
		}
	}
	return nil
}

// ListRequests returns change requests for administrators, optionally
// filtered by status.
func (s *ApprovalService) ListRequests(ctx context.Context, query dto.RequestQuery) (*dto.RequestList, error) {
	filter := models.RequestFilter{}
	if raw := strings.ToUpper(strings.TrimSpace(query.Status)); raw != "" {
		filter.Status = []models.RequestStatus{models.RequestStatus(raw)}
	}
	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list change requests")
	}
	return &dto.RequestList{Total: len(requests), Items: requests}, nil
}

func (s *ApprovalService) invalidateDocuments(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "documents:*"); err != nil {
		s.logger.Warn("failed to invalidate document cache", zap.Error(err))
	}
}

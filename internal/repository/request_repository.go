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

const requestColumns = "id, doc_id, type, requested_by, status, created_at, decided_by, decided_at, reason, payload_file_url"

// DecideRequestParams carries the terminal stamp for a pending request.
type DecideRequestParams struct {
	ID        string
	Status    models.RequestStatus
	DecidedBy string
	DecidedAt time.Time
	Reason    *string
}

// RequestRepository persists the change-request ledger.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new change request.
func (r *RequestRepository) Create(ctx context.Context, request *models.ChangeRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.RequestStatusPending
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO change_requests (id, doc_id, type, requested_by, status, created_at, decided_by, decided_at, reason, payload_file_url)
VALUES (:id, :doc_id, :type, :requested_by, :status, :created_at, :decided_by, :decided_at, :reason, :payload_file_url)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create change request: %w", err)
	}
	return nil
}

// GetByID fetches a change request by identifier.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.ChangeRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM change_requests WHERE id = $1", requestColumns)
	var request models.ChangeRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns change requests matching the filter, newest first.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.ChangeRequest, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(fmt.Sprintf("SELECT %s FROM change_requests", requestColumns))

	conditions := make([]string, 0, 3)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.DocID != "" {
		args = append(args, filter.DocID)
		conditions = append(conditions, fmt.Sprintf("doc_id = $%d", len(args)))
	}
	if filter.RequestedBy != "" {
		args = append(args, filter.RequestedBy)
		conditions = append(conditions, fmt.Sprintf("requested_by = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	var requests []models.ChangeRequest
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list change requests: %w", err)
	}
	return requests, nil
}

// Decide stamps a pending request terminal. The `status = 'PENDING'` guard is
// the exactly-once commit point for resolution: concurrent deciders race on
// the same row and only one update takes effect. Losers get sql.ErrNoRows and
// must not apply any document effect.
func (r *RequestRepository) Decide(ctx context.Context, params DecideRequestParams) error {
	const query = `UPDATE change_requests SET status = $2, decided_by = $3, decided_at = $4, reason = $5
WHERE id = $1 AND status = $6`
	result, err := r.db.ExecContext(ctx, query,
		params.ID, params.Status, params.DecidedBy, params.DecidedAt, params.Reason, models.RequestStatusPending)
	if err != nil {
		return fmt.Errorf("decide change request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("decide change request rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

package models

import "time"

// RequestType enumerates the mutations a change request can propose.
type RequestType string

const (
	RequestTypeDelete  RequestType = "DELETE"
	RequestTypeReplace RequestType = "REPLACE"
)

// RequestStatus captures workflow states for change requests.
// A request that leaves PENDING is terminal and never changes again.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// ChangeRequest stores a proposed document mutation awaiting review.
// The row survives document deletion as an audit record.
type ChangeRequest struct {
	ID             string        `db:"id" json:"id"`
	DocID          string        `db:"doc_id" json:"docId"`
	Type           RequestType   `db:"type" json:"type"`
	RequestedBy    string        `db:"requested_by" json:"requestedBy"`
	Status         RequestStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"createdAt"`
	DecidedBy      *string       `db:"decided_by" json:"decidedBy,omitempty"`
	DecidedAt      *time.Time    `db:"decided_at" json:"decidedAt,omitempty"`
	Reason         *string       `db:"reason" json:"reason,omitempty"`
	PayloadFileURL *string       `db:"payload_file_url" json:"payload,omitempty"`
}

// RequestFilter constrains change-request listing queries.
type RequestFilter struct {
	Status      []RequestStatus
	DocID       string
	RequestedBy string
}

// Decision is an administrator verdict on a pending request.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

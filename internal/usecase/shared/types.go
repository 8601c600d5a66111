package shared

import (
	"time"

	"github.com/google/uuid"
)

// CommitResult is the outcome of a ledger insert. ConflictDetected means at
// least one seat was already held and nothing was written.
type CommitResult int

const (
	Committed CommitResult = iota
	ConflictDetected
)

func (r CommitResult) String() string {
	switch r {
	case Committed:
		return "committed"
	case ConflictDetected:
		return "conflict_detected"
	default:
		return "unknown"
	}
}

const (
	IdempotencyStatusProcessing = "processing"
	IdempotencyStatusCompleted  = "completed"
)

type IdempotencyRecord struct {
	Key                 uuid.UUID
	UserID              uuid.UUID
	Endpoint            string
	Status              string
	RequestHash         string
	ResultReservationID *uuid.UUID
	ExpiresAt           time.Time
}

type CompletedReservation struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ScreeningID uuid.UUID
}

const (
	JobStatusQueued = "queued"
	JobStatusSent   = "sent"
	JobStatusFailed = "failed"
)

type NotificationJob struct {
	ID       uuid.UUID
	Kind     string
	Topic    string
	Payload  []byte
	RunAt    time.Time
	Attempts int32
}

package sqlc

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const claimPendingNotificationJobs = `-- name: ClaimPendingNotificationJobs :many
SELECT id, kind, topic, payload, run_at, attempts, status, last_error, created_at, updated_at FROM notification_jobs
WHERE status = 'queued' AND run_at <= $1
ORDER BY run_at
LIMIT $2
FOR UPDATE SKIP LOCKED
`

type ClaimPendingNotificationJobsParams struct {
	Now       pgtype.Timestamptz `json:"now"`
	BatchSize int32              `json:"batch_size"`
}

func (q *Queries) ClaimPendingNotificationJobs(ctx context.Context, db DBTX, arg ClaimPendingNotificationJobsParams) ([]NotificationJobs, error) {
	rows, err := db.Query(ctx, claimPendingNotificationJobs, arg.Now, arg.BatchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []NotificationJobs
	for rows.Next() {
		var i NotificationJobs
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.Topic,
			&i.Payload,
			&i.RunAt,
			&i.Attempts,
			&i.Status,
			&i.LastError,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createNotificationJob = `-- name: CreateNotificationJob :exec
INSERT INTO notification_jobs (kind, topic, payload, run_at, status)
VALUES ($1, $2, $3, $4, $5)
`

type CreateNotificationJobParams struct {
	Kind    string             `json:"kind"`
	Topic   string             `json:"topic"`
	Payload []byte             `json:"payload"`
	RunAt   pgtype.Timestamptz `json:"run_at"`
	Status  string             `json:"status"`
}

func (q *Queries) CreateNotificationJob(ctx context.Context, db DBTX, arg CreateNotificationJobParams) error {
	_, err := db.Exec(ctx, createNotificationJob,
		arg.Kind,
		arg.Topic,
		arg.Payload,
		arg.RunAt,
		arg.Status,
	)
	return err
}

const updateNotificationJobStatus = `-- name: UpdateNotificationJobStatus :exec
UPDATE notification_jobs
SET status = $2,
    last_error = $3,
    run_at = $4,
    attempts = attempts + 1,
    updated_at = now()
WHERE id = $1
`

type UpdateNotificationJobStatusParams struct {
	ID        uuid.UUID          `json:"id"`
	Status    string             `json:"status"`
	LastError pgtype.Text        `json:"last_error"`
	RunAt     pgtype.Timestamptz `json:"run_at"`
}

func (q *Queries) UpdateNotificationJobStatus(ctx context.Context, db DBTX, arg UpdateNotificationJobStatusParams) error {
	_, err := db.Exec(ctx, updateNotificationJobStatus,
		arg.ID,
		arg.Status,
		arg.LastError,
		arg.RunAt,
	)
	return err
}

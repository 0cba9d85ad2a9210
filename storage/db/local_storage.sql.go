package db

import (
	"context"
)

const getLocalValue = `-- name: GetLocalValue :one
SELECT session_id, key, value, created_at, updated_at
FROM local_storage
WHERE session_id = ? AND key = ?
`

type GetLocalValueParams struct {
	SessionID string
	Key       string
}

func (q *Queries) GetLocalValue(ctx context.Context, arg GetLocalValueParams) (LocalStorage, error) {
	row := q.db.QueryRowContext(ctx, getLocalValue, arg.SessionID, arg.Key)
	var i LocalStorage
	err := row.Scan(
		&i.SessionID,
		&i.Key,
		&i.Value,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const setLocalValue = `-- name: SetLocalValue :exec
INSERT INTO local_storage (session_id, key, value, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (session_id, key) DO UPDATE SET
    value = excluded.value,
    updated_at = excluded.updated_at
`

type SetLocalValueParams struct {
	SessionID string
	Key       string
	Value     string
	CreatedAt int64
	UpdatedAt int64
}

func (q *Queries) SetLocalValue(ctx context.Context, arg SetLocalValueParams) error {
	_, err := q.db.ExecContext(ctx, setLocalValue,
		arg.SessionID,
		arg.Key,
		arg.Value,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const deleteLocalValue = `-- name: DeleteLocalValue :exec
DELETE FROM local_storage
WHERE session_id = ? AND key = ?
`

type DeleteLocalValueParams struct {
	SessionID string
	Key       string
}

func (q *Queries) DeleteLocalValue(ctx context.Context, arg DeleteLocalValueParams) error {
	_, err := q.db.ExecContext(ctx, deleteLocalValue, arg.SessionID, arg.Key)
	return err
}

const listSessionKeys = `-- name: ListSessionKeys :many
SELECT key
FROM local_storage
WHERE session_id = ?
ORDER BY key
`

func (q *Queries) ListSessionKeys(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listSessionKeys, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		items = append(items, key)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteStaleSessions = `-- name: DeleteStaleSessions :execrows
DELETE FROM local_storage
WHERE session_id IN (
    SELECT session_id
    FROM local_storage
    GROUP BY session_id
    HAVING MAX(updated_at) < ?
)
`

func (q *Queries) DeleteStaleSessions(ctx context.Context, cutoff int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteStaleSessions, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countSessions = `-- name: CountSessions :one
SELECT COUNT(DISTINCT session_id)
FROM local_storage
`

func (q *Queries) CountSessions(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countSessions)
	var count int64
	err := row.Scan(&count)
	return count, err
}

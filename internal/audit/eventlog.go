// Package audit appends session lifecycle events to the event_log table so
// proctors can reconstruct what happened to an attempt after the fact.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	EventSessionStarted   = "SessionStarted"
	EventAttemptCommitted = "AttemptCommitted"
	EventSessionAbandoned = "SessionAbandoned"
	EventReviewConsumed   = "ReviewConsumed"
)

type Event struct {
	Seq       int64
	Type      string
	Key       string // natural key: session or exam ID
	DataJSON  string
	CreatedAt int64
}

type Log struct{ db *sql.DB }

func NewLog(db *sql.DB) *Log { return &Log{db: db} }

// Append records one event. A nil Log is a no-op so callers without a
// database configured don't have to branch.
func (l *Log) Append(ctx context.Context, typ, key string, data any) error {
	if l == nil || l.db == nil {
		return nil
	}
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), time.Now().Unix())
	return err
}

// Recent returns the latest events for a key, newest first.
func (l *Log) Recent(ctx context.Context, key string, limit int) ([]Event, error) {
	if l == nil || l.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT seq, typ, key, data, created_at FROM event_log
		 WHERE key=$1 ORDER BY seq DESC LIMIT $2`, key, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

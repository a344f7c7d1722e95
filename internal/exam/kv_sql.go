package exam

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLKV keeps the persistence port in the kv_store table. The same statements
// run on sqlite and postgres.
type SQLKV struct {
	db *sql.DB
}

func NewSQLKV(db *sql.DB) *SQLKV { return &SQLKV{db: db} }

func (s *SQLKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM kv_store WHERE k=$1`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(v), true, nil
}

func (s *SQLKV) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_store (k, v, updated_at) VALUES ($1,$2,$3)
		 ON CONFLICT (k) DO UPDATE SET v=EXCLUDED.v, updated_at=EXCLUDED.updated_at`,
		key, string(value), time.Now().Unix())
	return err
}

func (s *SQLKV) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE k=$1`, key)
	return err
}

package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/store"
)

// PostgresSessionStore implements store.SessionStore on the
// client_session_fields table.
type PostgresSessionStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// NewPostgresSessionStore creates a store over an initialized connection
// pool. Rows expire after ttl; a non-positive ttl keeps them until cleared.
func NewPostgresSessionStore(db *sql.DB, ttl time.Duration) *PostgresSessionStore {
	return &PostgresSessionStore{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}
}

const selectSessionFieldsSQL = `
SELECT field, value
FROM client_session_fields
WHERE browser_key = $1 AND (expires_at IS NULL OR expires_at > $2)`

const deleteSessionFieldsSQL = `DELETE FROM client_session_fields WHERE browser_key = $1`

const insertSessionFieldSQL = `
INSERT INTO client_session_fields (browser_key, field, value, expires_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`

const deleteExpiredSQL = `DELETE FROM client_session_fields WHERE expires_at IS NOT NULL AND expires_at <= $1`

// Get implements store.SessionStore.Get
func (s *PostgresSessionStore) Get(ctx context.Context, key string) (domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, selectSessionFieldsSQL, key, s.now().UTC())
	if err != nil {
		return domain.Session{}, store.NewStoreError("session", "get", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	fields := make(map[string]string, len(domain.SessionKeys))
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return domain.Session{}, store.NewStoreError("session", "get", "scan failed", MapError(err))
		}
		fields[field] = value
	}
	if err := rows.Err(); err != nil {
		return domain.Session{}, store.NewStoreError("session", "get", "iteration failed", MapError(err))
	}

	return store.DecodeFields(fields)
}

// Set implements store.SessionStore.Set. The previous fields are replaced in
// one transaction so readers never observe a mix of two sessions.
func (s *PostgresSessionStore) Set(ctx context.Context, key string, sess domain.Session) error {
	if strings.TrimSpace(key) == "" {
		return store.NewStoreError("session", "set", "empty browser key", store.ErrInvalidEntity)
	}
	if err := sess.Validate(); err != nil {
		return store.NewStoreError("session", "set", "incomplete session", store.ErrInvalidEntity)
	}

	now := s.now().UTC()
	var expiresAt sql.NullTime
	if s.ttl > 0 {
		expiresAt = sql.NullTime{Time: now.Add(s.ttl), Valid: true}
	}
	fields := sess.Fields()

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := deleteFields(ctx, tx, key); err != nil {
			return err
		}
		for _, field := range domain.SessionKeys {
			if _, err := tx.ExecContext(ctx, insertSessionFieldSQL, key, field, fields[field], expiresAt, now); err != nil {
				return MapError(err)
			}
		}
		return nil
	})
	if err != nil {
		return store.NewStoreError("session", "set", "write failed", err)
	}
	return nil
}

// Clear implements store.SessionStore.Clear
func (s *PostgresSessionStore) Clear(ctx context.Context, key string) error {
	if err := deleteFields(ctx, s.db, key); err != nil {
		return store.NewStoreError("session", "clear", "delete failed", err)
	}
	return nil
}

func deleteFields(ctx context.Context, q store.DBTX, key string) error {
	if _, err := q.ExecContext(ctx, deleteSessionFieldsSQL, key); err != nil {
		return MapError(err)
	}
	return nil
}

// DeleteExpired removes expired rows and returns how many were deleted.
func (s *PostgresSessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, deleteExpiredSQL, s.now().UTC())
	if err != nil {
		return 0, store.NewStoreError("session", "delete_expired", "delete failed", MapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("session", "delete_expired", "rows affected", err)
	}
	return n, nil
}

package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/athena-learn/athena-web/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantNil bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "no rows", err: sql.ErrNoRows, wantIs: store.ErrNotFound},
		{name: "check violation", err: &pgconn.PgError{Code: "23514"}, wantIs: store.ErrInvalidEntity},
		{name: "not null violation", err: &pgconn.PgError{Code: "23502", ColumnName: "value"}, wantIs: store.ErrInvalidEntity},
		{name: "missing table", err: &pgconn.PgError{Code: "42P01"}, wantIs: store.ErrUnavailable},
		{name: "connection failure", err: &pgconn.PgError{Code: "08001"}, wantIs: store.ErrUnavailable},
		{
			name:   "wrapped pg error",
			err:    fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23514"}),
			wantIs: store.ErrInvalidEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if tt.wantNil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.wantIs)
			// the original error stays reachable
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestMapErrorPassesThroughUnknownErrors(t *testing.T) {
	orig := errors.New("something else")
	assert.Same(t, orig, MapError(orig))
}

func TestIsCheckConstraintViolation(t *testing.T) {
	assert.True(t, IsCheckConstraintViolation(&pgconn.PgError{Code: "23514"}))
	assert.False(t, IsCheckConstraintViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsCheckConstraintViolation(errors.New("x")))
}

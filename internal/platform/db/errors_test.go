package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	require.True(t, IsUniqueViolation(dup))
	require.True(t, IsUniqueViolation(fmt.Errorf("insert user: %w", dup)))

	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, IsUniqueViolation(errors.New("connection refused")))
	require.False(t, IsUniqueViolation(nil))
}

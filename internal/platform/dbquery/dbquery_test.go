package dbquery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildEqAndILike(t *testing.T) {
	where, args := Build(1, Eq("method", "GET"), ILike("uri", "%artist%"))
	require.Equal(t, "method = $1 AND uri ILIKE $2", where)
	require.Equal(t, []any{"GET", "%artist%"}, args)
}

func TestBuildInNumbersPlaceholders(t *testing.T) {
	where, args := Build(3, Eq("is_active", true), In("code", "USER", "ADMIN"))
	require.Equal(t, "is_active = $3 AND code IN ($4, $5)", where)
	require.Equal(t, []any{true, "USER", "ADMIN"}, args)
}

func TestBuildEmptyInMatchesNothing(t *testing.T) {
	where, args := Build(1, In("code"))
	require.Equal(t, "FALSE", where)
	require.Empty(t, args)
}

func TestBuildNoPredicates(t *testing.T) {
	where, args := Build(1)
	require.Empty(t, where)
	require.Nil(t, args)
}

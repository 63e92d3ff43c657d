package dbtypes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUUIDArrayScanValue(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	value, err := UUIDArray{a, b}.Value()
	require.NoError(t, err)
	require.Equal(t, "{"+a.String()+","+b.String()+"}", value)

	var scanned UUIDArray
	require.NoError(t, scanned.Scan([]byte(value.(string))))
	require.Equal(t, UUIDArray{a, b}, scanned)

	require.NoError(t, scanned.Scan(nil))
	require.Empty(t, scanned)

	require.Error(t, scanned.Scan("{not-a-uuid}"))
	require.Error(t, scanned.Scan(42))
}

func TestUUIDArraySetOperations(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	set := UUIDArray{}.Add(a).Add(b).Add(a)
	require.Equal(t, UUIDArray{a, b}, set)
	require.True(t, set.Contains(b))
	require.False(t, set.Contains(c))

	require.Equal(t, UUIDArray{a, b, c}, set.Union(UUIDArray{b, c}))
	require.Equal(t, UUIDArray{b}, set.Remove(a))
	require.Equal(t, UUIDArray{a, b}, set.Remove(c))
}

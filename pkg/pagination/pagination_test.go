package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	c := Cursor{CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 5, time.UTC), ID: uuid.New()}
	parsed, err := ParseCursor(EncodeCursor(c))
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.True(t, parsed.CreatedAt.Equal(c.CreatedAt))
	assert.Equal(t, c.ID, parsed.ID)

	empty, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = ParseCursor("not base64!")
	assert.Error(t, err)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(500))
	assert.Equal(t, 11, LimitWithBuffer(10))
}

func TestPageNormalize(t *testing.T) {
	p := Page{Page: -2, Size: 0}.Normalize()
	assert.Equal(t, 0, p.Page)
	assert.Equal(t, DefaultPageSize, p.Size)
	assert.Equal(t, 24, Page{Page: 2, Size: 12}.Offset())
	assert.Equal(t, MaxLimit, Page{Size: 1000}.Normalize().Size)
}

func TestNewPageResult(t *testing.T) {
	res := NewPageResult[string](nil, Page{Page: 1, Size: 5}, 11)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, int64(11), res.TotalElements)
	assert.NotNil(t, res.Items)
	assert.Equal(t, 1, res.Page)
}

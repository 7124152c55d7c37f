package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/domain"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		page, size    int
		offset, limit int
	}{
		{name: "first page", page: 1, size: 20, offset: 0, limit: 20},
		{name: "third page", page: 3, size: 5, offset: 10, limit: 5},
		{name: "zero page", page: 0, size: 5, offset: 0, limit: 5},
		{name: "size too large", page: 2, size: 500, offset: 10, limit: 10},
		{name: "negative size", page: 1, size: -1, offset: 0, limit: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.limit, limit)
		})
	}
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	d, err := ParsePrice(" 19.99 ")
	require.NoError(t, err)
	assert.Equal(t, "19.99", d.String())

	_, err = ParsePrice("10.00")
	assert.NoError(t, err)

	for _, bad := range []string{"", "abc", "-1", "1.999"} {
		_, err := ParsePrice(bad)
		assert.ErrorIs(t, err, domain.ErrValidation, bad)
	}
}

func TestParseQuantity(t *testing.T) {
	t.Parallel()

	n, err := ParseQuantity("0")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = ParseQuantity("-3")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = ParseQuantity("two")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := ParseID("12")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	_, err = ParseID("0")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 7, ParseIntDefault("x", 7))
}

package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inelac/inventory-backend/pkg/errors"
)

func TestParseDateParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/ledger/export?start=2026-03-01&end=2026-03-31", nil)

	start, err := parseDateParam(r, "start")
	require.NoError(t, err)
	assert.Equal(t, 2026, start.Year())
	assert.Equal(t, 3, int(start.Month()))
	assert.Equal(t, 1, start.Day())

	end, err := parseDateParam(r, "end")
	require.NoError(t, err)
	assert.Equal(t, 31, end.Day())
}

func TestParseDateParamMissing(t *testing.T) {
	r := httptest.NewRequest("GET", "/ledger/export", nil)

	_, err := parseDateParam(r, "start")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestParseDateParamMalformed(t *testing.T) {
	r := httptest.NewRequest("GET", "/ledger/export?start=03%2F01%2F2026", nil)

	_, err := parseDateParam(r, "start")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonthParam(t *testing.T) {
	year, month, err := parseMonthParam("2025-7", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.July, month)

	year, month, err = parseMonthParam("2026-12", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2026, year)
	assert.Equal(t, time.December, month)
}

func TestParseMonthParamDefaultsToNow(t *testing.T) {
	now := time.Now().UTC()
	year, month, err := parseMonthParam("", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, now.Year(), year)
	assert.Equal(t, now.Month(), month)
}

func TestParseMonthParamRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"2025", "2025-0", "2025-13", "abc-7", "2025-七", "-1-5"} {
		_, _, err := parseMonthParam(raw, time.UTC)
		assert.Error(t, err, "input %q", raw)
	}
}

package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateValue(t *testing.T) {
	t.Run("empty string clears", func(t *testing.T) {
		got, err := parseDateValue("")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("date-only expands to midnight UTC", func(t *testing.T) {
		got, err := parseDateValue("2026-03-15")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t,
			time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), *got)
	})

	t.Run("full timestamps parse", func(t *testing.T) {
		got, err := parseDateValue("2026-03-15T10:30:00Z")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 10, got.UTC().Hour())
	})

	t.Run("loose formats parse", func(t *testing.T) {
		got, err := parseDateValue("March 15, 2026")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, time.March, got.Month())
	})

	t.Run("garbage is an error", func(t *testing.T) {
		_, err := parseDateValue("not-a-date")
		assert.Error(t, err)
	})

	t.Run("malformed date-only is an error", func(t *testing.T) {
		_, err := parseDateValue("2026-13-99")
		assert.Error(t, err)
	})
}

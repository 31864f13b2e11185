package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractUserID(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"<@123456>", 123456},
		{"<@!123456>", 123456},
		{"123456", 123456},
		{"  <@123456>  ", 123456},
	}
	for _, tt := range tests {
		got, err := ExtractUserID(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestExtractUserID_Invalid(t *testing.T) {
	for _, in := range []string{"", "@user", "<#123>", "<@abc>", "12a3"} {
		_, err := ExtractUserID(in)
		assert.Error(t, err, in)
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1,000", FormatNumber(1000))
	assert.Equal(t, "1,234,567", FormatNumber(1234567))
	assert.Equal(t, "-1,500", FormatNumber(-1500))
}

func TestFormatCoins(t *testing.T) {
	assert.Equal(t, "1,500 Ilm Coins", FormatCoins(1500))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "5h 12m", FormatDuration(5*time.Hour+12*time.Minute))
	assert.Equal(t, "45m", FormatDuration(45*time.Minute))
	assert.Equal(t, "0m", FormatDuration(-time.Minute))
}

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2026, 3, 1, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "01.03.2026 15:04", FormatDateTime(ts))
}

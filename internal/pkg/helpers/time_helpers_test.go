package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"90m", 90 * time.Minute},
		{"", time.Hour},
		{"soon", time.Hour},
		{"-5m", time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.in, time.Hour))
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-09-16 ")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, time.September, d.Month())

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDate("16/09/2024")
	assert.Error(t, err)
}

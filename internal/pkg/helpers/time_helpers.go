package helpers

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DateLayout is the calendar date format used by record sheets and requests
const DateLayout = "2006-01-02"

// ParseDuration parses a config duration, falling back to def when the value is unusable.
func ParseDuration(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Warn().Err(err).Str("value", value).Dur("default", def).Msg("Invalid duration, using default")
		return def
	}
	return d
}

// ParseDate reads a YYYY-MM-DD date; blank input yields nil.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

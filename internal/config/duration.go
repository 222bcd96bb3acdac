package config

import (
	"fmt"
	"strings"
	"time"
)

// parseDuration reads a Go duration string from field. Blank and zero
// values yield def; negative values are rejected.
func parseDuration(field, raw string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	switch {
	case err != nil:
		return 0, fmt.Errorf("%s: invalid duration %q", field, raw)
	case d < 0:
		return 0, fmt.Errorf("%s: duration must not be negative", field)
	case d == 0:
		return def, nil
	}
	return d, nil
}

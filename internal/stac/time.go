package stac

import (
	"fmt"
	"strings"
	"time"
)

// FormatRFC3339Z serializes a UTC instant with a literal trailing 'Z',
// never '+00:00'. Sub-second precision is kept only when present.
func FormatRFC3339Z(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseRFC3339Z parses a datetime string, rejecting values that do not end
// in 'Z'. Used by validation to hold serialized properties to the catalog's
// RFC3339 profile.
func ParseRFC3339Z(s string) (time.Time, error) {
	if !strings.HasSuffix(s, "Z") {
		return time.Time{}, fmt.Errorf("datetime %q must end in 'Z'", s)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

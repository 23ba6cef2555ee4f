package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/suykerbuyk/proofline/internal/timeline"
)

const dateLayout = "2006-01-02"

// parseRange turns --since/--until values into a range. Each accepts
// RFC 3339, a local date, or a duration back from now ("48h", "3d"). A date
// given as --until covers that whole day.
func parseRange(since, until string, now time.Time) (timeline.TimeRange, error) {
	var rng timeline.TimeRange
	var err error
	if rng.Start, err = parseTime(since, now, false); err != nil {
		return rng, fmt.Errorf("parse --since: %w", err)
	}
	if rng.End, err = parseTime(until, now, true); err != nil {
		return rng, fmt.Errorf("parse --until: %w", err)
	}
	if !rng.Start.IsZero() && !rng.End.IsZero() && rng.End.Before(rng.Start) {
		return rng, fmt.Errorf("--until %s is before --since %s", until, since)
	}
	return rng, nil
}

func parseTime(s string, now time.Time, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, now.Location()); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return t, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			return now.AddDate(0, 0, -n), nil
		}
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return now.Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

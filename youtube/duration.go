package youtube

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// durationPattern matches the ISO 8601 durations the Data API emits, e.g.
// PT45S, PT1M, PT1H2M3S, P1DT2H.
var durationPattern = regexp.MustCompile(`^P(?:(\d+)D)?T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISO8601Duration parses a Data API contentDetails duration.
func ParseISO8601Duration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("youtube: invalid duration %q", s)
	}
	part := func(i int) int64 {
		if m[i] == "" {
			return 0
		}
		n, _ := strconv.ParseInt(m[i], 10, 64)
		return n
	}
	seconds := part(1)*86400 + part(2)*3600 + part(3)*60 + part(4)
	return time.Duration(seconds) * time.Second, nil
}

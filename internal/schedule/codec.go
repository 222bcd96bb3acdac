package schedule

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind is the shape of a schedule the console can build.
type Kind string

const (
	Daily  Kind = "daily"
	Weekly Kind = "weekly"
	Hourly Kind = "hourly"
)

// Spec is the structured form of a recognized cron string.
//
// Only the fields meaningful for Kind affect Encode:
//   - Daily:  Hour
//   - Weekly: Hour, Day (0 = Sunday)
//   - Hourly: Interval (hours between firings)
//
// The inactive fields may hold stale values (e.g. from a previous edit).
type Spec struct {
	Kind     Kind `json:"kind"`
	Hour     int  `json:"hour"`
	Day      int  `json:"day"`
	Interval int  `json:"interval"`
}

// Default is what Decode returns for strings it does not recognize.
var Default = Spec{Kind: Daily, Hour: 8, Day: 1, Interval: 3}

// Encode renders s as one of the three recognized cron shapes.
// Day-of-week values outside 0..6 are not validated.
func Encode(s Spec) string {
	switch s.Kind {
	case Weekly:
		return fmt.Sprintf("0 %d * * %d", s.Hour, s.Day)
	case Hourly:
		return fmt.Sprintf("0 */%d * * *", s.Interval)
	default:
		return fmt.Sprintf("0 %d * * *", s.Hour)
	}
}

// pattern pairs a cron shape with the extractor for its captured fields.
// Patterns are evaluated in order and the first match wins.
type pattern struct {
	kind Kind
	re   *regexp.Regexp
}

var patterns = []pattern{
	// weekly must precede daily: "0 8 * * 1" is a daily shape plus a day field.
	{kind: Weekly, re: regexp.MustCompile(`^0 (\d+) \* \* (\d)$`)},
	{kind: Daily, re: regexp.MustCompile(`^0 (\d+) \* \* \*$`)},
	{kind: Hourly, re: regexp.MustCompile(`^0 \*/(\d+) \* \* \*$`)},
}

// match returns the first pattern matching raw with its numeric captures.
func match(raw string) (Kind, []int, bool) {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		nums := make([]int, 0, len(m)-1)
		for _, g := range m[1:] {
			n, err := strconv.Atoi(g)
			if err != nil {
				// \d+ overflowing int; treat as unrecognized.
				return "", nil, false
			}
			nums = append(nums, n)
		}
		return p.kind, nums, true
	}
	return "", nil, false
}

// Decode parses raw into a Spec. It never fails: unrecognized strings yield Default.
// Fields that are inactive for the decoded kind are filled from Default.
func Decode(raw string) Spec {
	kind, nums, ok := match(raw)
	if !ok {
		return Default
	}
	out := Default
	out.Kind = kind
	switch kind {
	case Weekly:
		out.Hour, out.Day = nums[0], nums[1]
	case Daily:
		out.Hour = nums[0]
	case Hourly:
		out.Interval = nums[0]
	}
	return out
}

// Recognized reports whether raw is one of the three shapes the codec builds.
func Recognized(raw string) bool {
	_, _, ok := match(raw)
	return ok
}

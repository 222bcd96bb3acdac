package schedule

import "fmt"

var weekdays = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// HourOptions are the hours offered when building a daily or weekly schedule.
var HourOptions = func() []int {
	out := make([]int, 24)
	for i := range out {
		out[i] = i
	}
	return out
}()

// IntervalOptions are the hour intervals offered for hourly schedules.
var IntervalOptions = []int{1, 2, 3, 4, 6, 8, 12}

// PadHour formats h as "HH:00".
func PadHour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

// WeekdayName returns the English name for day (0 = Sunday).
// Out-of-range days render as "day N".
func WeekdayName(day int) string {
	if day < 0 || day >= len(weekdays) {
		return fmt.Sprintf("day %d", day)
	}
	return weekdays[day]
}

// Humanize returns a short English label for raw.
// Strings that are not one of the recognized shapes are returned unchanged.
// Numbers are normalized ("0 */04 * * *" reads "Every 4 hours") and a
// weekly shape with a weekday outside 0-6 is returned unchanged.
func Humanize(raw string) string {
	kind, nums, ok := match(raw)
	if !ok {
		return raw
	}
	switch kind {
	case Weekly:
		if nums[1] >= len(weekdays) {
			// "0 8 * * 7" matches the weekly shape but has no English name.
			return raw
		}
		return fmt.Sprintf("Every %s at %s", weekdays[nums[1]], PadHour(nums[0]))
	case Daily:
		return "Daily at " + PadHour(nums[0])
	default:
		return fmt.Sprintf("Every %d hours", nums[0])
	}
}

package reporting

import (
	"fmt"
	"time"
)

const defaultStatusColor = "#94a3b8"

var statusColors = map[string]string{
	"Active":    "#00F0FF",
	"Inactive":  "#eab308",
	"Graduated": "#3b82f6",
	"Removed":   "#6b7280",
}

// StatusColor returns the chart colour for a student status.
func StatusColor(status string) string {
	if color, ok := statusColors[status]; ok {
		return color
	}
	return defaultStatusColor
}

// MonthLabel renders the short month name, e.g. "Mar".
func MonthLabel(t time.Time) string {
	return t.Format("Jan")
}

// ClockTime renders a 12-hour clock with a zero-padded hour, e.g. "09:30 AM".
func ClockTime(t time.Time) string {
	return t.Format("03:04 PM")
}

// DayLabel returns "Today", "Tomorrow" or a short date such as "Mar 7", comparing
// calendar days in now's location.
func DayLabel(t, now time.Time) string {
	t = t.In(now.Location())
	switch {
	case sameDay(t, now):
		return "Today"
	case sameDay(t, now.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return t.Format("Jan 2")
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// RelativeTime renders how long ago t was: "42s ago", "5 min ago", "3 hr ago", "1 day ago".
func RelativeTime(t, now time.Time) string {
	diff := int64(now.Sub(t) / time.Second)
	if diff < 0 {
		diff = 0
	}

	switch {
	case diff < 60:
		return fmt.Sprintf("%ds ago", diff)
	case diff < 3600:
		return fmt.Sprintf("%d min ago", diff/60)
	case diff < 86400:
		return fmt.Sprintf("%d hr ago", diff/3600)
	}

	days := diff / 86400
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}

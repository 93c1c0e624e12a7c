package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{ago: 0, want: "0s ago"},
		{ago: 59 * time.Second, want: "59s ago"},
		{ago: time.Minute, want: "1 min ago"},
		{ago: 59*time.Minute + 59*time.Second, want: "59 min ago"},
		{ago: time.Hour, want: "1 hr ago"},
		{ago: 23 * time.Hour, want: "23 hr ago"},
		{ago: 24 * time.Hour, want: "1 day ago"},
		{ago: 47 * time.Hour, want: "1 day ago"},
		{ago: 48 * time.Hour, want: "2 days ago"},
		{ago: -time.Minute, want: "0s ago"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(now.Add(-tt.ago), now))
		})
	}
}

func TestDayLabel(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	now := time.Date(2026, 6, 10, 22, 0, 0, 0, loc)

	assert.Equal(t, "Today", DayLabel(time.Date(2026, 6, 10, 23, 59, 0, 0, loc), now))
	assert.Equal(t, "Tomorrow", DayLabel(time.Date(2026, 6, 11, 0, 30, 0, 0, loc), now))
	assert.Equal(t, "Jun 12", DayLabel(time.Date(2026, 6, 12, 9, 0, 0, 0, loc), now))

	// 19:30 UTC on the 10th is already the 11th in now's zone
	assert.Equal(t, "Tomorrow", DayLabel(time.Date(2026, 6, 10, 19, 30, 0, 0, time.UTC), now))
}

func TestClockTimeAndMonth(t *testing.T) {
	assert.Equal(t, "09:05 AM", ClockTime(time.Date(2026, 1, 1, 9, 5, 0, 0, time.UTC)))
	assert.Equal(t, "02:30 PM", ClockTime(time.Date(2026, 1, 1, 14, 30, 0, 0, time.UTC)))
	assert.Equal(t, "12:00 PM", ClockTime(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Mar", MonthLabel(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, "#00F0FF", StatusColor("Active"))
	assert.Equal(t, "#eab308", StatusColor("Inactive"))
	assert.Equal(t, "#3b82f6", StatusColor("Graduated"))
	assert.Equal(t, "#6b7280", StatusColor("Removed"))
	assert.Equal(t, "#94a3b8", StatusColor("Suspended"))
	assert.Equal(t, "#94a3b8", StatusColor(""))
}

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

func daysByDate(days []CalendarDay) map[domain.Date]CalendarDay {
	m := make(map[domain.Date]CalendarDay, len(days))
	for _, d := range days {
		m[d.Date] = d
	}
	return m
}

func TestWalkCalendar(t *testing.T) {
	holidays := map[domain.Date]string{jan(1): "New Year's Day"}

	t.Run("enumerates every date inclusively", func(t *testing.T) {
		cfg := baseConfig(jan(1), jan(7))
		days := WalkCalendar(&cfg, holidays)

		require.Len(t, days, 7)
		require.Equal(t, jan(1), days[0].Date)
		require.Equal(t, jan(7), days[6].Date)
		for _, d := range days {
			require.True(t, d.Included)
			require.Equal(t, CycleWeekday, d.Cycle)
		}
		require.True(t, days[0].IsHoliday)
		require.True(t, days[5].IsWeekend)
		require.True(t, days[6].IsWeekend)
	})

	t.Run("skip weekends drops weekends without separate cycle", func(t *testing.T) {
		cfg := baseConfig(jan(1), jan(7))
		cfg.SkipWeekends = true
		days := daysByDate(WalkCalendar(&cfg, holidays))

		require.False(t, days[jan(6)].Included)
		require.False(t, days[jan(7)].Included)
		require.True(t, days[jan(5)].Included)
	})

	t.Run("skip weekends keeps weekends with separate cycle", func(t *testing.T) {
		cfg := baseConfig(jan(1), jan(7))
		cfg.SkipWeekends = true
		cfg.SeparateWeekendCycle = true
		days := daysByDate(WalkCalendar(&cfg, holidays))

		require.True(t, days[jan(6)].Included)
		require.Equal(t, CycleWeekend, days[jan(6)].Cycle)
		require.Equal(t, CycleWeekday, days[jan(5)].Cycle)
	})

	t.Run("excluded dates are never included", func(t *testing.T) {
		cfg := baseConfig(jan(1), jan(7))
		cfg.ExcludedDates = []domain.Date{jan(3)}
		days := daysByDate(WalkCalendar(&cfg, holidays))

		require.False(t, days[jan(3)].Included)
		require.True(t, days[jan(4)].Included)
	})

	t.Run("holiday cycle", func(t *testing.T) {
		cfg := baseConfig(jan(1), jan(7))
		cfg.SeparateHolidayCycle = true
		cfg.SeparateWeekendCycle = true
		weekendHoliday := map[domain.Date]string{jan(1): "New Year's Day", jan(6): "Unit Day"}
		days := daysByDate(WalkCalendar(&cfg, weekendHoliday))

		require.Equal(t, CycleHoliday, days[jan(1)].Cycle)
		require.Equal(t, CycleHoliday, days[jan(6)].Cycle)
		require.Equal(t, CycleWeekend, days[jan(7)].Cycle)
		require.Equal(t, CycleWeekday, days[jan(2)].Cycle)
	})

	t.Run("holiday without separate cycle stays weekday", func(t *testing.T) {
		cfg := baseConfig(jan(1), jan(2))
		days := daysByDate(WalkCalendar(&cfg, holidays))

		require.True(t, days[jan(1)].IsHoliday)
		require.Equal(t, CycleWeekday, days[jan(1)].Cycle)
	})
}

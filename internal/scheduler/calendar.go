package scheduler

import "github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"

// Cycle 决定某天使用哪一条独立的轮换记录
type Cycle string

const (
	CycleWeekday Cycle = "weekday"
	CycleWeekend Cycle = "weekend"
	CycleHoliday Cycle = "holiday"
)

type CalendarDay struct {
	Date      domain.Date
	IsWeekend bool
	IsHoliday bool
	Included  bool // 是否需要安排值班
	Cycle     Cycle
}

// WalkCalendar 枚举周期内的每一天并判断是否需要排班
func WalkCalendar(cfg *domain.RosterConfig, holidays map[domain.Date]string) []CalendarDay {
	excluded := make(map[domain.Date]bool, len(cfg.ExcludedDates))
	for _, d := range cfg.ExcludedDates {
		excluded[d] = true
	}

	days := make([]CalendarDay, 0, cfg.EndDate.DaysSince(cfg.StartDate)+1)
	for date := cfg.StartDate; date <= cfg.EndDate; date = date.AddDays(1) {
		_, isHoliday := holidays[date]
		day := CalendarDay{
			Date:      date,
			IsWeekend: date.IsWeekend(),
			IsHoliday: isHoliday,
		}

		switch {
		case excluded[date]:
			day.Included = false
		case cfg.SkipWeekends && day.IsWeekend && !cfg.SeparateWeekendCycle:
			// 只有在跳过周末且没有单独的周末轮换时才丢弃周末
			day.Included = false
		default:
			day.Included = true
		}

		switch {
		case cfg.SeparateHolidayCycle && day.IsHoliday:
			day.Cycle = CycleHoliday
		case cfg.SeparateWeekendCycle && day.IsWeekend:
			day.Cycle = CycleWeekend
		default:
			day.Cycle = CycleWeekday
		}

		days = append(days, day)
	}

	return days
}

func hasSeparateCycles(cfg *domain.RosterConfig) bool {
	return cfg.SeparateWeekendCycle || cfg.SeparateHolidayCycle
}

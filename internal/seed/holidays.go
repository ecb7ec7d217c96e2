package seed

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/repository"
)

// nthWeekday 返回某月第 n 个星期 weekday，n 为 -1 时表示最后一个
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) domain.Date {
	if n < 0 {
		last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
		offset := (int(last.Weekday()) - int(weekday) + 7) % 7
		return domain.DateOf(last).AddDays(-offset)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return domain.DateOf(first).AddDays(offset + 7*(n-1))
}

// observed 固定日期的节日落在周六时提前到周五，落在周日时顺延到周一
func observed(date domain.Date) domain.Date {
	switch date.Weekday() {
	case time.Saturday:
		return date.AddDays(-1)
	case time.Sunday:
		return date.AddDays(1)
	default:
		return date
	}
}

// FederalHolidays 返回某一年的美国联邦节假日（按调休后的日期）
func FederalHolidays(year int) []*domain.Holiday {
	return []*domain.Holiday{
		{Date: observed(domain.NewDate(year, time.January, 1)), Name: "New Year's Day"},
		{Date: nthWeekday(year, time.January, time.Monday, 3), Name: "Martin Luther King Jr. Day"},
		{Date: nthWeekday(year, time.February, time.Monday, 3), Name: "Washington's Birthday"},
		{Date: nthWeekday(year, time.May, time.Monday, -1), Name: "Memorial Day"},
		{Date: observed(domain.NewDate(year, time.June, 19)), Name: "Juneteenth"},
		{Date: observed(domain.NewDate(year, time.July, 4)), Name: "Independence Day"},
		{Date: nthWeekday(year, time.September, time.Monday, 1), Name: "Labor Day"},
		{Date: nthWeekday(year, time.October, time.Monday, 2), Name: "Columbus Day"},
		{Date: observed(domain.NewDate(year, time.November, 11)), Name: "Veterans Day"},
		{Date: nthWeekday(year, time.November, time.Thursday, 4), Name: "Thanksgiving Day"},
		{Date: observed(domain.NewDate(year, time.December, 25)), Name: "Christmas Day"},
	}
}

// SeedHolidays 插入某一年的联邦节假日，已存在的日期会被跳过，返回成功插入的数量
func SeedHolidays(r *repository.Repository, year int) int {
	cnt := 0
	for _, holiday := range FederalHolidays(year) {
		if err := r.CreateHoliday(holiday); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.ConstraintName == "holidays_date_key" {
				slog.Info("节假日已存在，跳过", "date", holiday.Date, "name", holiday.Name)
				continue
			}
			slog.Error("无法插入节假日", "date", holiday.Date, "error", err)
			continue
		}
		cnt++
	}
	return cnt
}

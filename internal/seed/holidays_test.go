package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

func TestFederalHolidays2024(t *testing.T) {
	got := make(map[string]domain.Date)
	for _, h := range FederalHolidays(2024) {
		got[h.Name] = h.Date
	}

	want := map[string]domain.Date{
		"New Year's Day":             domain.NewDate(2024, time.January, 1),
		"Martin Luther King Jr. Day": domain.NewDate(2024, time.January, 15),
		"Washington's Birthday":      domain.NewDate(2024, time.February, 19),
		"Memorial Day":               domain.NewDate(2024, time.May, 27),
		"Juneteenth":                 domain.NewDate(2024, time.June, 19),
		"Independence Day":           domain.NewDate(2024, time.July, 4),
		"Labor Day":                  domain.NewDate(2024, time.September, 2),
		"Columbus Day":               domain.NewDate(2024, time.October, 14),
		"Veterans Day":               domain.NewDate(2024, time.November, 11),
		"Thanksgiving Day":           domain.NewDate(2024, time.November, 28),
		"Christmas Day":              domain.NewDate(2024, time.December, 25),
	}
	require.Equal(t, want, got)
}

func TestFederalHolidaysObserved(t *testing.T) {
	byName := func(year int) map[string]domain.Date {
		m := make(map[string]domain.Date)
		for _, h := range FederalHolidays(year) {
			m[h.Name] = h.Date
		}
		return m
	}

	// 2021-07-04 是星期日，2022-12-25 是星期日，2026-07-04 是星期六
	require.Equal(t, domain.NewDate(2021, time.July, 5), byName(2021)["Independence Day"])
	require.Equal(t, domain.NewDate(2022, time.December, 26), byName(2022)["Christmas Day"])
	require.Equal(t, domain.NewDate(2026, time.July, 3), byName(2026)["Independence Day"])
	// 2025 年 5 月最后一个星期一
	require.Equal(t, domain.NewDate(2025, time.May, 26), byName(2025)["Memorial Day"])
}

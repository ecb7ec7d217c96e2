package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

// 2024-01-01 是星期一
func jan(day int) domain.Date {
	return domain.NewDate(2024, time.January, day)
}

func newSoldier(id int64, rank, lastName string, daysSince int) *domain.Soldier {
	return &domain.Soldier{
		ID:                id,
		FirstName:         "John",
		LastName:          lastName,
		Rank:              rank,
		DaysSinceLastDuty: daysSince,
		IsActive:          true,
	}
}

func baseConfig(start, end domain.Date) domain.RosterConfig {
	return domain.RosterConfig{
		StartDate:      start,
		EndDate:        end,
		NatureOfDuty:   "Guard Detail",
		SoldiersPerDay: 1,
	}
}

func mustSchedule(t *testing.T, parameters *Parameters, input *Input) *Result {
	t.Helper()
	s, err := New(parameters, input)
	require.NoError(t, err)
	res, err := s.Schedule()
	require.NoError(t, err)
	return res
}

// index 把结果整理为 士兵 -> 日期 -> 排班
func index(assignments []domain.Assignment) map[int64]map[domain.Date]domain.Assignment {
	m := make(map[int64]map[domain.Date]domain.Assignment)
	for _, a := range assignments {
		if _, exists := m[a.SoldierID]; !exists {
			m[a.SoldierID] = make(map[domain.Date]domain.Assignment)
		}
		m[a.SoldierID][a.Date] = a
	}
	return m
}

func dutyDates(assignments []domain.Assignment, soldierID int64) []domain.Date {
	var dates []domain.Date
	for _, a := range assignments {
		if a.SoldierID == soldierID && a.IsDuty {
			dates = append(dates, a.Date)
		}
	}
	return dates
}

func dutyOn(assignments []domain.Assignment, date domain.Date) []int64 {
	var ids []int64
	for _, a := range assignments {
		if a.Date == date && a.IsDuty {
			ids = append(ids, a.SoldierID)
		}
	}
	return ids
}

func codeOf(a domain.Assignment) string {
	return a.Code()
}

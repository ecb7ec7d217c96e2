package cache

import (
	"encoding/json"
	"strconv"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/scheduler"
	"github.com/zeebo/xxh3"
)

// keySoldier 只包含会影响排班结果的字段
type keySoldier struct {
	ID                int64  `json:"id"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Rank              string `json:"rank"`
	DaysSinceLastDuty int    `json:"daysSinceLastDuty"`
}

type keyAppointment struct {
	SoldierID     int64       `json:"soldierID"`
	StartDate     domain.Date `json:"startDate"`
	EndDate       domain.Date `json:"endDate"`
	ExceptionCode string      `json:"exceptionCode"`
}

type keyPayload struct {
	Config       domain.RosterConfig    `json:"config"`
	Exceptions   domain.ExceptionMap    `json:"exceptions"`
	Soldiers     []keySoldier           `json:"soldiers"`
	Appointments []keyAppointment       `json:"appointments"`
	Holidays     map[domain.Date]string `json:"holidays"`
}

// Key 根据排班输入计算缓存键，输入相同则键相同
// 士兵和 Appointment 的顺序会影响结果，所以保留原有顺序
// 其他排班表不参与计算，调用方只对不带跨表冲突的输入使用这个键
func Key(input *scheduler.Input) (string, error) {
	payload := keyPayload{
		Config:       input.Config,
		Exceptions:   input.Exceptions,
		Soldiers:     make([]keySoldier, 0, len(input.Soldiers)),
		Appointments: make([]keyAppointment, 0, len(input.Appointments)),
		Holidays:     make(map[domain.Date]string, len(input.Holidays)),
	}
	for _, s := range input.Soldiers {
		if s == nil {
			continue
		}
		payload.Soldiers = append(payload.Soldiers, keySoldier{
			ID:                s.ID,
			FirstName:         s.FirstName,
			LastName:          s.LastName,
			Rank:              s.Rank,
			DaysSinceLastDuty: s.DaysSinceLastDuty,
		})
	}
	for _, a := range input.Appointments {
		if a == nil {
			continue
		}
		payload.Appointments = append(payload.Appointments, keyAppointment{
			SoldierID:     a.SoldierID,
			StartDate:     a.StartDate,
			EndDate:       a.EndDate,
			ExceptionCode: a.ExceptionCode,
		})
	}
	for _, h := range input.Holidays {
		if h != nil {
			payload.Holidays[h.Date] = h.Name
		}
	}

	// encoding/json 对 map 的键排序，序列化结果是确定的
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	return strconv.FormatUint(xxh3.Hash(data), 16), nil
}

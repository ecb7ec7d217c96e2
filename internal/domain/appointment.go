package domain

import "time"

// Appointment 表示请假、出差（TDY）或其他排班表产生的值班/休息区间，起止日期均包含在内
type Appointment struct {
	ID            int64     `json:"id"`
	SoldierID     int64     `json:"soldierID"`
	StartDate     Date      `json:"startDate"`
	EndDate       Date      `json:"endDate"`
	ExceptionCode string    `json:"exceptionCode"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (a *Appointment) Covers(date Date) bool {
	return date >= a.StartDate && date <= a.EndDate
}

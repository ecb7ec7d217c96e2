package scheduler

import "github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"

type unavailableReason int

const (
	available unavailableReason = iota
	// 当天已有值班或休息
	reasonAssigned
	// 用户填写了例外
	reasonUserException
	// 请假、出差等
	reasonAppointment
	// 仍在上一次值班后的休息期内
	reasonResting
	// 在其他排班表中当天值班
	reasonCrossRoster
)

// availability 判断士兵当天能否安排新的值班，不可用时同时给出例外代码（如果有）
func (s *Scheduler) availability(st *runState, soldierID int64, date domain.Date) (unavailableReason, string) {
	if st.hasDuty(soldierID, date) {
		return reasonAssigned, ""
	}
	if st.hasPass(soldierID, date) {
		return reasonAssigned, domain.CodePass
	}
	if code, ok := s.exceptions.Get(soldierID, date); ok {
		return reasonUserException, code
	}
	if code, ok := s.appointmentCode(soldierID, date); ok {
		return reasonAppointment, code
	}
	if st.restingOn(soldierID, date, s.config.DaysOffAfterDuty) {
		return reasonResting, ""
	}
	if code, ok := s.conflicts.conflict(soldierID, date); ok {
		return reasonCrossRoster, code
	}
	return available, ""
}

// appointmentCode 返回覆盖该日期的第一个 Appointment 的例外代码
func (s *Scheduler) appointmentCode(soldierID int64, date domain.Date) (string, bool) {
	for _, appointment := range s.appointments[soldierID] {
		if appointment.Covers(date) {
			if appointment.ExceptionCode == "" {
				return domain.CodeAbsent, true
			}
			return appointment.ExceptionCode, true
		}
	}
	return "", false
}

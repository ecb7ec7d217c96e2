package utils

import (
	"fmt"
	"regexp"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

var exceptionCodePattern = regexp.MustCompile(`^[A-Z]{1,8}$`)

func ValidateExceptionCode(code string) error {
	if !exceptionCodePattern.MatchString(code) {
		return fmt.Errorf("例外代码 %q 格式错误，应为 1 到 8 个大写字母", code)
	}
	return nil
}

func ValidateAppointment(appointment *domain.Appointment) error {
	if appointment.EndDate < appointment.StartDate {
		return fmt.Errorf("结束日期 %s 不能早于开始日期 %s", appointment.EndDate, appointment.StartDate)
	}

	// 空代码在排班时按 A 处理
	if appointment.ExceptionCode != "" {
		if err := ValidateExceptionCode(appointment.ExceptionCode); err != nil {
			return err
		}
	}

	return nil
}

// ValidateRosterExceptions 检查例外是否都属于排班表中的士兵，且日期落在排班周期或其后的休息期内
func ValidateRosterExceptions(roster *domain.Roster, exceptions domain.ExceptionMap) error {
	last := roster.Config.EndDate.AddDays(max(roster.Config.DaysOffAfterDuty, 0))

	for soldierID, byDate := range exceptions {
		if !roster.HasSoldier(soldierID) {
			return fmt.Errorf("士兵 %d 不在排班表中", soldierID)
		}
		for date, code := range byDate {
			if date < roster.Config.StartDate || date > last {
				return fmt.Errorf("士兵 %d 的例外日期 %s 不在排班周期内", soldierID, date)
			}
			if err := ValidateExceptionCode(code); err != nil {
				return fmt.Errorf("士兵 %d 在 %s 的%w", soldierID, date, err)
			}
		}
	}

	return nil
}

// ValidateSoldierIDs 检查排班表中的士兵是否有重复
func ValidateSoldierIDs(ids []int64) error {
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("士兵 %d 重复出现", id)
		}
		seen[id] = true
	}
	return nil
}

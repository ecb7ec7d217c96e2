package scheduler

import (
	"slices"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

// resolved 是某士兵某天按优先级合并后的最终状态
type resolved struct {
	duty        bool
	requirement int
	code        string
}

func (r resolved) empty() bool {
	return !r.duty && r.code == ""
}

func (r resolved) event() Event {
	return Event{Duty: r.duty, Code: r.code}
}

// resolve 按固定优先级合并所有来源：
// 用户例外 > 本次值班 > 本次生成的休息 > 其他排班表冲突 > Appointment
func (s *Scheduler) resolve(st *runState, soldierID int64, date domain.Date) resolved {
	if code, ok := s.exceptions.Get(soldierID, date); ok {
		return resolved{code: code}
	}
	if requirement, ok := st.duty[soldierID][date]; ok {
		return resolved{duty: true, requirement: requirement}
	}
	if st.hasPass(soldierID, date) {
		return resolved{code: domain.CodePass}
	}
	if code, ok := s.conflicts.conflict(soldierID, date); ok {
		return resolved{code: code}
	}
	if code, ok := s.appointmentCode(soldierID, date); ok {
		return resolved{code: code}
	}
	return resolved{}
}

// assemble 在所有来源都计算完之后统一生成最终结果
// 覆盖排班周期内的每一天，以及落在周期结束之后的休息日
func (s *Scheduler) assemble(st *runState) []domain.Assignment {
	dates := make([]domain.Date, 0, len(s.days))
	for _, day := range s.days {
		dates = append(dates, day.Date)
	}

	var trailing []domain.Date
	seen := make(map[domain.Date]bool)
	for _, byDate := range st.pass {
		for date := range byDate {
			if date > s.config.EndDate && !seen[date] {
				seen[date] = true
				trailing = append(trailing, date)
			}
		}
	}
	slices.Sort(trailing)
	dates = append(dates, trailing...)

	assignments := make([]domain.Assignment, 0)
	for _, date := range dates {
		for _, soldier := range s.soldiers {
			r := s.resolve(st, soldier.ID, date)
			if r.empty() {
				continue
			}

			assignment := domain.Assignment{
				SoldierID: soldier.ID,
				Date:      date,
				IsDuty:    r.duty,
			}
			if r.duty {
				requirement := r.requirement
				assignment.Requirement = &requirement
			} else {
				code := r.code
				assignment.ExceptionCode = &code
			}
			assignments = append(assignments, assignment)
		}
	}

	return assignments
}

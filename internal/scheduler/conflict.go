package scheduler

import (
	"strings"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

// ConflictCode 根据另一个排班表的勤务性质推导在当前排班表中显示的例外代码
func ConflictCode(natureOfDuty string) string {
	label := strings.ToUpper(strings.TrimSpace(natureOfDuty))
	switch {
	case label == domain.CodeCQ || strings.Contains(label, "CHARGE OF QUARTERS"):
		return domain.CodeCQ
	case strings.Contains(label, "STAFF DUTY"):
		return domain.CodeStaffDuty
	default:
		return domain.CodeDetail
	}
}

type otherRosterDuty struct {
	code string
	duty map[int64]map[domain.Date]bool
}

// conflictResolver 只读取其他排班表中的值班记录，其他排班表的休息日由调用方转换成 Appointment 传入
type conflictResolver struct {
	rosters []otherRosterDuty
}

func newConflictResolver(others []OtherRoster) *conflictResolver {
	r := &conflictResolver{
		rosters: make([]otherRosterDuty, 0, len(others)),
	}

	for _, other := range others {
		entry := otherRosterDuty{
			code: ConflictCode(other.NatureOfDuty),
			duty: make(map[int64]map[domain.Date]bool),
		}
		for _, a := range other.Assignments {
			if !a.IsDuty {
				continue
			}
			if _, exists := entry.duty[a.SoldierID]; !exists {
				entry.duty[a.SoldierID] = make(map[domain.Date]bool)
			}
			entry.duty[a.SoldierID][a.Date] = true
		}
		r.rosters = append(r.rosters, entry)
	}

	return r
}

// conflict 按调用方给定的顺序检查，第一个匹配的排班表决定例外代码
func (r *conflictResolver) conflict(soldierID int64, date domain.Date) (string, bool) {
	for _, roster := range r.rosters {
		if roster.duty[soldierID][date] {
			return roster.code, true
		}
	}
	return "", false
}

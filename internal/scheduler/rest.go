package scheduler

import "github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"

// runState 只在一次 Schedule 调用中存在，结束后丢弃
type runState struct {
	duty     map[int64]map[domain.Date]int  // 士兵 -> 日期 -> 军衔要求下标
	pass     map[int64]map[domain.Date]bool // 本次生成的休息日
	lastDuty map[int64]map[Cycle]domain.Date

	overall  *Tracker
	rotation map[Cycle]*Tracker // 未单独轮换周末/节假日时为 nil

	display    map[int64]map[domain.Date]string
	shortfalls []Shortfall
}

func newRunState(soldiers []*domain.Soldier, separateCycles bool) *runState {
	baselines := make(map[int64]int, len(soldiers))
	for _, soldier := range soldiers {
		baselines[soldier.ID] = soldier.DaysSinceLastDuty
	}

	st := &runState{
		duty:     make(map[int64]map[domain.Date]int),
		pass:     make(map[int64]map[domain.Date]bool),
		lastDuty: make(map[int64]map[Cycle]domain.Date),
		overall:  NewTracker(baselines),
		display:  make(map[int64]map[domain.Date]string),
	}

	if separateCycles {
		st.rotation = map[Cycle]*Tracker{
			CycleWeekday: NewTracker(baselines),
			CycleWeekend: NewTracker(baselines),
			CycleHoliday: NewTracker(baselines),
		}
	}

	return st
}

func (st *runState) hasDuty(soldierID int64, date domain.Date) bool {
	_, ok := st.duty[soldierID][date]
	return ok
}

func (st *runState) hasPass(soldierID int64, date domain.Date) bool {
	return st.pass[soldierID][date]
}

// rotationTracker 返回决定轮换顺序的计数器
func (st *runState) rotationTracker(cycle Cycle) *Tracker {
	if st.rotation == nil {
		return st.overall
	}
	return st.rotation[cycle]
}

// lastDutyAcrossCycles 返回所有轮换中最近的一次值班日期
func (st *runState) lastDutyAcrossCycles(soldierID int64) (domain.Date, bool) {
	var last domain.Date
	found := false
	for _, date := range st.lastDuty[soldierID] {
		if !found || date > last {
			last = date
			found = true
		}
	}
	return last, found
}

// restingOn 判断士兵在 date 之前的 daysOff 个自然日内是否值过班（不区分轮换）
func (st *runState) restingOn(soldierID int64, date domain.Date, daysOff int) bool {
	last, ok := st.lastDutyAcrossCycles(soldierID)
	if !ok {
		return false
	}
	gap := date.DaysSince(last)
	return gap > 0 && gap <= daysOff
}

// recordDuty 记录值班，并在之后的 daysOff 天生成休息日
func (st *runState) recordDuty(soldierID int64, day CalendarDay, requirement int, daysOff int, exceptions domain.ExceptionMap) {
	if _, exists := st.duty[soldierID]; !exists {
		st.duty[soldierID] = make(map[domain.Date]int)
	}
	st.duty[soldierID][day.Date] = requirement

	if _, exists := st.lastDuty[soldierID]; !exists {
		st.lastDuty[soldierID] = make(map[Cycle]domain.Date)
	}
	st.lastDuty[soldierID][day.Cycle] = day.Date

	for offset := 1; offset <= daysOff; offset++ {
		date := day.Date.AddDays(offset)

		// 用户填写的例外永远不会被覆盖
		if _, exists := exceptions.Get(soldierID, date); exists {
			continue
		}
		// 与已有的值班重叠时值班优先，但不影响之后的天数
		if st.hasDuty(soldierID, date) {
			continue
		}

		if _, exists := st.pass[soldierID]; !exists {
			st.pass[soldierID] = make(map[domain.Date]bool)
		}
		st.pass[soldierID][date] = true
	}
}

func (st *runState) recordDisplay(soldierID int64, date domain.Date, value string) {
	if _, exists := st.display[soldierID]; !exists {
		st.display[soldierID] = make(map[domain.Date]string)
	}
	st.display[soldierID][date] = value
}

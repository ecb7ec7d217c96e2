package scheduler

import (
	"strconv"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

type counterState int

const (
	counterActive counterState = iota
	counterSuspended
)

type dutyCounter struct {
	state          counterState
	counter        int
	suspendedValue *int // 进入 A/P 状态时冻结的计数
}

// Event 是某士兵某天的状态：值班，或者一个例外代码（可以为空）
type Event struct {
	Duty bool
	Code string
}

// Tracker 维护每个士兵距上次值班的天数
// 只有当天有人被安排值班（"有勤务"）时才计数，A/P 期间冻结，结束后恢复
type Tracker struct {
	counters map[int64]*dutyCounter
}

func NewTracker(baselines map[int64]int) *Tracker {
	t := &Tracker{
		counters: make(map[int64]*dutyCounter, len(baselines)),
	}
	for id, baseline := range baselines {
		t.counters[id] = &dutyCounter{state: counterActive, counter: max(baseline, 0)}
	}
	return t
}

func (t *Tracker) get(soldierID int64) *dutyCounter {
	c, exists := t.counters[soldierID]
	if !exists {
		c = &dutyCounter{state: counterActive}
		t.counters[soldierID] = c
	}
	return c
}

func (t *Tracker) Counter(soldierID int64) int {
	return t.get(soldierID).counter
}

// Step 在一个需要排班的日期上推进某士兵的计数，并返回当天的显示值
func (t *Tracker) Step(soldierID int64, event Event, detailMade bool) string {
	c := t.get(soldierID)

	if event.Duty {
		c.counter = 0
		c.suspendedValue = nil
		c.state = counterActive
		return strconv.Itoa(c.counter)
	}

	switch event.Code {
	case domain.CodeAbsent, domain.CodePass:
		if c.state == counterActive {
			if detailMade {
				c.counter++
			}
			frozen := c.counter
			c.suspendedValue = &frozen
			c.state = counterSuspended
		}
		displayNumber := 0
		if c.suspendedValue != nil {
			displayNumber = *c.suspendedValue
		}
		return event.Code + strconv.Itoa(displayNumber)
	default:
		if c.state == counterSuspended {
			if c.suspendedValue != nil {
				c.counter = *c.suspendedValue
			}
			c.suspendedValue = nil
			c.state = counterActive
		}
		if detailMade {
			c.counter++
		}
	}

	switch event.Code {
	case "":
		return strconv.Itoa(c.counter)
	case domain.CodeDetail, domain.CodeUnexcused:
		return event.Code + strconv.Itoa(c.counter)
	default:
		return event.Code
	}
}

// Snapshot 返回所有士兵当前的计数，可以作为下一次排班的基线
func (t *Tracker) Snapshot() map[int64]int {
	snapshot := make(map[int64]int, len(t.counters))
	for id, c := range t.counters {
		snapshot[id] = c.counter
	}
	return snapshot
}

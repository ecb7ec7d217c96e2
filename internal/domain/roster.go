package domain

import (
	"slices"
	"time"
)

// RankRange 是闭区间 [From, To]
type RankRange struct {
	From string `json:"from" yaml:"from" toml:"from"`
	To   string `json:"to" yaml:"to" toml:"to"`
}

type Exclusions struct {
	Ranks  []string `json:"ranks,omitempty" yaml:"ranks,omitempty" toml:"ranks,omitempty"`
	Groups []string `json:"groups,omitempty" yaml:"groups,omitempty" toml:"groups,omitempty"`
}

// RankRequirement 描述每天需要多少名符合军衔条件的士兵
// Ranks / Group / Range 至多设置其一，都不设置时表示不限军衔
type RankRequirement struct {
	Quantity       int        `json:"quantity" yaml:"quantity" toml:"quantity"`
	Ranks          []string   `json:"ranks,omitempty" yaml:"ranks,omitempty" toml:"ranks,omitempty"`
	Group          string     `json:"group,omitempty" yaml:"group,omitempty" toml:"group,omitempty"`
	Range          *RankRange `json:"range,omitempty" yaml:"range,omitempty" toml:"range,omitempty"`
	PreferredRanks []string   `json:"preferredRanks,omitempty" yaml:"preferredRanks,omitempty" toml:"preferredRanks,omitempty"`
	FallbackRanks  []string   `json:"fallbackRanks,omitempty" yaml:"fallbackRanks,omitempty" toml:"fallbackRanks,omitempty"`
	ExcludedRanks  []string   `json:"excludedRanks,omitempty" yaml:"excludedRanks,omitempty" toml:"excludedRanks,omitempty"`
	ExcludedGroups []string   `json:"excludedGroups,omitempty" yaml:"excludedGroups,omitempty" toml:"excludedGroups,omitempty"`
}

type RosterConfig struct {
	StartDate            Date              `json:"startDate" yaml:"startDate" toml:"startDate"`
	EndDate              Date              `json:"endDate" yaml:"endDate" toml:"endDate"`
	NatureOfDuty         string            `json:"natureOfDuty" yaml:"natureOfDuty" toml:"natureOfDuty"`
	SoldiersPerDay       int               `json:"soldiersPerDay" yaml:"soldiersPerDay" toml:"soldiersPerDay"`
	DaysOffAfterDuty     int               `json:"daysOffAfterDuty" yaml:"daysOffAfterDuty" toml:"daysOffAfterDuty"`
	SkipWeekends         bool              `json:"skipWeekends" yaml:"skipWeekends" toml:"skipWeekends"`
	SeparateWeekendCycle bool              `json:"separateWeekendCycle" yaml:"separateWeekendCycle" toml:"separateWeekendCycle"`
	SeparateHolidayCycle bool              `json:"separateHolidayCycle" yaml:"separateHolidayCycle" toml:"separateHolidayCycle"`
	ExcludedDates        []Date            `json:"excludedDates,omitempty" yaml:"excludedDates,omitempty" toml:"excludedDates,omitempty"`
	RankRequirements     []RankRequirement `json:"rankRequirements,omitempty" yaml:"rankRequirements,omitempty" toml:"rankRequirements,omitempty"`
	GlobalExclusions     Exclusions        `json:"globalExclusions" yaml:"globalExclusions,omitempty" toml:"globalExclusions,omitempty"`
}

// ExceptionMap 是用户手工填写的例外：士兵 ID -> 日期 -> 例外代码
type ExceptionMap map[int64]map[Date]string

func (m ExceptionMap) Get(soldierID int64, date Date) (string, bool) {
	byDate, ok := m[soldierID]
	if !ok {
		return "", false
	}
	code, ok := byDate[date]
	return code, ok
}

// Clone 深拷贝，生成排班时不允许修改调用方传入的数据
func (m ExceptionMap) Clone() ExceptionMap {
	clone := make(ExceptionMap, len(m))
	for soldierID, byDate := range m {
		inner := make(map[Date]string, len(byDate))
		for date, code := range byDate {
			inner[date] = code
		}
		clone[soldierID] = inner
	}
	return clone
}

type Roster struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	Config     RosterConfig `json:"config"`
	Exceptions ExceptionMap `json:"exceptions"`
	SoldierIDs []int64      `json:"soldierIDs"`
	CreatedAt  time.Time    `json:"createdAt"`
	Version    int32        `json:"-"`
}

func (r *Roster) HasSoldier(id int64) bool {
	return slices.Contains(r.SoldierIDs, id)
}

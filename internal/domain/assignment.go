package domain

import "time"

const (
	CodePass       = "P"
	CodeAbsent     = "A"
	CodeDetail     = "D"
	CodeUnexcused  = "U"
	CodeCQ         = "CQ"
	CodeStaffDuty  = "SD"
	CodeTDY        = "TDY"
	CodeLeave      = "L"
	CodeSick       = "S"
	CodeExempt     = "EX"
	CodeRestDay    = "R"
	CodeHolidayOff = "H"
)

// Assignment 是排班引擎的输出：某士兵某天要么值班，要么带有一个例外代码
type Assignment struct {
	SoldierID     int64   `json:"soldierID"`
	Date          Date    `json:"date"`
	IsDuty        bool    `json:"isDuty"`
	ExceptionCode *string `json:"exceptionCode"`         // 值班时为 nil
	Requirement   *int    `json:"requirement,omitempty"` // 值班时对应的军衔要求下标
}

func (a *Assignment) Code() string {
	if a.ExceptionCode == nil {
		return ""
	}
	return *a.ExceptionCode
}

// RosterAssignments 是某个排班表持久化后的排班结果
type RosterAssignments struct {
	RosterID    int64        `json:"rosterID"`
	Assignments []Assignment `json:"assignments"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// RosterBaseline 记录某士兵在排班表中的计数
// Start 在第一次保存排班结果时固定下来，之后重新生成都从它开始
// End 是最近一次生成结束时的计数，结束排班表时写回士兵
type RosterBaseline struct {
	SoldierID int64 `json:"soldierID"`
	Start     int   `json:"start"`
	End       int   `json:"end"`
}

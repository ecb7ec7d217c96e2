package scheduler

import "github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"

// StaffingPolicy 决定可用人数不足时的处理方式，每个部署只应选择一种
type StaffingPolicy string

const (
	StaffingPolicyUnderfill StaffingPolicy = "underfill" // 能排几个排几个，记录缺口后继续
	StaffingPolicyStrict    StaffingPolicy = "strict"    // 直接报错，不返回任何排班结果
)

const DefaultMaxPeriodDays = 3660

// 排班引擎参数
type Parameters struct {
	StaffingPolicy StaffingPolicy
	MaxPeriodDays  int // 排班周期的最大天数，防止错误的日期导致超长循环
}

func DefaultParameters() *Parameters {
	return &Parameters{
		StaffingPolicy: StaffingPolicyUnderfill,
		MaxPeriodDays:  DefaultMaxPeriodDays,
	}
}

// OtherRoster 是与当前排班表日期重叠的另一个排班表已经生成的结果
type OtherRoster struct {
	Name         string
	NatureOfDuty string
	Assignments  []domain.Assignment
}

// Input 中的所有数据在生成过程中都只读
type Input struct {
	Config       domain.RosterConfig
	Exceptions   domain.ExceptionMap
	Soldiers     []*domain.Soldier
	Appointments []*domain.Appointment
	Holidays     []*domain.Holiday
	OtherRosters []OtherRoster // 按冲突检查的顺序排列，先匹配者优先
}

// Shortfall 记录 underfill 策略下某天某项要求的缺口
type Shortfall struct {
	Date        domain.Date `json:"date"`
	Requirement int         `json:"requirement"`
	Required    int         `json:"required"`
	Available   int         `json:"available"`
}

type Result struct {
	Assignments   []domain.Assignment              `json:"assignments"`
	DaysSinceDuty map[int64]int                    `json:"daysSinceDuty"` // 周期结束时每个士兵的距上次值班天数
	Display       map[int64]map[domain.Date]string `json:"display"`
	Shortfalls    []Shortfall                      `json:"shortfalls"`
}

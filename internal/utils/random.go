package utils

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

var commonFirstNames = []string{
	"James", "Michael", "Robert", "John", "David", "William", "Richard", "Joseph", "Thomas", "Daniel",
	"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Barbara", "Susan", "Jessica", "Sarah", "Karen",
}
var commonLastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez",
	"Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
}

// 连队里低级士兵最多，军官最少
var weightedRanks = []string{
	"PVT", "PV2", "PV2", "PFC", "PFC", "PFC", "SPC", "SPC", "SPC", "SPC",
	"CPL", "SGT", "SGT", "SGT", "SSG", "SSG", "SFC", "WO1", "2LT", "1LT", "CPT",
}

func GenerateRandomSoldier() *domain.Soldier {
	return &domain.Soldier{
		FirstName:         commonFirstNames[rand.Intn(len(commonFirstNames))],
		LastName:          commonLastNames[rand.Intn(len(commonLastNames))],
		Rank:              weightedRanks[rand.Intn(len(weightedRanks))],
		DaysSinceLastDuty: rand.Intn(15),
		IsActive:          rand.Intn(10) != 0,
	}
}

var letters = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
var digits = "0123456789"

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var natureOfDuties = []string{"Charge of Quarters", "Staff Duty", "Guard Detail", "Motor Pool Detail", "Barracks Detail"}

// GenerateRandomRosterConfig 生成从 start 开始、一到两个月的排班配置
func GenerateRandomRosterConfig(start domain.Date) domain.RosterConfig {
	cfg := domain.RosterConfig{
		StartDate:        start,
		EndDate:          start.AddDays(rand.Intn(31) + 27),
		NatureOfDuty:     natureOfDuties[rand.Intn(len(natureOfDuties))],
		SoldiersPerDay:   rand.Intn(2) + 1,
		DaysOffAfterDuty: rand.Intn(3),
		SkipWeekends:     rand.Intn(2) == 0,
	}
	cfg.SeparateWeekendCycle = !cfg.SkipWeekends && rand.Intn(2) == 0
	cfg.SeparateHolidayCycle = rand.Intn(3) == 0

	switch rand.Intn(3) {
	case 0:
		// 不限军衔
	case 1:
		cfg.RankRequirements = []domain.RankRequirement{
			{Quantity: cfg.SoldiersPerDay, Group: "lower_enlisted", FallbackRanks: []string{"CPL"}},
		}
	case 2:
		cfg.SoldiersPerDay = 2
		cfg.RankRequirements = []domain.RankRequirement{
			{Quantity: 1, Range: &domain.RankRange{From: "CPL", To: "SFC"}, PreferredRanks: []string{"SGT"}},
			{Quantity: 1, Group: "lower_enlisted"},
		}
	}
	cfg.GlobalExclusions = domain.Exclusions{Groups: []string{"officer"}}

	return cfg
}

// 使用 Fisher-Yates 洗牌算法来生成一个随机子集
func GenerateRandomSubset(arr []int64) []int64 {
	if len(arr) == 0 {
		return nil
	}

	arrCopy := append([]int64{}, arr...) // 复制数组，避免修改原数组

	for i := 0; i < len(arrCopy)-1; i++ {
		j := rand.Intn(len(arrCopy)-i) + i
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	l := rand.Intn(len(arrCopy)) + 1
	return arrCopy[:l]
}

var appointmentCodes = []string{domain.CodeLeave, domain.CodeTDY, domain.CodeSick, domain.CodeAbsent}

// GenerateRandomAppointment 生成一个落在 [start, end] 内、最多两周的 Appointment
func GenerateRandomAppointment(soldierID int64, start, end domain.Date) *domain.Appointment {
	span := end.DaysSince(start)
	from := start.AddDays(rand.Intn(span + 1))
	to := from.AddDays(rand.Intn(14))
	if to > end {
		to = end
	}

	return &domain.Appointment{
		SoldierID:     soldierID,
		StartDate:     from,
		EndDate:       to,
		ExceptionCode: appointmentCodes[rand.Intn(len(appointmentCodes))],
		Reason:        "随机生成" + GenerateRandomID(2, 4),
	}
}

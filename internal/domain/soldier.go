package domain

import "time"

type Soldier struct {
	ID                int64     `json:"id"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Rank              string    `json:"rank"`
	DaysSinceLastDuty int       `json:"daysSinceLastDuty"` // 没有计算历史时以此为准
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	Version           int32     `json:"-"`
}

// ParsedRank 返回士兵军衔在全序中的位置，无法识别时第二个返回值为 false
func (s *Soldier) ParsedRank() (Rank, bool) {
	return ParseRank(s.Rank)
}

func (s *Soldier) DisplayName() string {
	return s.Rank + " " + s.LastName + ", " + s.FirstName
}

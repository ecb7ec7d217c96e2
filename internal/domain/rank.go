package domain

import (
	"fmt"
	"strings"
)

// RankGroup 是军衔所属的大类
type RankGroup int

const (
	RankGroupUnknown RankGroup = iota
	RankGroupLowerEnlisted
	RankGroupNCO
	RankGroupWarrant
	RankGroupOfficer
)

var rankGroupNames = map[RankGroup]string{
	RankGroupLowerEnlisted: "lower_enlisted",
	RankGroupNCO:           "nco",
	RankGroupWarrant:       "warrant",
	RankGroupOfficer:       "officer",
}

func (g RankGroup) String() string {
	if name, ok := rankGroupNames[g]; ok {
		return name
	}
	return "unknown"
}

func ParseRankGroup(s string) (RankGroup, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for group, groupName := range rankGroupNames {
		if groupName == name {
			return group, nil
		}
	}
	return RankGroupUnknown, fmt.Errorf("未知的军衔分组 %q", s)
}

// Rank 是军衔在全序中的位置，从 1 开始，0 表示无法识别的军衔
type Rank int

type rankInfo struct {
	abbr  string
	group RankGroup
}

// rankTable 按从低到高的顺序排列，下标 + 1 即为 Rank 的值
var rankTable = []rankInfo{
	{"PVT", RankGroupLowerEnlisted},
	{"PV2", RankGroupLowerEnlisted},
	{"PFC", RankGroupLowerEnlisted},
	{"SPC", RankGroupLowerEnlisted},
	{"CPL", RankGroupNCO},
	{"SGT", RankGroupNCO},
	{"SSG", RankGroupNCO},
	{"SFC", RankGroupNCO},
	{"MSG", RankGroupNCO},
	{"1SG", RankGroupNCO},
	{"SGM", RankGroupNCO},
	{"CSM", RankGroupNCO},
	{"SMA", RankGroupNCO},
	{"WO1", RankGroupWarrant},
	{"CW2", RankGroupWarrant},
	{"CW3", RankGroupWarrant},
	{"CW4", RankGroupWarrant},
	{"CW5", RankGroupWarrant},
	{"2LT", RankGroupOfficer},
	{"1LT", RankGroupOfficer},
	{"CPT", RankGroupOfficer},
	{"MAJ", RankGroupOfficer},
	{"LTC", RankGroupOfficer},
	{"COL", RankGroupOfficer},
	{"BG", RankGroupOfficer},
	{"MG", RankGroupOfficer},
	{"LTG", RankGroupOfficer},
	{"GEN", RankGroupOfficer},
}

var rankAliases = map[string]string{
	"PV1": "PVT",
	"E1":  "PVT",
	"E2":  "PV2",
	"E3":  "PFC",
	"E4":  "SPC",
	"E5":  "SGT",
	"E6":  "SSG",
	"E7":  "SFC",
	"E8":  "MSG",
	"E9":  "SGM",
	"W1":  "WO1",
	"W2":  "CW2",
	"W3":  "CW3",
	"W4":  "CW4",
	"W5":  "CW5",
	"O1":  "2LT",
	"O2":  "1LT",
	"O3":  "CPT",
	"O4":  "MAJ",
	"O5":  "LTC",
	"O6":  "COL",
}

const RankUnknown Rank = 0

// ParseRank 解析军衔缩写（不区分大小写，支持 E1/W1/O1 等薪级写法）
func ParseRank(s string) (Rank, bool) {
	abbr := strings.ToUpper(strings.TrimSpace(s))
	if alias, ok := rankAliases[abbr]; ok {
		abbr = alias
	}
	for i, info := range rankTable {
		if info.abbr == abbr {
			return Rank(i + 1), true
		}
	}
	return RankUnknown, false
}

func (r Rank) Valid() bool {
	return r > 0 && int(r) <= len(rankTable)
}

func (r Rank) String() string {
	if !r.Valid() {
		return ""
	}
	return rankTable[r-1].abbr
}

func (r Rank) Group() RankGroup {
	if !r.Valid() {
		return RankGroupUnknown
	}
	return rankTable[r-1].group
}

// ParseRanks 解析一组军衔，任何一个无法识别都会返回错误
func ParseRanks(list []string) ([]Rank, error) {
	ranks := make([]Rank, 0, len(list))
	for _, s := range list {
		rank, ok := ParseRank(s)
		if !ok {
			return nil, fmt.Errorf("无法识别的军衔 %q", s)
		}
		ranks = append(ranks, rank)
	}
	return ranks, nil
}

package scheduler

import (
	"cmp"
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

type candidate struct {
	soldier   *domain.Soldier
	rank      domain.Rank
	daysSince int
	preferred bool
	fallback  bool
}

func newCandidate(soldier *domain.Soldier, rule *requirementRule, daysSince int) candidate {
	rank, _ := soldier.ParsedRank()
	return candidate{
		soldier:   soldier,
		rank:      rank,
		daysSince: daysSince,
		preferred: rule.preferred[rank],
		fallback:  rule.fallback[rank],
	}
}

// compareCandidates 返回负数表示 a 应排在 b 前面
// 顺序：距上次值班天数多者优先，优先军衔，备选军衔，军衔低者优先，姓，名，最后按 ID
func compareCandidates(a, b candidate) int {
	if c := cmp.Compare(b.daysSince, a.daysSince); c != 0 {
		return c
	}
	if c := compareFlag(a.preferred, b.preferred); c != 0 {
		return c
	}
	if c := compareFlag(a.fallback, b.fallback); c != 0 {
		return c
	}
	if c := cmp.Compare(a.rank, b.rank); c != 0 {
		return c
	}
	if c := cmp.Compare(strings.ToLower(a.soldier.LastName), strings.ToLower(b.soldier.LastName)); c != 0 {
		return c
	}
	if c := cmp.Compare(strings.ToLower(a.soldier.FirstName), strings.ToLower(b.soldier.FirstName)); c != 0 {
		return c
	}
	return cmp.Compare(a.soldier.ID, b.soldier.ID)
}

func compareFlag(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

// pickCandidates 排序后取前 quantity 个，人数不够时全部返回
func pickCandidates(candidates []candidate, quantity int) []candidate {
	slices.SortFunc(candidates, compareCandidates)
	if len(candidates) > quantity {
		return candidates[:quantity]
	}
	return candidates
}

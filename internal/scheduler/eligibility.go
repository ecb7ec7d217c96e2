package scheduler

import (
	"fmt"
	"strings"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

type selectorKind int

const (
	selectorAny selectorKind = iota // 不限军衔
	selectorRanks
	selectorGroup
	selectorRange
)

// requirementRule 是预先解析好的军衔要求
type requirementRule struct {
	index    int
	quantity int

	kind      selectorKind
	ranks     map[domain.Rank]bool
	group     domain.RankGroup
	rangeFrom domain.Rank
	rangeTo   domain.Rank

	preferred      map[domain.Rank]bool
	fallback       map[domain.Rank]bool
	excludedRanks  map[domain.Rank]bool
	excludedGroups map[domain.RankGroup]bool
}

type eligibilityFilter struct {
	excludedRanks  map[domain.Rank]bool
	excludedGroups map[domain.RankGroup]bool
	rules          []*requirementRule
}

func newEligibilityFilter(cfg *domain.RosterConfig) (*eligibilityFilter, error) {
	excludedRanks, err := rankSet("globalExclusions.ranks", cfg.GlobalExclusions.Ranks)
	if err != nil {
		return nil, err
	}
	excludedGroups, err := groupSet("globalExclusions.groups", cfg.GlobalExclusions.Groups)
	if err != nil {
		return nil, err
	}

	f := &eligibilityFilter{
		excludedRanks:  excludedRanks,
		excludedGroups: excludedGroups,
	}

	requirements := cfg.RankRequirements
	if len(requirements) == 0 {
		// 没有军衔要求时按每天所需人数不限军衔轮换
		requirements = []domain.RankRequirement{{Quantity: cfg.SoldiersPerDay}}
	}

	for i, req := range requirements {
		rule, err := compileRequirement(i, &req)
		if err != nil {
			return nil, err
		}
		f.rules = append(f.rules, rule)
	}

	return f, nil
}

func compileRequirement(index int, req *domain.RankRequirement) (*requirementRule, error) {
	field := fmt.Sprintf("rankRequirements[%d]", index)

	if req.Quantity <= 0 {
		return nil, configError(field+".quantity", "人数必须为正整数，当前为 %d", req.Quantity)
	}

	rule := &requirementRule{
		index:    index,
		quantity: req.Quantity,
		kind:     selectorAny,
	}

	selectors := 0
	if len(req.Ranks) > 0 {
		selectors++
		ranks, err := rankSet(field+".ranks", req.Ranks)
		if err != nil {
			return nil, err
		}
		rule.kind = selectorRanks
		rule.ranks = ranks
	}
	if strings.TrimSpace(req.Group) != "" {
		selectors++
		group, err := domain.ParseRankGroup(req.Group)
		if err != nil {
			return nil, configError(field+".group", "%s", err.Error())
		}
		rule.kind = selectorGroup
		rule.group = group
	}
	if req.Range != nil {
		selectors++
		from, ok := domain.ParseRank(req.Range.From)
		if !ok {
			return nil, configError(field+".range.from", "无法识别的军衔 %q", req.Range.From)
		}
		to, ok := domain.ParseRank(req.Range.To)
		if !ok {
			return nil, configError(field+".range.to", "无法识别的军衔 %q", req.Range.To)
		}
		if from > to {
			return nil, configError(field+".range", "区间起点 %s 高于终点 %s", from, to)
		}
		rule.kind = selectorRange
		rule.rangeFrom = from
		rule.rangeTo = to
	}
	if selectors > 1 {
		return nil, configError(field, "ranks、group、range 只能设置其中一个")
	}

	var err error
	if rule.preferred, err = rankSet(field+".preferredRanks", req.PreferredRanks); err != nil {
		return nil, err
	}
	if rule.fallback, err = rankSet(field+".fallbackRanks", req.FallbackRanks); err != nil {
		return nil, err
	}
	if rule.excludedRanks, err = rankSet(field+".excludedRanks", req.ExcludedRanks); err != nil {
		return nil, err
	}
	if rule.excludedGroups, err = groupSet(field+".excludedGroups", req.ExcludedGroups); err != nil {
		return nil, err
	}

	return rule, nil
}

// isEligible 只看军衔，不看当天是否有空
func (f *eligibilityFilter) isEligible(soldier *domain.Soldier, rule *requirementRule) bool {
	rank, ok := soldier.ParsedRank()
	if !ok {
		return false
	}
	group := rank.Group()

	// 先检查全局排除，再检查该项要求自己的排除
	if f.excludedRanks[rank] || f.excludedGroups[group] {
		return false
	}
	if rule.excludedRanks[rank] || rule.excludedGroups[group] {
		return false
	}

	switch rule.kind {
	case selectorRanks:
		return rule.ranks[rank]
	case selectorGroup:
		return group == rule.group
	case selectorRange:
		return rank >= rule.rangeFrom && rank <= rule.rangeTo
	default:
		return true
	}
}

func rankSet(field string, list []string) (map[domain.Rank]bool, error) {
	ranks, err := domain.ParseRanks(list)
	if err != nil {
		return nil, configError(field, "%s", err.Error())
	}
	set := make(map[domain.Rank]bool, len(ranks))
	for _, rank := range ranks {
		set[rank] = true
	}
	return set, nil
}

func groupSet(field string, list []string) (map[domain.RankGroup]bool, error) {
	set := make(map[domain.RankGroup]bool, len(list))
	for _, name := range list {
		group, err := domain.ParseRankGroup(name)
		if err != nil {
			return nil, configError(field, "%s", err.Error())
		}
		set[group] = true
	}
	return set, nil
}

package scheduler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

func TestEligibilityFilter(t *testing.T) {
	pfc := newSoldier(1, "PFC", "Adams", 0)
	spc := newSoldier(2, "SPC", "Baker", 0)
	sgt := newSoldier(3, "SGT", "Clark", 0)
	ssg := newSoldier(4, "SSG", "Davis", 0)
	cw2 := newSoldier(5, "CW2", "Evans", 0)
	cpt := newSoldier(6, "CPT", "Foster", 0)
	civilian := newSoldier(7, "MR", "Green", 0)
	all := []*domain.Soldier{pfc, spc, sgt, ssg, cw2, cpt, civilian}

	tests := []struct {
		name        string
		requirement domain.RankRequirement
		global      domain.Exclusions
		want        []int64
	}{
		{
			name:        "no selector accepts every parseable rank",
			requirement: domain.RankRequirement{Quantity: 1},
			want:        []int64{1, 2, 3, 4, 5, 6},
		},
		{
			name:        "group",
			requirement: domain.RankRequirement{Quantity: 1, Group: "lower_enlisted"},
			want:        []int64{1, 2},
		},
		{
			name:        "explicit ranks",
			requirement: domain.RankRequirement{Quantity: 1, Ranks: []string{"sgt", "CPT"}},
			want:        []int64{3, 6},
		},
		{
			name:        "inclusive range",
			requirement: domain.RankRequirement{Quantity: 1, Range: &domain.RankRange{From: "spc", To: "SSG"}},
			want:        []int64{2, 3, 4},
		},
		{
			name:        "requirement exclusions",
			requirement: domain.RankRequirement{Quantity: 1, ExcludedRanks: []string{"PFC"}, ExcludedGroups: []string{"officer", "warrant"}},
			want:        []int64{2, 3, 4},
		},
		{
			name:        "global exclusions apply before the selector",
			requirement: domain.RankRequirement{Quantity: 1, Group: "nco"},
			global:      domain.Exclusions{Ranks: []string{"SSG"}},
			want:        []int64{3},
		},
		{
			name:        "global group exclusion",
			requirement: domain.RankRequirement{Quantity: 1},
			global:      domain.Exclusions{Groups: []string{"lower_enlisted"}},
			want:        []int64{3, 4, 5, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig(jan(1), jan(1))
			cfg.RankRequirements = []domain.RankRequirement{tt.requirement}
			cfg.GlobalExclusions = tt.global

			f, err := newEligibilityFilter(&cfg)
			require.NoError(t, err)
			require.Len(t, f.rules, 1)

			var got []int64
			for _, s := range all {
				if f.isEligible(s, f.rules[0]) {
					got = append(got, s.ID)
				}
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEligibilityFilter_DefaultRequirement(t *testing.T) {
	cfg := baseConfig(jan(1), jan(1))
	cfg.SoldiersPerDay = 3

	f, err := newEligibilityFilter(&cfg)
	require.NoError(t, err)
	require.Len(t, f.rules, 1)
	require.Equal(t, 3, f.rules[0].quantity)
	require.Equal(t, selectorAny, f.rules[0].kind)
}

func TestEligibilityFilter_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name        string
		requirement domain.RankRequirement
		global      domain.Exclusions
	}{
		{"zero quantity", domain.RankRequirement{Quantity: 0}, domain.Exclusions{}},
		{"negative quantity", domain.RankRequirement{Quantity: -2}, domain.Exclusions{}},
		{"unparsable range start", domain.RankRequirement{Quantity: 1, Range: &domain.RankRange{From: "XYZ", To: "SGT"}}, domain.Exclusions{}},
		{"unparsable range end", domain.RankRequirement{Quantity: 1, Range: &domain.RankRange{From: "SGT", To: ""}}, domain.Exclusions{}},
		{"reversed range", domain.RankRequirement{Quantity: 1, Range: &domain.RankRange{From: "SSG", To: "PFC"}}, domain.Exclusions{}},
		{"unknown group", domain.RankRequirement{Quantity: 1, Group: "civilians"}, domain.Exclusions{}},
		{"two selectors", domain.RankRequirement{Quantity: 1, Group: "nco", Ranks: []string{"SGT"}}, domain.Exclusions{}},
		{"unknown preferred rank", domain.RankRequirement{Quantity: 1, PreferredRanks: []string{"BOSS"}}, domain.Exclusions{}},
		{"unknown global group", domain.RankRequirement{Quantity: 1}, domain.Exclusions{Groups: []string{"cadets"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig(jan(1), jan(1))
			cfg.RankRequirements = []domain.RankRequirement{tt.requirement}
			cfg.GlobalExclusions = tt.global

			_, err := newEligibilityFilter(&cfg)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrConfiguration))

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			require.NotEmpty(t, cfgErr.Field)
		})
	}
}

package generator

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/scheduler"
)

type memoryStore struct {
	rosters      map[int64]*domain.Roster
	soldiers     map[int64]*domain.Soldier
	appointments []*domain.Appointment
	holidays     []*domain.Holiday

	mu        sync.Mutex
	saved     *domain.RosterAssignments
	baselines []domain.RosterBaseline
	pinned    map[int64]map[int64]domain.RosterBaseline
}

func (s *memoryStore) GetRosterByID(id int64) (*domain.Roster, error) {
	roster, ok := s.rosters[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return roster, nil
}

func (s *memoryStore) GetSoldiersByIDs(ids []int64) ([]*domain.Soldier, error) {
	soldiers := make([]*domain.Soldier, 0, len(ids))
	for _, id := range ids {
		if soldier, ok := s.soldiers[id]; ok {
			soldiers = append(soldiers, soldier)
		}
	}
	return soldiers, nil
}

func (s *memoryStore) GetOverlappingAppointments(soldierIDs []int64, start, end domain.Date) ([]*domain.Appointment, error) {
	var result []*domain.Appointment
	for _, a := range s.appointments {
		for _, id := range soldierIDs {
			if a.SoldierID == id && a.StartDate <= end && a.EndDate >= start {
				result = append(result, a)
			}
		}
	}
	return result, nil
}

func (s *memoryStore) GetHolidaysBetween(start, end domain.Date) ([]*domain.Holiday, error) {
	var result []*domain.Holiday
	for _, h := range s.holidays {
		if h.Date >= start && h.Date <= end {
			result = append(result, h)
		}
	}
	return result, nil
}

func (s *memoryStore) GetRosterBaselines(rosterID int64) (map[int64]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[int64]int, len(s.pinned[rosterID]))
	for id, b := range s.pinned[rosterID] {
		result[id] = b.Start
	}
	return result, nil
}

// SaveRosterAssignments 和数据库一样：起始计数只在第一次保存时记录，结束计数每次覆盖
func (s *memoryStore) SaveRosterAssignments(result *domain.RosterAssignments, baselines []domain.RosterBaseline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = result
	s.baselines = baselines
	if s.pinned == nil {
		s.pinned = make(map[int64]map[int64]domain.RosterBaseline)
	}
	if s.pinned[result.RosterID] == nil {
		s.pinned[result.RosterID] = make(map[int64]domain.RosterBaseline)
	}
	for _, b := range baselines {
		if existing, ok := s.pinned[result.RosterID][b.SoldierID]; ok {
			b.Start = existing.Start
		}
		s.pinned[result.RosterID][b.SoldierID] = b
	}
	return nil
}

// finalize 把结束计数写回士兵
func (s *memoryStore) finalize(rosterID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range s.pinned[rosterID] {
		copied := *s.soldiers[id]
		copied.DaysSinceLastDuty = b.End
		s.soldiers[id] = &copied
	}
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]domain.Assignment
	hits    int
	misses  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]domain.Assignment)}
}

func (c *memoryCache) Get(key string) ([]domain.Assignment, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	assignments, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return assignments, ok, nil
}

func (c *memoryCache) Set(key string, assignments []domain.Assignment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = assignments
	return nil
}

func jan(day int) domain.Date {
	return domain.NewDate(2024, time.January, day)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// 1: 警卫（A, B），2: CQ（只有 B，1 月 2 日），3: 参谋值班（只有 B，1 月 2 日）
func newStore() *memoryStore {
	return &memoryStore{
		rosters: map[int64]*domain.Roster{
			1: {
				ID:   1,
				Name: "Guard",
				Config: domain.RosterConfig{
					StartDate:      jan(1),
					EndDate:        jan(3),
					NatureOfDuty:   "Guard Detail",
					SoldiersPerDay: 1,
				},
				SoldierIDs: []int64{1, 2, 3},
			},
			2: {
				ID:   2,
				Name: "Company CQ",
				Config: domain.RosterConfig{
					StartDate:      jan(2),
					EndDate:        jan(2),
					NatureOfDuty:   "Charge of Quarters",
					SoldiersPerDay: 1,
				},
				SoldierIDs: []int64{2},
			},
			3: {
				ID:   3,
				Name: "Brigade SDNCO",
				Config: domain.RosterConfig{
					StartDate:      jan(2),
					EndDate:        jan(2),
					NatureOfDuty:   "Staff Duty NCO",
					SoldiersPerDay: 1,
				},
				SoldierIDs: []int64{2},
			},
		},
		soldiers: map[int64]*domain.Soldier{
			1: {ID: 1, FirstName: "John", LastName: "Adams", Rank: "SPC", DaysSinceLastDuty: 5, IsActive: true},
			2: {ID: 2, FirstName: "Jane", LastName: "Baker", Rank: "SPC", DaysSinceLastDuty: 3, IsActive: true},
			3: {ID: 3, FirstName: "Jim", LastName: "Clark", Rank: "SPC", DaysSinceLastDuty: 99, IsActive: false},
		},
	}
}

func codeOf(t *testing.T, res *scheduler.Result, soldierID int64, date domain.Date) string {
	t.Helper()
	for _, a := range res.Assignments {
		if a.SoldierID == soldierID && a.Date == date {
			return a.Code()
		}
	}
	t.Fatalf("soldier %d has no assignment on %s", soldierID, date)
	return ""
}

func dutyOn(res *scheduler.Result, date domain.Date) []int64 {
	var ids []int64
	for _, a := range res.Assignments {
		if a.Date == date && a.IsDuty {
			ids = append(ids, a.SoldierID)
		}
	}
	return ids
}

func TestGenerate_Standalone(t *testing.T) {
	store := newStore()
	g := New(store, nil, WithLogger(quietLogger()))

	outcome, err := g.Generate(context.Background(), Request{RosterID: 1})
	require.NoError(t, err)
	require.False(t, outcome.Persisted)
	require.Nil(t, store.saved)

	// 没有跨表冲突时 A、B 轮流值班，已离队的 C 不参与
	require.Equal(t, []int64{1}, dutyOn(outcome.Result, jan(1)))
	require.Equal(t, []int64{2}, dutyOn(outcome.Result, jan(2)))
	require.Equal(t, []int64{1}, dutyOn(outcome.Result, jan(3)))
	require.NotContains(t, outcome.Result.DaysSinceDuty, int64(3))
}

func TestGenerate_CrossRosterOrder(t *testing.T) {
	tests := []struct {
		name   string
		others []int64
		code   string
	}{
		{"charge of quarters first", []int64{2, 3}, domain.CodeCQ},
		{"staff duty first", []int64{3, 2}, domain.CodeStaffDuty},
		{"self and duplicates ignored", []int64{1, 3, 3, 2}, domain.CodeStaffDuty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(newStore(), nil, WithLogger(quietLogger()), WithConcurrency(2))

			outcome, err := g.Generate(context.Background(), Request{RosterID: 1, OtherRosterIDs: tt.others})
			require.NoError(t, err)

			require.Equal(t, []int64{1}, dutyOn(outcome.Result, jan(1)))
			require.Equal(t, []int64{1}, dutyOn(outcome.Result, jan(2)))
			require.Equal(t, []int64{2}, dutyOn(outcome.Result, jan(3)))
			require.Equal(t, tt.code, codeOf(t, outcome.Result, 2, jan(2)))
		})
	}
}

func TestGenerate_UsesCacheForOtherRosters(t *testing.T) {
	c := newMemoryCache()
	g := New(newStore(), nil, WithLogger(quietLogger()), WithCache(c))

	req := Request{RosterID: 1, OtherRosterIDs: []int64{2, 3}}

	first, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 0, c.hits)
	require.Equal(t, 2, c.misses)
	require.Len(t, c.entries, 2)

	second, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 2, c.hits)
	require.Equal(t, first.Result, second.Result)
}

func TestGenerate_Persist(t *testing.T) {
	store := newStore()
	g := New(store, nil, WithLogger(quietLogger()))

	outcome, err := g.Generate(context.Background(), Request{RosterID: 1, Persist: true})
	require.NoError(t, err)
	require.True(t, outcome.Persisted)

	require.NotNil(t, store.saved)
	require.Equal(t, int64(1), store.saved.RosterID)
	require.Equal(t, outcome.Result.Assignments, store.saved.Assignments)
	require.Equal(t, []domain.RosterBaseline{
		{SoldierID: 1, Start: 5, End: outcome.Result.DaysSinceDuty[1]},
		{SoldierID: 2, Start: 3, End: outcome.Result.DaysSinceDuty[2]},
	}, store.baselines)

	// 保存结果不会改动士兵自身的计数
	require.Equal(t, 5, store.soldiers[1].DaysSinceLastDuty)
	require.Equal(t, 3, store.soldiers[2].DaysSinceLastDuty)
}

func TestGenerate_PersistIsRepeatable(t *testing.T) {
	store := newStore()
	g := New(store, nil, WithLogger(quietLogger()))
	req := Request{RosterID: 1, OtherRosterIDs: []int64{2}, Persist: true}

	first, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	second, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, first.Result, second.Result)

	// 结束排班表后士兵的计数改变，但这个排班表仍然从固定的起始计数重新生成
	store.finalize(1)
	require.Equal(t, first.Result.DaysSinceDuty[1], store.soldiers[1].DaysSinceLastDuty)
	require.Equal(t, first.Result.DaysSinceDuty[2], store.soldiers[2].DaysSinceLastDuty)

	third, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, first.Result, third.Result)
}

func TestGenerate_OtherRosterRestBlocksDuty(t *testing.T) {
	store := newStore()
	store.rosters[4] = &domain.Roster{
		ID:   4,
		Name: "Company CQ",
		Config: domain.RosterConfig{
			StartDate:        jan(1),
			EndDate:          jan(1),
			NatureOfDuty:     "CQ",
			SoldiersPerDay:   1,
			DaysOffAfterDuty: 2,
		},
		SoldierIDs: []int64{1},
	}
	g := New(store, nil, WithLogger(quietLogger()))

	outcome, err := g.Generate(context.Background(), Request{RosterID: 1, OtherRosterIDs: []int64{4}})
	require.NoError(t, err)

	// Adams 1 月 1 日在 CQ 值班，之后两天休息，警卫只能由 Baker 担任
	for _, date := range []domain.Date{jan(1), jan(2), jan(3)} {
		require.Equal(t, []int64{2}, dutyOn(outcome.Result, date), date)
	}
	require.Equal(t, domain.CodeCQ, codeOf(t, outcome.Result, 1, jan(1)))
	require.Equal(t, domain.CodePass, codeOf(t, outcome.Result, 1, jan(2)))
	require.Equal(t, domain.CodePass, codeOf(t, outcome.Result, 1, jan(3)))
}

func TestRestAppointments(t *testing.T) {
	pass, leave := domain.CodePass, domain.CodeLeave
	others := []scheduler.OtherRoster{{
		Name: "Company CQ",
		Assignments: []domain.Assignment{
			{SoldierID: 1, Date: jan(2), ExceptionCode: &pass},
			{SoldierID: 2, Date: jan(2), ExceptionCode: &pass},
			{SoldierID: 1, Date: jan(3), ExceptionCode: &pass},
			{SoldierID: 2, Date: jan(3), ExceptionCode: &leave},
			{SoldierID: 1, Date: jan(4), IsDuty: true},
			{SoldierID: 1, Date: jan(5), ExceptionCode: &pass},
		},
	}}

	appointments := restAppointments(others)
	require.Len(t, appointments, 3)

	type span struct {
		soldierID  int64
		start, end domain.Date
	}
	var spans []span
	for _, a := range appointments {
		require.Equal(t, domain.CodePass, a.ExceptionCode)
		spans = append(spans, span{a.SoldierID, a.StartDate, a.EndDate})
	}
	require.Equal(t, []span{{1, jan(2), jan(3)}, {2, jan(2), jan(2)}, {1, jan(5), jan(5)}}, spans)
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("missing roster", func(t *testing.T) {
		g := New(newStore(), nil, WithLogger(quietLogger()))
		_, err := g.Generate(context.Background(), Request{RosterID: 42})
		require.ErrorIs(t, err, sql.ErrNoRows)
		require.Equal(t, "error", ResultLabel(err))
	})

	t.Run("missing other roster", func(t *testing.T) {
		g := New(newStore(), nil, WithLogger(quietLogger()))
		_, err := g.Generate(context.Background(), Request{RosterID: 1, OtherRosterIDs: []int64{2, 42}})
		require.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("configuration", func(t *testing.T) {
		store := newStore()
		store.rosters[1].Config.SoldiersPerDay = 0
		g := New(store, nil, WithLogger(quietLogger()))
		_, err := g.Generate(context.Background(), Request{RosterID: 1, Persist: true})
		require.ErrorIs(t, err, scheduler.ErrConfiguration)
		require.Equal(t, "configuration_error", ResultLabel(err))
		require.Nil(t, store.saved)
	})

	t.Run("strict understaffed", func(t *testing.T) {
		store := newStore()
		store.rosters[1].Config.SoldiersPerDay = 3
		parameters := scheduler.DefaultParameters()
		parameters.StaffingPolicy = scheduler.StaffingPolicyStrict

		g := New(store, parameters, WithLogger(quietLogger()))
		_, err := g.Generate(context.Background(), Request{RosterID: 1})
		require.True(t, errors.Is(err, scheduler.ErrUnderstaffed))
		require.Equal(t, "understaffed", ResultLabel(err))
	})

	t.Run("other roster understaffed under strict", func(t *testing.T) {
		store := newStore()
		store.rosters[2].Config.SoldiersPerDay = 2
		parameters := scheduler.DefaultParameters()
		parameters.StaffingPolicy = scheduler.StaffingPolicyStrict

		// 其他排班表总是按 underfill 计算
		g := New(store, parameters, WithLogger(quietLogger()))
		outcome, err := g.Generate(context.Background(), Request{RosterID: 1, OtherRosterIDs: []int64{2}})
		require.NoError(t, err)
		require.Equal(t, domain.CodeCQ, codeOf(t, outcome.Result, 2, jan(2)))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		g := New(newStore(), nil, WithLogger(quietLogger()))
		_, err := g.Generate(ctx, Request{RosterID: 1, OtherRosterIDs: []int64{2}})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestParametersFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.StaffingPolicy = "strict"
	cfg.Scheduler.MaxPeriodDays = 400

	parameters, err := ParametersFromConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, scheduler.StaffingPolicyStrict, parameters.StaffingPolicy)
	require.Equal(t, 400, parameters.MaxPeriodDays)

	cfg.Scheduler.StaffingPolicy = "best-effort"
	_, err = ParametersFromConfig(cfg)
	require.Error(t, err)
}

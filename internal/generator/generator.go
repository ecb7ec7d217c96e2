package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/cache"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/scheduler"
	"golang.org/x/sync/errgroup"
)

// Store 是生成排班所需的数据来源，由 repository.Repository 实现
type Store interface {
	GetRosterByID(id int64) (*domain.Roster, error)
	GetSoldiersByIDs(ids []int64) ([]*domain.Soldier, error)
	GetOverlappingAppointments(soldierIDs []int64, start, end domain.Date) ([]*domain.Appointment, error)
	GetHolidaysBetween(start, end domain.Date) ([]*domain.Holiday, error)
	// GetRosterBaselines 返回排班表固定下来的起始计数，没有保存过时返回空
	GetRosterBaselines(rosterID int64) (map[int64]int, error)
	SaveRosterAssignments(result *domain.RosterAssignments, baselines []domain.RosterBaseline) error
}

// AssignmentCache 缓存独立计算的排班结果，由 cache.RosterCache 实现
type AssignmentCache interface {
	Get(key string) ([]domain.Assignment, bool, error)
	Set(key string, assignments []domain.Assignment) error
}

type Request struct {
	RosterID       int64
	OtherRosterIDs []int64 // 按冲突检查的顺序排列
	Persist        bool
}

type Outcome struct {
	RosterID  int64             `json:"rosterID"`
	Result    *scheduler.Result `json:"result"`
	Persisted bool              `json:"persisted"`
}

type Generator struct {
	store       Store
	cache       AssignmentCache
	metrics     metrics.Recorder
	parameters  *scheduler.Parameters
	concurrency int
	logger      *slog.Logger
}

type Option func(g *Generator)

// WithCache 不设置时每次都重新计算其他排班表
func WithCache(c AssignmentCache) Option {
	return func(g *Generator) {
		g.cache = c
	}
}

func WithMetrics(m metrics.Recorder) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

func WithConcurrency(n int) Option {
	return func(g *Generator) {
		g.concurrency = n
	}
}

func New(store Store, parameters *scheduler.Parameters, opts ...Option) *Generator {
	if parameters == nil {
		parameters = scheduler.DefaultParameters()
	}

	g := &Generator{
		store:       store,
		metrics:     metrics.NewNop(),
		parameters:  parameters,
		concurrency: 4,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.concurrency <= 0 {
		g.concurrency = 1
	}

	return g
}

// ParametersFromConfig 根据部署配置生成排班引擎参数
func ParametersFromConfig(cfg *config.Config) (*scheduler.Parameters, error) {
	parameters := scheduler.DefaultParameters()

	switch policy := scheduler.StaffingPolicy(cfg.Scheduler.StaffingPolicy); policy {
	case scheduler.StaffingPolicyUnderfill, scheduler.StaffingPolicyStrict:
		parameters.StaffingPolicy = policy
	default:
		return nil, fmt.Errorf("未知的人数不足处理策略 %q，可选值为 underfill 或 strict", cfg.Scheduler.StaffingPolicy)
	}

	if cfg.Scheduler.MaxPeriodDays > 0 {
		parameters.MaxPeriodDays = cfg.Scheduler.MaxPeriodDays
	}

	return parameters, nil
}

// Generate 生成某个排班表的排班结果
func (g *Generator) Generate(ctx context.Context, req Request) (*Outcome, error) {
	start := time.Now()

	outcome, err := g.generate(ctx, req)
	duration := time.Since(start)

	g.metrics.ObserveGeneration(ResultLabel(err), duration)
	if err != nil {
		g.logger.Warn("排班生成失败", "rosterID", req.RosterID, "otherRosters", len(req.OtherRosterIDs), "duration", duration, "error", err)
		return nil, err
	}

	g.metrics.AddShortfalls(len(outcome.Result.Shortfalls))
	g.logger.Info(
		"排班生成完成",
		"rosterID", req.RosterID,
		"otherRosters", len(req.OtherRosterIDs),
		"assignments", len(outcome.Result.Assignments),
		"shortfalls", len(outcome.Result.Shortfalls),
		"persisted", outcome.Persisted,
		"duration", duration,
	)

	return outcome, nil
}

func (g *Generator) generate(ctx context.Context, req Request) (*Outcome, error) {
	roster, input, err := g.loadInput(req.RosterID)
	if err != nil {
		return nil, err
	}

	others, err := g.resolveOtherRosters(ctx, roster, req.OtherRosterIDs)
	if err != nil {
		return nil, err
	}
	input.OtherRosters = others
	input.Appointments = slices.Concat(input.Appointments, restAppointments(others))

	s, err := scheduler.New(g.parameters, input)
	if err != nil {
		return nil, err
	}
	res, err := s.Schedule()
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		RosterID: roster.ID,
		Result:   res,
	}

	if req.Persist {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result := &domain.RosterAssignments{
			RosterID:    roster.ID,
			Assignments: res.Assignments,
		}
		baselines := make([]domain.RosterBaseline, 0, len(input.Soldiers))
		for _, soldier := range input.Soldiers {
			baselines = append(baselines, domain.RosterBaseline{
				SoldierID: soldier.ID,
				Start:     soldier.DaysSinceLastDuty,
				End:       res.DaysSinceDuty[soldier.ID],
			})
		}
		if err := g.store.SaveRosterAssignments(result, baselines); err != nil {
			return nil, fmt.Errorf("保存排班结果失败: %w", err)
		}
		outcome.Persisted = true
	}

	return outcome, nil
}

// loadInput 读取排班表及其士兵、Appointment 和节假日，不包括其他排班表
func (g *Generator) loadInput(rosterID int64) (*domain.Roster, *scheduler.Input, error) {
	roster, err := g.store.GetRosterByID(rosterID)
	if err != nil {
		return nil, nil, fmt.Errorf("读取排班表 %d 失败: %w", rosterID, err)
	}

	soldiers, err := g.store.GetSoldiersByIDs(roster.SoldierIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("读取排班表 %d 的士兵失败: %w", rosterID, err)
	}

	// 保存过结果的排班表从当时的起始计数开始，不受之后写回的基线影响
	pinned, err := g.store.GetRosterBaselines(rosterID)
	if err != nil {
		return nil, nil, fmt.Errorf("读取排班表 %d 的起始计数失败: %w", rosterID, err)
	}

	// 已离队的士兵不参与排班
	active := make([]*domain.Soldier, 0, len(soldiers))
	ids := make([]int64, 0, len(soldiers))
	for _, soldier := range soldiers {
		if !soldier.IsActive {
			continue
		}
		if start, ok := pinned[soldier.ID]; ok && start != soldier.DaysSinceLastDuty {
			copied := *soldier
			copied.DaysSinceLastDuty = start
			soldier = &copied
		}
		active = append(active, soldier)
		ids = append(ids, soldier.ID)
	}

	// 周期结束后的休息日也可能与 Appointment 重叠
	cfg := roster.Config
	last := cfg.EndDate.AddDays(max(cfg.DaysOffAfterDuty, 0))
	appointments, err := g.store.GetOverlappingAppointments(ids, cfg.StartDate, last)
	if err != nil {
		return nil, nil, fmt.Errorf("读取排班表 %d 的 Appointment 失败: %w", rosterID, err)
	}

	holidays, err := g.store.GetHolidaysBetween(cfg.StartDate, cfg.EndDate)
	if err != nil {
		return nil, nil, fmt.Errorf("读取节假日失败: %w", err)
	}

	return roster, &scheduler.Input{
		Config:       cfg,
		Exceptions:   roster.Exceptions,
		Soldiers:     active,
		Appointments: appointments,
		Holidays:     holidays,
	}, nil
}

// resolveOtherRosters 并行地独立重算其他排班表，返回值保持 ids 的顺序
// 其他排班表本身不再考虑跨表冲突
func (g *Generator) resolveOtherRosters(ctx context.Context, target *domain.Roster, ids []int64) ([]scheduler.OtherRoster, error) {
	ids = dedupe(ids, target.ID)
	if len(ids) == 0 {
		return nil, nil
	}

	others := make([]scheduler.OtherRoster, len(ids))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)

	for i, id := range ids {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			other, err := g.standalone(id)
			if err != nil {
				return err
			}
			others[i] = *other
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return others, nil
}

// standalone 计算某个排班表不考虑其他排班表时的结果，优先使用缓存
func (g *Generator) standalone(rosterID int64) (*scheduler.OtherRoster, error) {
	roster, input, err := g.loadInput(rosterID)
	if err != nil {
		return nil, err
	}

	other := &scheduler.OtherRoster{
		Name:         roster.Name,
		NatureOfDuty: roster.Config.NatureOfDuty,
	}

	var key string
	if g.cache != nil {
		key, err = cache.Key(input)
		if err != nil {
			return nil, err
		}
		assignments, hit, err := g.cache.Get(key)
		if err != nil {
			// 缓存不可用时直接重算
			g.logger.Warn("读取排班缓存失败", "rosterID", rosterID, "error", err)
		}
		g.metrics.ObserveCacheLookup(hit)
		g.logger.Debug("查询排班缓存", "rosterID", rosterID, "hit", hit)
		if hit {
			other.Assignments = assignments
			return other, nil
		}
	}

	// 其他排班表只用来判断冲突，人数不足时也要给出结果
	parameters := *g.parameters
	parameters.StaffingPolicy = scheduler.StaffingPolicyUnderfill

	s, err := scheduler.New(&parameters, input)
	if err != nil {
		return nil, fmt.Errorf("排班表 %q: %w", roster.Name, err)
	}
	res, err := s.Schedule()
	if err != nil {
		return nil, fmt.Errorf("排班表 %q: %w", roster.Name, err)
	}
	other.Assignments = res.Assignments

	if g.cache != nil {
		if err := g.cache.Set(key, res.Assignments); err != nil {
			g.logger.Warn("写入排班缓存失败", "rosterID", rosterID, "error", err)
		}
	}

	return other, nil
}

// restAppointments 把其他排班表中的休息日转换成 Appointment，连续的休息日合并为一段
// 与真实的 Appointment 一样，只阻止值班，不会覆盖当前排班表更高优先级的结果
func restAppointments(others []scheduler.OtherRoster) []*domain.Appointment {
	var result []*domain.Appointment
	for _, other := range others {
		open := make(map[int64]*domain.Appointment)
		for _, a := range other.Assignments {
			if a.IsDuty || a.Code() != domain.CodePass {
				continue
			}
			if last, ok := open[a.SoldierID]; ok && last.EndDate.AddDays(1) == a.Date {
				last.EndDate = a.Date
				continue
			}
			appointment := &domain.Appointment{
				SoldierID:     a.SoldierID,
				StartDate:     a.Date,
				EndDate:       a.Date,
				ExceptionCode: domain.CodePass,
				Reason:        fmt.Sprintf("%s 值班后休息", other.Name),
			}
			open[a.SoldierID] = appointment
			result = append(result, appointment)
		}
	}
	return result
}

// dedupe 去掉重复的 id 以及目标排班表自身，保留第一次出现的位置
func dedupe(ids []int64, self int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == self || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

// ResultLabel 把生成错误归类为指标标签
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, scheduler.ErrUnderstaffed):
		return metrics.ResultUnderstaffed
	case errors.Is(err, scheduler.ErrConfiguration):
		return metrics.ResultConfiguration
	default:
		return metrics.ResultError
	}
}

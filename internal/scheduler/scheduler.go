package scheduler

import (
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

type Scheduler struct {
	parameters   *Parameters
	config       domain.RosterConfig
	exceptions   domain.ExceptionMap
	soldiers     []*domain.Soldier
	appointments map[int64][]*domain.Appointment // {soldierID: [appointment1, appointment2, ...]}
	holidays     map[domain.Date]string
	filter       *eligibilityFilter
	conflicts    *conflictResolver
	days         []CalendarDay
}

func New(parameters *Parameters, input *Input) (*Scheduler, error) {
	if parameters == nil {
		parameters = DefaultParameters()
	}
	if input == nil {
		return nil, configError("input", "缺少排班输入")
	}
	if err := validateConfig(parameters, &input.Config); err != nil {
		return nil, err
	}

	s := &Scheduler{
		parameters:   parameters,
		config:       input.Config,
		exceptions:   input.Exceptions.Clone(),
		soldiers:     make([]*domain.Soldier, 0, len(input.Soldiers)),
		appointments: make(map[int64][]*domain.Appointment),
		holidays:     make(map[domain.Date]string),
		conflicts:    newConflictResolver(input.OtherRosters),
	}

	seen := make(map[int64]bool, len(input.Soldiers))
	for _, soldier := range input.Soldiers {
		if soldier == nil {
			continue
		}
		if seen[soldier.ID] {
			return nil, configError("soldiers", "士兵 %d 重复出现", soldier.ID)
		}
		seen[soldier.ID] = true
		s.soldiers = append(s.soldiers, soldier)
	}

	for _, appointment := range input.Appointments {
		if appointment == nil || !seen[appointment.SoldierID] {
			continue
		}
		s.appointments[appointment.SoldierID] = append(s.appointments[appointment.SoldierID], appointment)
	}

	for _, holiday := range input.Holidays {
		if holiday != nil {
			s.holidays[holiday.Date] = holiday.Name
		}
	}

	filter, err := newEligibilityFilter(&s.config)
	if err != nil {
		return nil, err
	}
	s.filter = filter
	s.days = WalkCalendar(&s.config, s.holidays)

	return s, nil
}

// ValidateConfig 在保存排班表之前检查配置，与生成时使用同样的规则
func ValidateConfig(parameters *Parameters, cfg *domain.RosterConfig) error {
	if parameters == nil {
		parameters = DefaultParameters()
	}
	if err := validateConfig(parameters, cfg); err != nil {
		return err
	}
	_, err := newEligibilityFilter(cfg)
	return err
}

func validateConfig(parameters *Parameters, cfg *domain.RosterConfig) error {
	if cfg.EndDate < cfg.StartDate {
		return configError("endDate", "结束日期 %s 早于开始日期 %s", cfg.EndDate, cfg.StartDate)
	}
	if parameters.MaxPeriodDays > 0 && cfg.EndDate.DaysSince(cfg.StartDate)+1 > parameters.MaxPeriodDays {
		return configError("endDate", "排班周期不能超过 %d 天", parameters.MaxPeriodDays)
	}
	if cfg.SoldiersPerDay <= 0 {
		return configError("soldiersPerDay", "每天所需人数必须为正整数，当前为 %d", cfg.SoldiersPerDay)
	}
	if cfg.DaysOffAfterDuty < 0 {
		return configError("daysOffAfterDuty", "值班后休息天数不能为负数")
	}
	return nil
}

// Schedule 按日期顺序生成排班，每次调用使用独立的运行状态，不会修改任何输入
func (s *Scheduler) Schedule() (*Result, error) {
	st := newRunState(s.soldiers, hasSeparateCycles(&s.config))

	for _, day := range s.days {
		if !day.Included {
			continue
		}

		detailMade, err := s.scheduleDay(st, day)
		if err != nil {
			return nil, err
		}

		// 按合并后的最终状态推进每个士兵的计数
		for _, soldier := range s.soldiers {
			event := s.resolve(st, soldier.ID, day.Date).event()
			display := st.overall.Step(soldier.ID, event, detailMade)
			st.recordDisplay(soldier.ID, day.Date, display)
			if st.rotation != nil {
				st.rotation[day.Cycle].Step(soldier.ID, event, detailMade)
			}
		}
	}

	return &Result{
		Assignments:   s.assemble(st),
		DaysSinceDuty: st.overall.Snapshot(),
		Display:       st.display,
		Shortfalls:    st.shortfalls,
	}, nil
}

// scheduleDay 依次处理每一项军衔要求，返回当天是否有人被安排值班
func (s *Scheduler) scheduleDay(st *runState, day CalendarDay) (bool, error) {
	detailMade := false
	rotation := st.rotationTracker(day.Cycle)

	for _, rule := range s.filter.rules {
		candidates := make([]candidate, 0, len(s.soldiers))
		for _, soldier := range s.soldiers {
			if !s.filter.isEligible(soldier, rule) {
				continue
			}
			if reason, _ := s.availability(st, soldier.ID, day.Date); reason != available {
				continue
			}
			candidates = append(candidates, newCandidate(soldier, rule, rotation.Counter(soldier.ID)))
		}

		availableCount := len(candidates)
		chosen := pickCandidates(candidates, rule.quantity)

		if len(chosen) < rule.quantity {
			if s.parameters.StaffingPolicy == StaffingPolicyStrict {
				return false, &UnderstaffedError{
					Date:        day.Date,
					Requirement: rule.index,
					Required:    rule.quantity,
					Available:   availableCount,
				}
			}
			st.shortfalls = append(st.shortfalls, Shortfall{
				Date:        day.Date,
				Requirement: rule.index,
				Required:    rule.quantity,
				Available:   availableCount,
			})
		}

		for _, c := range chosen {
			// 理论上不会发生，发生了说明筛选逻辑有 bug
			if !s.filter.isEligible(c.soldier, rule) {
				return false, &InvariantViolationError{Date: day.Date, SoldierID: c.soldier.ID, Message: "被选中的士兵不符合军衔要求"}
			}
			if st.hasDuty(c.soldier.ID, day.Date) {
				return false, &InvariantViolationError{Date: day.Date, SoldierID: c.soldier.ID, Message: "同一天被安排了两次值班"}
			}

			st.recordDuty(c.soldier.ID, day, rule.index, s.config.DaysOffAfterDuty, s.exceptions)
			detailMade = true
		}
	}

	return detailMade, nil
}

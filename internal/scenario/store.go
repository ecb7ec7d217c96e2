package scenario

import (
	"database/sql"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

// MainRosterID 是场景中主排班表的 ID，其他排班表依次为 2, 3, ...
const MainRosterID int64 = 1

// Store 让场景文件可以直接交给 generator 使用，数据只存在于内存中
type Store struct {
	rosters      map[int64]*domain.Roster
	soldiers     map[int64]*domain.Soldier
	appointments []*domain.Appointment
	holidays     []*domain.Holiday
}

func NewStore(s *Scenario) *Store {
	st := &Store{
		rosters:  make(map[int64]*domain.Roster, len(s.OtherRosters)+1),
		soldiers: make(map[int64]*domain.Soldier, len(s.Soldiers)),
	}

	allIDs := make([]int64, 0, len(s.Soldiers))
	for _, soldier := range s.Soldiers {
		st.soldiers[soldier.ID] = &domain.Soldier{
			ID:                soldier.ID,
			FirstName:         soldier.FirstName,
			LastName:          soldier.LastName,
			Rank:              soldier.Rank,
			DaysSinceLastDuty: soldier.DaysSinceLastDuty,
			IsActive:          !soldier.Inactive,
		}
		allIDs = append(allIDs, soldier.ID)
	}

	for i, r := range append([]Roster{s.Roster}, s.OtherRosters...) {
		roster := &domain.Roster{
			ID:         MainRosterID + int64(i),
			Name:       r.Name,
			Config:     r.Config,
			Exceptions: domain.ExceptionMap{},
			SoldierIDs: r.Soldiers,
		}
		if len(roster.SoldierIDs) == 0 {
			roster.SoldierIDs = allIDs
		}
		for _, e := range r.Exceptions {
			if roster.Exceptions[e.Soldier] == nil {
				roster.Exceptions[e.Soldier] = make(map[domain.Date]string)
			}
			roster.Exceptions[e.Soldier][e.Date] = e.Code
		}
		st.rosters[roster.ID] = roster
	}

	for i, a := range s.Appointments {
		appointment := a.domain()
		appointment.ID = int64(i + 1)
		st.appointments = append(st.appointments, appointment)
	}
	for i, h := range s.Holidays {
		st.holidays = append(st.holidays, &domain.Holiday{ID: int64(i + 1), Date: h.Date, Name: h.Name})
	}

	return st
}

// OtherRosterIDs 按文件中的顺序返回其他排班表的 ID
func (st *Store) OtherRosterIDs() []int64 {
	ids := make([]int64, 0, len(st.rosters)-1)
	for id := MainRosterID + 1; id < MainRosterID+int64(len(st.rosters)); id++ {
		ids = append(ids, id)
	}
	return ids
}

func (st *Store) Soldier(id int64) (*domain.Soldier, bool) {
	soldier, ok := st.soldiers[id]
	return soldier, ok
}

func (st *Store) GetRosterByID(id int64) (*domain.Roster, error) {
	roster, ok := st.rosters[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return roster, nil
}

func (st *Store) GetSoldiersByIDs(ids []int64) ([]*domain.Soldier, error) {
	soldiers := make([]*domain.Soldier, 0, len(ids))
	for _, id := range ids {
		if soldier, ok := st.soldiers[id]; ok {
			soldiers = append(soldiers, soldier)
		}
	}
	return soldiers, nil
}

func (st *Store) GetOverlappingAppointments(soldierIDs []int64, start, end domain.Date) ([]*domain.Appointment, error) {
	wanted := make(map[int64]bool, len(soldierIDs))
	for _, id := range soldierIDs {
		wanted[id] = true
	}

	var result []*domain.Appointment
	for _, a := range st.appointments {
		if wanted[a.SoldierID] && a.StartDate <= end && a.EndDate >= start {
			result = append(result, a)
		}
	}
	return result, nil
}

func (st *Store) GetHolidaysBetween(start, end domain.Date) ([]*domain.Holiday, error) {
	var result []*domain.Holiday
	for _, h := range st.holidays {
		if h.Date >= start && h.Date <= end {
			result = append(result, h)
		}
	}
	return result, nil
}

// GetRosterBaselines 总是返回空，场景文件中的计数就是起始计数
func (st *Store) GetRosterBaselines(rosterID int64) (map[int64]int, error) {
	return nil, nil
}

// SaveRosterAssignments 什么也不做，场景文件不会被回写
func (st *Store) SaveRosterAssignments(result *domain.RosterAssignments, baselines []domain.RosterBaseline) error {
	return nil
}

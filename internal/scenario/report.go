package scenario

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/scheduler"
)

// WriteGrid 按“士兵 x 日期”输出排班表，值班的格子以 * 开头
func WriteGrid(w io.Writer, store *Store, result *scheduler.Result) error {
	roster, err := store.GetRosterByID(MainRosterID)
	if err != nil {
		return err
	}

	type cell struct {
		duty bool
		code string
	}
	cells := make(map[int64]map[domain.Date]cell)
	var dates []domain.Date
	seen := make(map[domain.Date]bool)
	for _, a := range result.Assignments {
		if cells[a.SoldierID] == nil {
			cells[a.SoldierID] = make(map[domain.Date]cell)
		}
		cells[a.SoldierID][a.Date] = cell{duty: a.IsDuty, code: a.Code()}
		if !seen[a.Date] {
			seen[a.Date] = true
			dates = append(dates, a.Date)
		}
	}
	for date := roster.Config.StartDate; date <= roster.Config.EndDate; date = date.AddDays(1) {
		if !seen[date] {
			seen[date] = true
			dates = append(dates, date)
		}
	}
	slices.Sort(dates)

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	header := []string{"SOLDIER"}
	for _, date := range dates {
		header = append(header, date.Time().Format("01-02"))
	}
	header = append(header, "DUTIES", "DAYS SINCE")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, id := range roster.SoldierIDs {
		soldier, ok := store.Soldier(id)
		if !ok || !soldier.IsActive {
			continue
		}

		row := []string{soldier.DisplayName()}
		duties := 0
		for _, date := range dates {
			c := cells[id][date]
			value := result.Display[id][date]
			switch {
			case c.duty:
				duties++
				row = append(row, "*")
			case value != "":
				row = append(row, value)
			default:
				row = append(row, c.code)
			}
		}
		row = append(row, fmt.Sprint(duties), fmt.Sprint(result.DaysSinceDuty[id]))
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	for _, s := range result.Shortfalls {
		fmt.Fprintf(w, "%s 第 %d 项要求缺 %d 人（需要 %d，可用 %d）\n", s.Date, s.Requirement, s.Required-s.Available, s.Required, s.Available)
	}

	return nil
}

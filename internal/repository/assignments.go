package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

// SaveRosterAssignments 用新的排班结果替换旧的，并记录每个士兵的起始和结束计数
// 起始计数只在第一次保存时写入，士兵本身的基线要等 FinalizeRoster 才更新
func (r *Repository) SaveRosterAssignments(result *domain.RosterAssignments, baselines []domain.RosterBaseline) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先将之前的排班结果删除
	query := `DELETE FROM roster_assignments WHERE roster_id = $1`
	if _, err := tx.ExecContext(ctx, query, result.RosterID); err != nil {
		return err
	}

	query = `
		INSERT INTO roster_assignments (roster_id, soldier_id, date, is_duty, exception_code, requirement, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for position, a := range result.Assignments {
		var exceptionCode sql.NullString
		if a.ExceptionCode != nil {
			exceptionCode = sql.NullString{String: *a.ExceptionCode, Valid: true}
		}
		var requirement sql.NullInt32
		if a.Requirement != nil {
			requirement = sql.NullInt32{Int32: int32(*a.Requirement), Valid: true}
		}

		args := []any{result.RosterID, a.SoldierID, a.Date, a.IsDuty, exceptionCode, requirement, position}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	query = `
		INSERT INTO roster_baselines (roster_id, soldier_id, start_days, end_days)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (roster_id, soldier_id) DO UPDATE SET end_days = EXCLUDED.end_days
	`
	for _, b := range baselines {
		if _, err := tx.ExecContext(ctx, query, result.RosterID, b.SoldierID, b.Start, b.End); err != nil {
			return err
		}
	}

	if err := tx.QueryRowContext(ctx, `SELECT NOW()`).Scan(&result.CreatedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRosterAssignments(rosterID int64) (*domain.RosterAssignments, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT soldier_id, date, is_duty, exception_code, requirement, created_at
		FROM roster_assignments
		WHERE roster_id = $1
		ORDER BY position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, rosterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &domain.RosterAssignments{
		RosterID:    rosterID,
		Assignments: make([]domain.Assignment, 0),
	}

	for rows.Next() {
		var row struct {
			soldierID     int64
			date          domain.Date
			isDuty        bool
			exceptionCode sql.NullString
			requirement   sql.NullInt32
			createdAt     time.Time
		}

		dst := []any{&row.soldierID, &row.date, &row.isDuty, &row.exceptionCode, &row.requirement, &row.createdAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		a := domain.Assignment{
			SoldierID: row.soldierID,
			Date:      row.date,
			IsDuty:    row.isDuty,
		}
		if row.exceptionCode.Valid {
			code := row.exceptionCode.String
			a.ExceptionCode = &code
		}
		if row.requirement.Valid {
			requirement := int(row.requirement.Int32)
			a.Requirement = &requirement
		}
		result.Assignments = append(result.Assignments, a)
		result.CreatedAt = row.createdAt
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 还需要处理没有结果的情况
	if len(result.Assignments) == 0 {
		return nil, sql.ErrNoRows
	}

	return result, nil
}

func (r *Repository) GetRosterBaselines(rosterID int64) (map[int64]int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `SELECT soldier_id, start_days FROM roster_baselines WHERE roster_id = $1`

	rows, err := r.dbpool.QueryContext(ctx, query, rosterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	baselines := make(map[int64]int)
	for rows.Next() {
		var soldierID int64
		var start int
		if err := rows.Scan(&soldierID, &start); err != nil {
			return nil, err
		}
		baselines[soldierID] = start
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return baselines, nil
}

// FinalizeRoster 把排班表最近一次保存的结束计数写回仍在表中的士兵，作为之后排班的基线
func (r *Repository) FinalizeRoster(rosterID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE soldiers AS s
		SET
			days_since_last_duty = rb.end_days,
			version = s.version + 1
		FROM roster_baselines AS rb
		JOIN roster_soldiers AS rs ON rs.roster_id = rb.roster_id AND rs.soldier_id = rb.soldier_id
		WHERE rb.roster_id = $1 AND s.id = rb.soldier_id
	`

	result, err := r.dbpool.ExecContext(ctx, query, rosterID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

func (r *Repository) CreateAppointment(appointment *domain.Appointment) error {
	query := `
		INSERT INTO appointments (soldier_id, start_date, end_date, exception_code, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{appointment.SoldierID, appointment.StartDate, appointment.EndDate, appointment.ExceptionCode, appointment.Reason}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&appointment.ID, &appointment.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAppointmentsBySoldierID(soldierID int64) ([]*domain.Appointment, error) {
	query := `
		SELECT id, start_date, end_date, exception_code, reason, created_at
		FROM appointments
		WHERE soldier_id = $1
		ORDER BY start_date, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, soldierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		appointment := &domain.Appointment{SoldierID: soldierID}
		dst := []any{&appointment.ID, &appointment.StartDate, &appointment.EndDate, &appointment.ExceptionCode, &appointment.Reason, &appointment.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return appointments, nil
}

// GetOverlappingAppointments 返回这些士兵在 [start, end] 内有重叠的所有 Appointment
// 按开始日期排序，多个 Appointment 覆盖同一天时以先开始的为准
func (r *Repository) GetOverlappingAppointments(soldierIDs []int64, start, end domain.Date) ([]*domain.Appointment, error) {
	query := `
		SELECT id, soldier_id, start_date, end_date, exception_code, reason, created_at
		FROM appointments
		WHERE soldier_id = ANY($1) AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, soldierIDs, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		appointment := &domain.Appointment{}
		dst := []any{&appointment.ID, &appointment.SoldierID, &appointment.StartDate, &appointment.EndDate, &appointment.ExceptionCode, &appointment.Reason, &appointment.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return appointments, nil
}

func (r *Repository) DeleteAppointment(id int64) error {
	query := `
		DELETE FROM appointments WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

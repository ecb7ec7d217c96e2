package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

func (r *Repository) CreateHoliday(holiday *domain.Holiday) error {
	query := `
		INSERT INTO holidays (date, name)
		VALUES ($1, $2)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, holiday.Date, holiday.Name).Scan(&holiday.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllHolidays() ([]*domain.Holiday, error) {
	query := `
		SELECT id, date, name FROM holidays ORDER BY date
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := make([]*domain.Holiday, 0)
	for rows.Next() {
		holiday := &domain.Holiday{}
		if err := rows.Scan(&holiday.ID, &holiday.Date, &holiday.Name); err != nil {
			return nil, err
		}
		holidays = append(holidays, holiday)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return holidays, nil
}

func (r *Repository) GetHolidaysBetween(start, end domain.Date) ([]*domain.Holiday, error) {
	query := `
		SELECT id, date, name FROM holidays
		WHERE date BETWEEN $1 AND $2
		ORDER BY date
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := make([]*domain.Holiday, 0)
	for rows.Next() {
		holiday := &domain.Holiday{}
		if err := rows.Scan(&holiday.ID, &holiday.Date, &holiday.Name); err != nil {
			return nil, err
		}
		holidays = append(holidays, holiday)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return holidays, nil
}

func (r *Repository) DeleteHoliday(id int64) error {
	query := `
		DELETE FROM holidays WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

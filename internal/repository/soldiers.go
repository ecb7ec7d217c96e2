package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

func (r *Repository) CreateSoldier(soldier *domain.Soldier) error {
	query := `
		INSERT INTO soldiers (first_name, last_name, rank, days_since_last_duty, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{soldier.FirstName, soldier.LastName, soldier.Rank, soldier.DaysSinceLastDuty, soldier.IsActive}
	dst := []any{&soldier.ID, &soldier.CreatedAt, &soldier.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSoldierByID(id int64) (*domain.Soldier, error) {
	query := `
		SELECT first_name, last_name, rank, days_since_last_duty, is_active, created_at, version
		FROM soldiers WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	soldier := &domain.Soldier{
		ID: id,
	}

	dst := []any{&soldier.FirstName, &soldier.LastName, &soldier.Rank, &soldier.DaysSinceLastDuty, &soldier.IsActive, &soldier.CreatedAt, &soldier.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return soldier, nil
}

func (r *Repository) GetAllSoldiers() ([]*domain.Soldier, error) {
	query := `
		SELECT id, first_name, last_name, rank, days_since_last_duty, is_active, created_at, version
		FROM soldiers
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	soldiers := make([]*domain.Soldier, 0)
	for rows.Next() {
		soldier := &domain.Soldier{}
		dst := []any{&soldier.ID, &soldier.FirstName, &soldier.LastName, &soldier.Rank, &soldier.DaysSinceLastDuty, &soldier.IsActive, &soldier.CreatedAt, &soldier.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		soldiers = append(soldiers, soldier)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return soldiers, nil
}

// GetSoldiersByIDs 按 ids 的顺序返回士兵，不存在的 id 会被忽略
func (r *Repository) GetSoldiersByIDs(ids []int64) ([]*domain.Soldier, error) {
	query := `
		SELECT id, first_name, last_name, rank, days_since_last_duty, is_active, created_at, version
		FROM soldiers WHERE id = ANY($1)
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]*domain.Soldier, len(ids))
	for rows.Next() {
		soldier := &domain.Soldier{}
		dst := []any{&soldier.ID, &soldier.FirstName, &soldier.LastName, &soldier.Rank, &soldier.DaysSinceLastDuty, &soldier.IsActive, &soldier.CreatedAt, &soldier.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		byID[soldier.ID] = soldier
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 排班结果的顺序依赖士兵的输入顺序，所以这里不能直接使用数据库返回的顺序
	soldiers := make([]*domain.Soldier, 0, len(ids))
	for _, id := range ids {
		if soldier, exists := byID[id]; exists {
			soldiers = append(soldiers, soldier)
		}
	}

	return soldiers, nil
}

func (r *Repository) UpdateSoldier(soldier *domain.Soldier) error {
	query := `
		UPDATE soldiers
		SET
			first_name = $1,
			last_name = $2,
			rank = $3,
			days_since_last_duty = $4,
			is_active = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{soldier.FirstName, soldier.LastName, soldier.Rank, soldier.DaysSinceLastDuty, soldier.IsActive, soldier.ID, soldier.Version}
	dst := []any{&soldier.CreatedAt, &soldier.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteSoldier(id int64) error {
	query := `
		DELETE FROM soldiers WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

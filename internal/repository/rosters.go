package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

func (r *Repository) CreateRoster(roster *domain.Roster) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	configJSON, err := json.Marshal(roster.Config)
	if err != nil {
		return err
	}
	if roster.Exceptions == nil {
		roster.Exceptions = domain.ExceptionMap{}
	}
	exceptionsJSON, err := json.Marshal(roster.Exceptions)
	if err != nil {
		return err
	}

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO rosters (name, config, exceptions)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, roster.Name, configJSON, exceptionsJSON).Scan(&roster.ID, &roster.CreatedAt, &roster.Version); err != nil {
		return err
	}

	if err := insertRosterSoldiers(ctx, tx, roster.ID, roster.SoldierIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// insertRosterSoldiers 保存士兵在排班表中的顺序，排班结果的输出顺序依赖这个顺序
func insertRosterSoldiers(ctx context.Context, tx *sql.Tx, rosterID int64, soldierIDs []int64) error {
	query := `
		INSERT INTO roster_soldiers (roster_id, soldier_id, position)
		VALUES ($1, $2, $3)
	`
	for position, soldierID := range soldierIDs {
		if _, err := tx.ExecContext(ctx, query, rosterID, soldierID, position); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) GetRosterByID(id int64) (*domain.Roster, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			r.name,
			r.config,
			r.exceptions,
			r.created_at,
			r.version,
			rs.soldier_id
		FROM rosters r
		LEFT JOIN roster_soldiers rs ON r.id = rs.roster_id
		WHERE r.id = $1
		ORDER BY rs.position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster *domain.Roster
	for rows.Next() {
		var row struct {
			Name       string
			Config     []byte
			Exceptions []byte
			CreatedAt  time.Time
			Version    int32
			SoldierID  sql.NullInt64
		}

		dst := []any{&row.Name, &row.Config, &row.Exceptions, &row.CreatedAt, &row.Version, &row.SoldierID}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if roster == nil {
			// 第一行时解析排班表本身
			roster = &domain.Roster{
				ID:         id,
				Name:       row.Name,
				CreatedAt:  row.CreatedAt,
				Version:    row.Version,
				SoldierIDs: make([]int64, 0),
			}
			if err := json.Unmarshal(row.Config, &roster.Config); err != nil {
				return nil, err
			}
			if err := json.Unmarshal(row.Exceptions, &roster.Exceptions); err != nil {
				return nil, err
			}
		}

		// 排班表中还没有任何士兵
		if !row.SoldierID.Valid {
			continue
		}
		roster.SoldierIDs = append(roster.SoldierIDs, row.SoldierID.Int64)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if roster == nil {
		return nil, sql.ErrNoRows
	}

	return roster, nil
}

func (r *Repository) GetAllRosters() ([]*domain.Roster, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			r.id,
			r.name,
			r.config,
			r.exceptions,
			r.created_at,
			r.version,
			rs.soldier_id
		FROM rosters r
		LEFT JOIN roster_soldiers rs ON r.id = rs.roster_id
		ORDER BY r.id, rs.position
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rosters := make([]*domain.Roster, 0)
	rostersMap := make(map[int64]*domain.Roster)

	for rows.Next() {
		var row struct {
			ID         int64
			Name       string
			Config     []byte
			Exceptions []byte
			CreatedAt  time.Time
			Version    int32
			SoldierID  sql.NullInt64
		}

		dst := []any{&row.ID, &row.Name, &row.Config, &row.Exceptions, &row.CreatedAt, &row.Version, &row.SoldierID}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		roster, exists := rostersMap[row.ID]
		if !exists {
			roster = &domain.Roster{
				ID:         row.ID,
				Name:       row.Name,
				CreatedAt:  row.CreatedAt,
				Version:    row.Version,
				SoldierIDs: make([]int64, 0),
			}
			if err := json.Unmarshal(row.Config, &roster.Config); err != nil {
				return nil, err
			}
			if err := json.Unmarshal(row.Exceptions, &roster.Exceptions); err != nil {
				return nil, err
			}
			rostersMap[row.ID] = roster
			rosters = append(rosters, roster)
		}

		if !row.SoldierID.Valid {
			continue
		}
		roster.SoldierIDs = append(roster.SoldierIDs, row.SoldierID.Int64)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rosters, nil
}

// UpdateRoster 更新名称、配置和士兵列表，不修改例外
func (r *Repository) UpdateRoster(roster *domain.Roster) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	configJSON, err := json.Marshal(roster.Config)
	if err != nil {
		return err
	}

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE rosters
		SET
			name = $1,
			config = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`
	if err := tx.QueryRowContext(ctx, query, roster.Name, configJSON, roster.ID, roster.Version).Scan(&roster.Version); err != nil {
		return err
	}

	query = `DELETE FROM roster_soldiers WHERE roster_id = $1`
	if _, err := tx.ExecContext(ctx, query, roster.ID); err != nil {
		return err
	}
	if err := insertRosterSoldiers(ctx, tx, roster.ID, roster.SoldierIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateRosterExceptions(roster *domain.Roster) error {
	query := `
		UPDATE rosters
		SET
			exceptions = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	exceptionsJSON, err := json.Marshal(roster.Exceptions)
	if err != nil {
		return err
	}

	if err := r.dbpool.QueryRowContext(ctx, query, exceptionsJSON, roster.ID, roster.Version).Scan(&roster.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteRoster(id int64) error {
	query := `
		DELETE FROM rosters WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

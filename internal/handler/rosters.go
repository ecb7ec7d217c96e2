package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/utils"
)

// rosterConstraintError 处理写入排班表时违反的数据库约束，返回 false 表示不是约束错误
func (h *Handler) rosterConstraintError(w http.ResponseWriter, r *http.Request, err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.ConstraintName {
	case "rosters_name_key":
		h.badRequest(w, r, errors.New("排班表名称已存在"))
	case "roster_soldiers_soldier_id_fkey":
		h.badRequest(w, r, errors.New("排班表中包含不存在的士兵"))
	default:
		h.internalServerError(w, r, err)
	}
	return true
}

func (h *Handler) CreateRoster(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string              `json:"name" validate:"required"`
		Config     domain.RosterConfig `json:"config"`
		SoldierIDs []int64             `json:"soldierIDs" validate:"required,min=1"`
		Exceptions domain.ExceptionMap `json:"exceptions"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	roster := &domain.Roster{
		Name:       req.Name,
		Config:     req.Config,
		Exceptions: req.Exceptions,
		SoldierIDs: req.SoldierIDs,
	}
	if roster.Exceptions == nil {
		roster.Exceptions = domain.ExceptionMap{}
	}

	if err := scheduler.ValidateConfig(h.parameters, &roster.Config); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateSoldierIDs(roster.SoldierIDs); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateRosterExceptions(roster, roster.Exceptions); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateRoster(roster); err != nil {
		if !h.rosterConstraintError(w, r, err) {
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "排班表创建成功", roster)
}

func (h *Handler) GetAllRosters(w http.ResponseWriter, r *http.Request) {
	rosters, err := h.repository.GetAllRosters()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班表列表成功", rosters)
}

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	roster := r.Context().Value(RosterCtx).(*domain.Roster)
	h.successResponse(w, r, "获取排班表成功", roster)
}

func (h *Handler) UpdateRoster(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       *string              `json:"name" validate:"omitempty,min=1"`
		Config     *domain.RosterConfig `json:"config"`
		SoldierIDs []int64              `json:"soldierIDs" validate:"omitempty,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	roster := r.Context().Value(RosterCtx).(*domain.Roster)

	if req.Name != nil {
		roster.Name = *req.Name
	}
	if req.Config != nil {
		if err := scheduler.ValidateConfig(h.parameters, req.Config); err != nil {
			h.badRequest(w, r, err)
			return
		}
		roster.Config = *req.Config
	}
	if req.SoldierIDs != nil {
		if err := utils.ValidateSoldierIDs(req.SoldierIDs); err != nil {
			h.badRequest(w, r, err)
			return
		}
		roster.SoldierIDs = req.SoldierIDs
	}

	if err := h.repository.UpdateRoster(roster); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新排班表失败，请重试")
		case !h.rosterConstraintError(w, r, err):
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新排班表成功", roster)
}

func (h *Handler) DeleteRoster(w http.ResponseWriter, r *http.Request) {
	roster := r.Context().Value(RosterCtx).(*domain.Roster)

	if err := h.repository.DeleteRoster(roster.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除排班表成功", nil)
}

// UpdateRosterExceptions 整体替换排班表的例外
func (h *Handler) UpdateRosterExceptions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Exceptions domain.ExceptionMap `json:"exceptions"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	roster := r.Context().Value(RosterCtx).(*domain.Roster)

	if req.Exceptions == nil {
		req.Exceptions = domain.ExceptionMap{}
	}
	if err := utils.ValidateRosterExceptions(roster, req.Exceptions); err != nil {
		h.badRequest(w, r, err)
		return
	}

	roster.Exceptions = req.Exceptions
	if err := h.repository.UpdateRosterExceptions(roster); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新例外失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新例外成功", roster)
}

func (h *Handler) GetRosterAssignments(w http.ResponseWriter, r *http.Request) {
	roster := r.Context().Value(RosterCtx).(*domain.Roster)

	result, err := h.repository.GetRosterAssignments(roster.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "该排班表尚未生成排班结果")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取排班结果成功", result)
}

// FinalizeRoster 结束排班表，把最近一次保存的结束计数写回士兵
func (h *Handler) FinalizeRoster(w http.ResponseWriter, r *http.Request) {
	roster := r.Context().Value(RosterCtx).(*domain.Roster)

	if err := h.repository.FinalizeRoster(roster.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "该排班表尚未生成排班结果")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "排班表已结束，士兵计数已更新", nil)
}

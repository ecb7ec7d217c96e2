package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

func validRank(rank string) error {
	if _, ok := domain.ParseRank(rank); !ok {
		return fmt.Errorf("无法识别的军衔 %q", rank)
	}
	return nil
}

func (h *Handler) CreateSoldier(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName         string `json:"firstName" validate:"required"`
		LastName          string `json:"lastName" validate:"required"`
		Rank              string `json:"rank" validate:"required"`
		DaysSinceLastDuty int    `json:"daysSinceLastDuty" validate:"min=0"`
		IsActive          *bool  `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := validRank(req.Rank); err != nil {
		h.badRequest(w, r, err)
		return
	}

	soldier := &domain.Soldier{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Rank:              req.Rank,
		DaysSinceLastDuty: req.DaysSinceLastDuty,
		IsActive:          true,
	}
	if req.IsActive != nil {
		soldier.IsActive = *req.IsActive
	}

	if err := h.repository.CreateSoldier(soldier); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "士兵创建成功", soldier)
}

func (h *Handler) GetAllSoldiers(w http.ResponseWriter, r *http.Request) {
	soldiers, err := h.repository.GetAllSoldiers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取士兵列表成功", soldiers)
}

func (h *Handler) GetSoldier(w http.ResponseWriter, r *http.Request) {
	soldier := r.Context().Value(SoldierInfoCtx).(*domain.Soldier)
	h.successResponse(w, r, "获取士兵信息成功", soldier)
}

func (h *Handler) UpdateSoldier(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName         *string `json:"firstName" validate:"omitempty,min=1"`
		LastName          *string `json:"lastName" validate:"omitempty,min=1"`
		Rank              *string `json:"rank"`
		DaysSinceLastDuty *int    `json:"daysSinceLastDuty" validate:"omitempty,min=0"`
		IsActive          *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	soldier := r.Context().Value(SoldierInfoCtx).(*domain.Soldier)

	if req.FirstName != nil {
		soldier.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		soldier.LastName = *req.LastName
	}
	if req.Rank != nil {
		if err := validRank(*req.Rank); err != nil {
			h.badRequest(w, r, err)
			return
		}
		soldier.Rank = *req.Rank
	}
	if req.DaysSinceLastDuty != nil {
		soldier.DaysSinceLastDuty = *req.DaysSinceLastDuty
	}
	if req.IsActive != nil {
		soldier.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateSoldier(soldier); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新士兵信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新士兵信息成功", soldier)
}

func (h *Handler) DeleteSoldier(w http.ResponseWriter, r *http.Request) {
	soldier := r.Context().Value(SoldierInfoCtx).(*domain.Soldier)

	if err := h.repository.DeleteSoldier(soldier.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除士兵成功", nil)
}

func (h *Handler) GetSoldierAppointments(w http.ResponseWriter, r *http.Request) {
	soldier := r.Context().Value(SoldierInfoCtx).(*domain.Soldier)

	appointments, err := h.repository.GetAppointmentsBySoldierID(soldier.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取士兵的 Appointment 成功", appointments)
}

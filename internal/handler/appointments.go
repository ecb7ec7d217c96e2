package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/utils"
)

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SoldierID     int64       `json:"soldierID" validate:"required"`
		StartDate     domain.Date `json:"startDate" validate:"required"`
		EndDate       domain.Date `json:"endDate" validate:"required"`
		ExceptionCode string      `json:"exceptionCode"`
		Reason        string      `json:"reason"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	appointment := &domain.Appointment{
		SoldierID:     req.SoldierID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		ExceptionCode: req.ExceptionCode,
		Reason:        req.Reason,
	}
	if err := utils.ValidateAppointment(appointment); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateAppointment(appointment); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "appointments_soldier_id_fkey":
				h.badRequest(w, r, errors.New("士兵不存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Appointment 创建成功", appointment)
}

func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Appointment ID无效")
		return
	}

	if err := h.repository.DeleteAppointment(id); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除 Appointment 成功", nil)
}

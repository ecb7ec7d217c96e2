package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/generator"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/repository"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/scheduler"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository *repository.Repository
	translator ut.Translator
	generator  *generator.Generator
	parameters *scheduler.Parameters
	jobChannel *amqp.Channel

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, gen *generator.Generator, parameters *scheduler.Parameters, jobCh *amqp.Channel) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		translator: trans,
		generator:  gen,
		parameters: parameters,
		jobChannel: jobCh,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Handle("/metrics", metrics.Handler())

	// 以下 API 必须要携带有效的令牌才允许调用，写操作只有 editor 可以执行
	editorOnly := h.RequiredRole([]domain.Role{domain.RoleEditor})

	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/soldiers", func(r chi.Router) {
			r.With(editorOnly).Post("/", h.CreateSoldier)
			r.Get("/", h.GetAllSoldiers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.soldierInfo)
				r.Get("/", h.GetSoldier)
				r.With(editorOnly).Patch("/", h.UpdateSoldier)
				r.With(editorOnly).Delete("/", h.DeleteSoldier)
				r.Get("/appointments", h.GetSoldierAppointments)
			})
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Use(editorOnly)
			r.Post("/", h.CreateAppointment)
			r.Delete("/{id}", h.DeleteAppointment)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.GetAllHolidays)
			r.With(editorOnly).Post("/", h.CreateHoliday)
			r.With(editorOnly).Delete("/{id}", h.DeleteHoliday)
		})

		r.Route("/rosters", func(r chi.Router) {
			r.With(editorOnly).Post("/", h.CreateRoster)
			r.Get("/", h.GetAllRosters)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.roster)
				r.Get("/", h.GetRoster)
				r.With(editorOnly).Patch("/", h.UpdateRoster)
				r.With(editorOnly).Delete("/", h.DeleteRoster)
				r.With(editorOnly).Put("/exceptions", h.UpdateRosterExceptions)
				r.With(editorOnly).Post("/generate", h.GenerateRoster)
				r.Get("/assignments", h.GetRosterAssignments)
				r.With(editorOnly).Post("/finalize", h.FinalizeRoster)
			})
		})
	})
}

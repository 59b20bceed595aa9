package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/qianji-dev/store-scheduler/backend/internal/config"
	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
	"github.com/qianji-dev/store-scheduler/backend/internal/repository"
	"github.com/qianji-dev/store-scheduler/backend/internal/scheduler"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	validate      *validator.Validate
	config        *config.Config
	repository    *repository.Repository
	translator    ut.Translator
	notifyChannel *amqp.Channel
	redisClient   *redis.Client

	loc        *time.Location
	engine     *scheduler.Engine
	aggregator *scheduler.Aggregator
	generator  *scheduler.Generator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, notifyCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Scheduling.Timezone)
	if err != nil {
		return nil, err
	}

	engine := scheduler.NewEngine(loc)

	return &Handler{
		validate:      validate,
		config:        cfg,
		repository:    repo,
		translator:    trans,
		notifyChannel: notifyCh,
		redisClient:   rdb,

		loc:        loc,
		engine:     engine,
		aggregator: scheduler.NewAggregator(repo, repo, loc),
		generator:  scheduler.NewGenerator(engine, loc),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 所有 API 必须带上外部身份服务签发的令牌才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.GetStoreEmployees)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.employeeInfo)
				r.Get("/", h.GetEmployeeInfo)
				r.With(h.RequiredRole([]domain.Role{domain.RoleStoreManager, domain.RoleAdmin})).Get("/availability-windows", h.GetEmployeeWindows)
			})
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.GetStoreShifts)
			r.With(h.RequiredRole([]domain.Role{domain.RoleStoreManager, domain.RoleAdmin})).Post("/", h.CreateShift)
			r.With(h.RequiredRole([]domain.Role{domain.RoleStoreManager, domain.RoleAdmin})).Post("/suggestions", h.GenerateSuggestions)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftInfo)
				r.With(h.RequiredRole([]domain.Role{domain.RoleStoreManager, domain.RoleAdmin})).Patch("/", h.UpdateShift)
				r.With(h.RequiredRole([]domain.Role{domain.RoleStoreManager, domain.RoleAdmin})).Delete("/", h.DeleteShift)
			})
		})

		r.Route("/availability-windows", func(r chi.Router) {
			r.Get("/", h.GetMyWindows)
			r.Put("/{weekday}", h.UpsertMyWindow)
			r.Delete("/{weekday}", h.DeleteMyWindow)
		})

		r.Route("/time-entries", func(r chi.Router) {
			r.Get("/", h.GetMyTimeEntries)
			r.Post("/clock-in", h.ClockIn)
			r.Post("/clock-out", h.ClockOut)
		})

		r.Route("/swap-requests", func(r chi.Router) {
			r.Post("/", h.CreateSwapRequest)
			r.Get("/", h.GetStoreSwapRequests)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.swapRequest)
				r.With(h.RequiredRole([]domain.Role{domain.RoleStoreManager, domain.RoleAdmin})).Post("/approve", h.ApproveSwapRequest)
				r.With(h.RequiredRole([]domain.Role{domain.RoleStoreManager, domain.RoleAdmin})).Post("/reject", h.RejectSwapRequest)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/hours", h.GetHoursReport)
		})
	})
}

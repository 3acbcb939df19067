package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskauth-api/internal/service"
)

const defaultMaxBodyBytes = 1 << 20

type RouterOptions struct {
	// CORSOrigins defaults to every origin.
	CORSOrigins  []string
	MaxBodyBytes int64
}

func NewRouter(users *service.UserService, tasks *service.TaskService, logger *zap.Logger, opts RouterOptions) http.Handler {
	userHandler := NewUserHandler(users, logger)
	taskHandler := NewTaskHandler(tasks, logger)

	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Location", "WWW-Authenticate"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestSize(opts.MaxBodyBytes))
	r.Use(middleware.StripSlashes)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", Health)
		r.Post("/users", userHandler.Register)
		r.Post("/token", userHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(users, logger))

			r.Get("/users/me", userHandler.Me)

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.Create)
				r.Get("/", taskHandler.List)
				r.Get("/stats", taskHandler.Stats)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Patch("/{id}/complete", taskHandler.Complete)
				r.Delete("/{id}", taskHandler.Delete)
			})
		})
	})

	return r
}

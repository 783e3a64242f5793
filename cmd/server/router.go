package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	sloghttp "github.com/samber/slog-http"

	"github.com/phrazzld/tasklane-api/internal/api"
	apiMiddleware "github.com/phrazzld/tasklane-api/internal/api/middleware"
	"github.com/phrazzld/tasklane-api/internal/metrics"
)

// gormPinger adapts the gorm handle to api.Pinger.
type gormPinger struct {
	app *application
}

func (p gormPinger) PingContext(ctx context.Context) error {
	sqlDB, err := p.app.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(sloghttp.NewWithConfig(app.logger, sloghttp.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   app.config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.userService, api.CookieConfig{
		Name:   app.config.Auth.CookieName,
		Secure: app.config.Auth.CookieSecure,
	})
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.config.Auth.CookieName)
	taskHandler := api.NewTaskHandler(app.taskService)
	uploadHandler := api.NewUploadHandler(app.taskService, app.config.Upload.MaxBytes)
	streamHandler := api.NewStreamHandler(app.bus)
	systemHandler := api.NewSystemHandler(gormPinger{app: app}, app.config.Server.Version)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", systemHandler.Health)
		r.Get("/version", systemHandler.Version)

		r.Route("/auth", func(r chi.Router) {
			r.Use(apiMiddleware.RateLimit(app.config.Auth.RateLimitPerMinute, app.config.Auth.RateLimitBurst))
			r.Post("/signup", authHandler.Signup)
			r.Post("/signin", authHandler.Signin)
			r.Post("/signout", authHandler.Signout)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/", taskHandler.CreateTask)
			r.Get("/", taskHandler.ListTasks)
			r.Post("/upload", uploadHandler.UploadTasks)
			r.Get("/stream", streamHandler.StreamTasks)
			r.Get("/{id}", taskHandler.GetTask)
			r.Patch("/{id}", taskHandler.UpdateTask)
			r.Delete("/{id}", taskHandler.DeleteTask)
		})
	})

	r.Handle("/metrics", metrics.Handler())

	return r
}

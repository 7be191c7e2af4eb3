//	@title			Portfolio Content API
//	@version		1.0
//	@description	Backend for a personal-portfolio site: public content endpoints plus a JWT-protected admin dashboard API.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/devfolio/service/internal/auth"
	"github.com/devfolio/service/internal/config"
	"github.com/devfolio/service/internal/db"
	"github.com/devfolio/service/internal/image"
	appMiddleware "github.com/devfolio/service/internal/middleware"
	"github.com/devfolio/service/internal/offering"
	"github.com/devfolio/service/internal/project"
	"github.com/devfolio/service/internal/settings"
	"github.com/devfolio/service/internal/skill"
	"github.com/devfolio/service/internal/storage"

	_ "github.com/devfolio/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store, err := storage.NewMinioStore(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StoragePublicBase,
		cfg.StorageUseSSL,
		image.Buckets,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// Wire dependencies: repository → service → handler
	imageRepo := image.NewRepository(pool)
	imageSvc := image.NewService(store, imageRepo, cfg.StorageTimeout)
	imageHandler := image.NewHandler(imageSvc)

	projectRepo := project.NewRepository(pool)
	projectSvc := project.NewService(projectRepo, imageSvc)
	projectHandler := project.NewHandler(projectSvc)

	skillRepo := skill.NewRepository(pool)
	skillHandler := skill.NewHandler(skillRepo)

	offeringRepo := offering.NewRepository(pool)
	offeringHandler := offering.NewHandler(offeringRepo)

	settingsRepo := settings.NewRepository(pool)
	settingsSvc := settings.NewService(settingsRepo, store, cfg.StorageTimeout)
	settingsHandler := settings.NewHandler(settingsSvc)

	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, cfg)
	authHandler := auth.NewHandler(authSvc)

	if err := authSvc.Seed(context.Background()); err != nil {
		log.Fatalf("admin seed failed: %v", err)
	}

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		// Public site content
		r.Get("/projects", projectHandler.List)
		r.Get("/projects/{projectID}", projectHandler.Get)
		r.Get("/projects/{projectID}/images", imageHandler.List)
		r.Get("/skills", skillHandler.List)
		r.Get("/services", offeringHandler.List)
		r.Get("/settings", settingsHandler.List)
		r.Get("/settings/{key}", settingsHandler.Get)

		// Admin dashboard
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))

			r.Post("/projects", projectHandler.Create)
			r.Put("/projects/{projectID}", projectHandler.Update)
			r.Delete("/projects/{projectID}", projectHandler.Delete)

			r.Post("/projects/{projectID}/images", imageHandler.Upload)
			r.Put("/projects/{projectID}/images/{imageID}", imageHandler.Replace)
			r.Delete("/images/{imageID}", imageHandler.Delete)

			r.Post("/skills", skillHandler.Create)
			r.Put("/skills/{skillID}", skillHandler.Update)
			r.Delete("/skills/{skillID}", skillHandler.Delete)

			r.Post("/services", offeringHandler.Create)
			r.Put("/services/{serviceID}", offeringHandler.Update)
			r.Delete("/services/{serviceID}", offeringHandler.Delete)

			r.Put("/settings/{key}", settingsHandler.Put)
			r.Post("/settings/profile-photo", settingsHandler.UploadProfilePhoto)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}

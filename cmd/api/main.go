package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"techvisit-backend/internal/config"
	"techvisit-backend/internal/cron"
	"techvisit-backend/internal/database"
	"techvisit-backend/internal/handlers"
	"techvisit-backend/internal/middleware"
	"techvisit-backend/internal/settings"
	"techvisit-backend/internal/storage"
)

func main() {
	// 1. Load configuration (.env in development, real env in production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to PostgreSQL
	db := database.New(&cfg.DB)
	defer db.Close()

	// 3. Initialize file storage: R2 when credentials are set, local disk otherwise
	var fileStore storage.Store
	if cfg.R2.AccountID != "" {
		fileStore, err = storage.NewR2Store(
			cfg.R2.AccountID, cfg.R2.AccessKey, cfg.R2.SecretKey,
			cfg.R2.Bucket, cfg.R2.PublicURL,
		)
		if err != nil {
			log.Fatalf("Failed to initialize R2 storage: %v", err)
		}
		log.Println("Using Cloudflare R2 file storage")
	} else {
		fileStore, err = storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.BaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize file storage: %v", err)
		}
		log.Printf("Using local file storage at %s", cfg.Upload.Dir)
	}

	// 4. Settings store (Postgres row + Redis push channel)
	settingsStore, err := settings.New(db.GetPool(),
		cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel)
	if err != nil {
		log.Fatalf("Failed to initialize settings store: %v", err)
	}
	defer settingsStore.Close()

	// 5. Set up router with global middleware
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:3001"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 6. Initialize handlers with their dependencies
	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	clientHandler := handlers.NewClientHandler(db)
	bookingHandler := handlers.NewBookingHandler(db)
	taskHandler := handlers.NewTaskHandler(db)
	reportHandler := handlers.NewReportHandler(db, settingsStore)
	settingsHandler := handlers.NewSettingsHandler(db, settingsStore)
	dashboardHandler := handlers.NewDashboardHandler(db)
	uploadHandler := handlers.NewUploadHandler(fileStore)
	activityHandler := handlers.NewActivityHandler(db)
	notificationHandler := handlers.NewNotificationHandler(db)
	userHandler := handlers.NewUserManagementHandler(db)

	// Start background cron jobs
	cron.StartNotifier(db)

	// 7. Public routes (no authentication required)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("TechVisit API"))
	})
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(db.Health())
	})

	// Auth routes — login is rate-limited per IP
	r.With(middleware.RateLimit(rate.Limit(cfg.LoginRateLimitRPS), cfg.LoginRateLimitBurst)).
		Post("/api/auth/login", authHandler.Login)
	r.Post("/api/auth/register", authHandler.Register)

	// Serve uploaded files (local storage serves from disk, R2 redirects)
	r.Get("/api/files/*", uploadHandler.ServeFile)

	// 8. Protected routes (require valid JWT)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.InjectClientScope(db.GetPool()))

		// Current user profile
		r.Get("/api/auth/me", authHandler.GetMe)

		// Dashboard (read-only — accessible to all authenticated users)
		r.Get("/api/dashboard/metrics", dashboardHandler.Metrics)
		r.Get("/api/dashboard/upcoming", dashboardHandler.Upcoming)
		r.Get("/api/dashboard/clients", dashboardHandler.ClientActivity)

		// Notifications (user-scoped, all authenticated users)
		r.Get("/api/notifications", notificationHandler.List)
		r.Get("/api/notifications/unread-count", notificationHandler.UnreadCount)
		r.Post("/api/notifications/mark-all-read", notificationHandler.MarkAllRead)
		r.Patch("/api/notifications/{id}/read", notificationHandler.MarkRead)

		// Clients and branches — read-only for all roles
		r.Get("/api/clients", clientHandler.List)
		r.Get("/api/clients/export", clientHandler.Export)
		r.Get("/api/clients/{id}", clientHandler.GetByID)
		r.Get("/api/clients/{id}/branches", clientHandler.ListBranches)

		// Bookings and tasks — read-only for all roles
		r.Get("/api/bookings", bookingHandler.List)
		r.Get("/api/bookings/export", bookingHandler.Export)
		r.Get("/api/bookings/{id}", bookingHandler.GetByID)
		r.Get("/api/tasks", taskHandler.List)

		// Reports — reading, rendering, and preview accessible to scoped users
		r.Get("/api/reports", reportHandler.List)
		r.Get("/api/reports/{id}", reportHandler.GetByID)
		r.Get("/api/reports/{id}/view", reportHandler.View)
		r.Get("/api/reports/{id}/print", reportHandler.Print)
		r.Post("/api/reports/preview", reportHandler.Preview)

		// Activity log (read-only)
		r.Get("/api/activity", activityHandler.List)

		// File upload (logo, visit photos)
		r.Post("/api/upload", uploadHandler.Upload)

		// Settings — read plus the realtime event stream
		r.Get("/api/settings", settingsHandler.Get)
		r.Get("/api/settings/events", settingsHandler.Events)

		// Write operations restricted to admin role
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireMinRole("admin"))

			// Client write operations
			r.Post("/api/clients", clientHandler.Create)
			r.Put("/api/clients/{id}", clientHandler.Update)
			r.Delete("/api/clients/{id}", clientHandler.Delete)
			r.Post("/api/clients/{id}/branches", clientHandler.CreateBranch)
			r.Delete("/api/clients/{id}/branches/{branchId}", clientHandler.DeleteBranch)

			// Booking write operations
			r.Post("/api/bookings", bookingHandler.Create)
			r.Put("/api/bookings/{id}", bookingHandler.Update)
			r.Delete("/api/bookings/{id}", bookingHandler.Delete)

			// Task write operations
			r.Post("/api/tasks", taskHandler.Create)
			r.Put("/api/tasks/{id}", taskHandler.Update)
			r.Delete("/api/tasks/{id}", taskHandler.Delete)
			r.Post("/api/tasks/bulk-complete", taskHandler.BulkComplete)

			// Report send flow — insert-only rows, soft delete
			r.Post("/api/reports", reportHandler.Create)
			r.Delete("/api/reports/{id}", reportHandler.Delete)

			// Settings writes push to every connected console
			r.Put("/api/settings", settingsHandler.Update)

			// User management
			r.Get("/api/users", userHandler.List)
			r.Patch("/api/users/{id}/role", userHandler.UpdateRole)
			r.Delete("/api/users/{id}", userHandler.Delete)
			r.Get("/api/users/{id}/clients", userHandler.GetUserClients)
			r.Put("/api/users/{id}/clients", userHandler.SetUserClients)
		})
	})

	// 9. Start server with graceful shutdown
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server started on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-done
	log.Println("Server stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}

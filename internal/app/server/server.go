package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/course"
	"hrportal/internal/domain/org"
	"hrportal/internal/domain/request"
	"hrportal/internal/domain/survey"
	"hrportal/internal/platform/config"
	"hrportal/internal/platform/db"
	"hrportal/internal/platform/metrics"
	authhandler "hrportal/internal/transport/http/handlers/auth"
	coursehandler "hrportal/internal/transport/http/handlers/courses"
	dashboardhandler "hrportal/internal/transport/http/handlers/dashboard"
	orghandler "hrportal/internal/transport/http/handlers/org"
	requesthandler "hrportal/internal/transport/http/handlers/requests"
	surveyhandler "hrportal/internal/transport/http/handlers/surveys"
	"hrportal/internal/transport/http/middleware"
)

type App struct {
	Config    config.Config
	DB        *pgxpool.Pool
	Collector *metrics.Collector
	Router    http.Handler
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	app := New(cfg, pool)
	log.Printf("hrportal listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// New assembles the router against an already connected pool.
func New(cfg config.Config, pool *pgxpool.Pool) *App {
	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	authStore := auth.NewStore(pool)
	requestStore := request.NewStore(pool)
	requestService := request.NewService(requestStore)
	courseStore := course.NewStore(pool)
	orgStore := org.NewStore(pool)
	surveyStore := survey.NewStore(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, authStore))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret, cfg.TokenTTL)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthRateLimit(cfg.RateLimitPerMinute, time.Minute))
			authHandler.RegisterRoutes(r)
		})

		requesthandler.NewHandler(requestService, orgStore, cfg.MaxAttachmentBytes).RegisterRoutes(r)
		coursehandler.NewHandler(courseStore).RegisterRoutes(r)
		orghandler.NewHandler(orgStore).RegisterRoutes(r)
		surveyhandler.NewHandler(surveyStore, orgStore).RegisterRoutes(r)
		dashboardhandler.NewHandler(requestStore, courseStore, orgStore, collector).RegisterRoutes(r)
	})

	spa := middleware.Guard(cfg.JWTSecret)(spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	router.Mount("/", spa)

	return &App{Config: cfg, DB: pool, Collector: collector, Router: router}
}

// spaHandler serves the built console, falling back to index.html so
// client-side routes deep-link correctly.
type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}

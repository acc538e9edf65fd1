package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/api/handlers"
	mw "github.com/simonhalbmann-cpu/anora-sub000/internal/api/middleware"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/config"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/core"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/embedding"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/extract"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/freeze"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/llm"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/resolve"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/service"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/stance"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/store"
)

// App holds the router and request metrics for lifecycle management.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) (*App, error) {
	// Stores
	accountStore := store.NewAccountStore(db)
	rawEventStore := store.NewRawEventStore(db)
	factStore := store.NewFactStore(db)
	entityStore := store.NewEntityStore(db)
	haltungStore := store.NewHaltungStore(db)
	conflictStore := store.NewConflictStore(db)

	// External clients via provider factory
	var replyClient domain.ReplyClient
	var embeddingClient domain.EmbeddingClient

	llmProvider := config.LLMProvider()
	embeddingProvider := config.EmbeddingProvider()

	var err error
	replyClient, err = llm.NewClient(llmProvider, config.LLMAPIKey())
	if err != nil {
		logger.Warn("reply client initialization failed", zap.String("provider", llmProvider), zap.Error(err))
	} else {
		logger.Info("reply client initialized", zap.String("provider", llmProvider))
	}

	embeddingClient, err = embedding.NewClient(embeddingProvider, config.EmbeddingAPIKey(), config.EmbeddingModel())
	if err != nil {
		logger.Warn("embedding client initialization failed", zap.String("provider", embeddingProvider), zap.Error(err))
	} else {
		logger.Info("embedding client initialized", zap.String("provider", embeddingProvider))
	}

	// Engine
	frozen := freeze.NewRegistry()
	extractors := extract.NewRegistry(frozen)
	if err := extract.RegisterBuiltins(extractors); err != nil {
		return nil, err
	}
	engine, err := core.NewEngine(frozen, extractors, core.EngineOptions{
		Resolve:    resolve.Options{TieDelta: config.TieDelta()},
		Stance:     stance.Options{Step: config.StanceStep()},
		StrictKeys: config.StrictKeys(),
	})
	if err != nil {
		return nil, err
	}

	// Services
	executor := service.NewPlanExecutor(rawEventStore, factStore, entityStore, haltungStore, logger)
	ingestSvc := service.NewIngestService(engine, executor, rawEventStore, factStore, haltungStore, conflictStore, embeddingClient, logger)
	replySvc := service.NewReplyService(replyClient, logger)
	satellites := service.NewSatelliteRunner(factStore, logger,
		&service.DocClassifierSatellite{},
		&service.SignalSatellite{},
		service.NewDuplicateHintSatellite(embeddingClient, factStore),
	)

	// Handlers
	defaultExtractors := config.DefaultExtractors()
	accountHandler := handlers.NewAccountHandler(accountStore, logger)
	ingestHandler := handlers.NewIngestHandler(ingestSvc, satellites, defaultExtractors, logger)
	replyHandler := handlers.NewReplyHandler(ingestSvc, replySvc, defaultExtractors, logger)
	factHandler := handlers.NewFactHandler(factStore, embeddingClient, logger)
	entityHandler := handlers.NewEntityHandler(entityStore, logger)
	eventHandler := handlers.NewEventHandler(rawEventStore, logger)
	haltungHandler := handlers.NewHaltungHandler(haltungStore, logger)
	conflictHandler := handlers.NewConflictHandler(conflictStore, logger)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health (no auth)
	r.Get("/health", healthHandler(db))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// Account creation (no auth, bootstrap endpoint)
	r.Post("/v1/accounts", accountHandler.Create)

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(accountStore))

		r.Post("/ingest", ingestHandler.Ingest)
		r.Post("/reply", replyHandler.Generate)

		r.Route("/facts", func(r chi.Router) {
			r.Get("/", factHandler.List)
			r.Get("/search", factHandler.Search)
			r.Get("/{id}", factHandler.Get)
		})

		r.Route("/entities", func(r chi.Router) {
			r.Get("/", entityHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", entityHandler.Get)
				r.Get("/facts", factHandler.ListByEntity)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.List)
			r.Get("/{id}", eventHandler.Get)
		})

		r.Get("/haltung/{userID}", haltungHandler.Get)

		r.Route("/conflicts", func(r chi.Router) {
			r.Get("/", conflictHandler.List)
			r.Post("/{id}/resolve", conflictHandler.Resolve)
		})
	})

	return app, nil
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.AccountStore    = (*store.AccountStore)(nil)
	_ domain.RawEventStore   = (*store.RawEventStore)(nil)
	_ domain.FactStore       = (*store.FactStore)(nil)
	_ domain.EntityResolver  = (*store.EntityStore)(nil)
	_ domain.HaltungStore    = (*store.HaltungStore)(nil)
	_ domain.ConflictStore   = (*store.ConflictStore)(nil)
	_ domain.Executor        = (*service.PlanExecutor)(nil)
	_ domain.EmbeddingClient = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient = (*embedding.MockClient)(nil)
	_ domain.ReplyClient     = (*llm.OpenAIClient)(nil)
	_ domain.ReplyClient     = (*llm.AnthropicClient)(nil)
	_ domain.ReplyClient     = (*llm.MockClient)(nil)
)

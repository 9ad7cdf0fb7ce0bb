package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hireprep/hireprep/backend/internal/config"
	"github.com/hireprep/hireprep/backend/internal/handler"
	"github.com/hireprep/hireprep/backend/internal/history"
	interviewModel "github.com/hireprep/hireprep/backend/internal/model/interview"
	"github.com/hireprep/hireprep/backend/internal/service/ai"
	attireService "github.com/hireprep/hireprep/backend/internal/service/attire"
	interviewService "github.com/hireprep/hireprep/backend/internal/service/interview"
	postureService "github.com/hireprep/hireprep/backend/internal/service/posture"
	reviewService "github.com/hireprep/hireprep/backend/internal/service/review"
	"github.com/hireprep/hireprep/backend/internal/storage"
)

// Every feature that records sessions gets its own engine and, for the
// sqlite driver, its own table partition.
var features = []string{"resume", "posture", "attire", "interview"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	engines, closers, err := buildEngines(cfg.History)
	if err != nil {
		log.Fatalf("failed to initialize history storage: %v", err)
	}
	defer func() {
		for _, engine := range engines {
			engine.Close()
		}
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	// Initialize AI service
	var aiSvc *ai.Service
	if cfg.AI.Enabled() {
		aiSvc, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality - check the ARK_* environment variables")
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, running with heuristic fallbacks only")
	}

	profiles := interviewModel.NewMemoryStore(interviewModel.Seed())

	router := handler.NewRouter(handler.Services{
		Engines:   engines,
		Review:    reviewService.NewService(nil, engines["resume"]),
		Attire:    attireService.NewService(aiSvc, engines["attire"]),
		Posture:   postureService.NewService(engines["posture"]),
		Interview: interviewService.NewService(profiles, aiSvc, engines["interview"]),
		AI:        aiSvc,
		Profiles:  profiles,
	})

	startServer(ctx, cfg.Server, router)
}

// buildEngines provisions one history engine per feature over the
// configured backend driver.
func buildEngines(cfg config.HistoryConfig) (map[string]*history.Engine, []io.Closer, error) {
	engines := make(map[string]*history.Engine, len(features))
	var closers []io.Closer

	opts := history.EngineOptions{
		Match: history.MatchOptions{FeedbackPrefixLen: cfg.MatchPrefixLen},
	}

	for _, feature := range features {
		var backend storage.Backend
		switch cfg.Driver {
		case "sqlite":
			db, err := storage.OpenSQLite(cfg.SQLitePath, feature)
			if err != nil {
				for _, c := range closers {
					_ = c.Close()
				}
				return nil, nil, err
			}
			closers = append(closers, db)
			backend = db
		default:
			backend = storage.NewMemoryBackend()
		}
		engines[feature] = history.NewEngine(feature, backend, opts)
	}

	log.Printf("history engines ready (driver=%s, features=%d)", cfg.Driver, len(features))
	return engines, closers, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("HirePrep backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

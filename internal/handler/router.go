package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	attireHandler "github.com/hireprep/hireprep/backend/internal/handler/attire"
	"github.com/hireprep/hireprep/backend/internal/handler/historyapi"
	interviewHandler "github.com/hireprep/hireprep/backend/internal/handler/interview"
	postureHandler "github.com/hireprep/hireprep/backend/internal/handler/posture"
	reviewHandler "github.com/hireprep/hireprep/backend/internal/handler/review"
	"github.com/hireprep/hireprep/backend/internal/history"
	interviewModel "github.com/hireprep/hireprep/backend/internal/model/interview"
	aiService "github.com/hireprep/hireprep/backend/internal/service/ai"
	attireService "github.com/hireprep/hireprep/backend/internal/service/attire"
	interviewService "github.com/hireprep/hireprep/backend/internal/service/interview"
	postureService "github.com/hireprep/hireprep/backend/internal/service/posture"
	reviewService "github.com/hireprep/hireprep/backend/internal/service/review"
)

// Services bundles everything the router mounts.
type Services struct {
	Engines   map[string]*history.Engine // keyed by feature name
	Review    *reviewService.Service
	Attire    *attireService.Service
	Posture   *postureService.Service
	Interview *interviewService.Service
	AI        *aiService.Service // nil when no model is configured
	Profiles  interviewModel.Store
}

// NewRouter wires HTTP routes to core services. Each feature mounts its own
// subtree under /api, and every feature with an engine gets the shared
// history endpoints.
func NewRouter(svcs Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Route("/resume", func(sub chi.Router) {
			reviewHandler.New(svcs.Review).RegisterRoutes(sub)
			mountHistory(sub, svcs.Engines["resume"])
		})

		api.Route("/attire", func(sub chi.Router) {
			attireHandler.New(svcs.Attire).RegisterRoutes(sub)
			mountHistory(sub, svcs.Engines["attire"])
		})

		api.Route("/posture", func(sub chi.Router) {
			postureHandler.New(svcs.Posture).RegisterRoutes(sub)
			mountHistory(sub, svcs.Engines["posture"])
		})

		api.Route("/interview", func(sub chi.Router) {
			interviewHandler.New(svcs.Interview, svcs.AI, svcs.Profiles).RegisterRoutes(sub)
			mountHistory(sub, svcs.Engines["interview"])
		})

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	})

	return r
}

func mountHistory(r chi.Router, engine *history.Engine) {
	if engine == nil {
		return
	}
	historyapi.New(engine).RegisterRoutes(r)
}

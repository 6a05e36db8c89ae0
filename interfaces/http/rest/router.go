package rest

import (
	"net/http"

	"medatlas-backend/application/commands/bus"
	querybus "medatlas-backend/application/queries/bus"
	"medatlas-backend/infrastructure/config"
	"medatlas-backend/interfaces/http/rest/handlers"
	"medatlas-backend/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	config     *config.Config
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *Router {
	return &Router{
		config:     cfg,
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		if rt.config.EnableAuth {
			r.Use(middleware.Authenticate(rt.config))
		}

		graphHandler := handlers.NewGraphHandler(rt.commandBus, rt.queryBus, rt.logger)
		nodeHandler := handlers.NewNodeHandler(rt.commandBus, rt.queryBus, rt.logger)
		edgeHandler := handlers.NewEdgeHandler(rt.commandBus, rt.queryBus, rt.logger)
		projectionHandler := handlers.NewProjectionHandler(rt.queryBus, rt.logger)

		r.Route("/graphs", func(r chi.Router) {
			r.Post("/", graphHandler.CreateGraph)
			r.Get("/", graphHandler.ListGraphs)

			r.Route("/{graphID}", func(r chi.Router) {
				r.Get("/", graphHandler.GetGraph)
				r.Delete("/", graphHandler.DeleteGraph)
				r.Get("/stats", graphHandler.GetGraphStats)
				r.Post("/import", graphHandler.ImportGraph)

				// Node endpoints
				r.Route("/nodes", func(r chi.Router) {
					r.Put("/", nodeHandler.UpsertNode)
					r.Post("/query", nodeHandler.QueryNodes)
					r.Get("/{nodeID}", nodeHandler.GetNode)
					r.Delete("/{nodeID}", nodeHandler.DeleteNode)
					r.Get("/{nodeID}/edges", nodeHandler.GetNodeEdges)
				})

				// Edge endpoints
				r.Route("/edges", func(r chi.Router) {
					r.Post("/", edgeHandler.CreateEdge)
					r.Post("/query", edgeHandler.QueryEdges)
					r.Delete("/{edgeID}", edgeHandler.DeleteEdge)
				})

				// Traversal and derived views
				r.Get("/traverse", nodeHandler.Traverse)
				r.Get("/timeline", projectionHandler.GetTimeline)
				r.Get("/evidence-chain", projectionHandler.GetEvidenceChain)
				r.Get("/evidence-chain/artifacts", projectionHandler.GetSourceArtifacts)
				r.Post("/evidence-chain/merge", projectionHandler.MergeEvidenceChains)
				r.Get("/alignments", projectionHandler.GetAlignments)
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// Package http exposes journey editing sessions and their canvases over a JSON API.
package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/canvas/raster"
	"github.com/aretw0/waypoint/pkg/canvas/svg"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var rawOpenAPI []byte

// Server serves the editor API on top of a session manager.
type Server struct {
	sessions *session.Manager
	catalog  ports.FunctionCatalog
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger

	validateRequests bool
	renderWidth      int
	renderHeight     int

	doc    *openapi3.T
	svg    *svg.Renderer
	raster *raster.Renderer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCatalog enables the catalog endpoints and function import.
func WithCatalog(catalog ports.FunctionCatalog) Option {
	return func(s *Server) {
		s.catalog = catalog
	}
}

// WithMetrics records render timings on m and serves gatherer on /metrics.
func WithMetrics(m *observability.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithRequestValidation checks every request against the embedded OpenAPI document
// before it reaches a handler.
func WithRequestValidation(enabled bool) Option {
	return func(s *Server) {
		s.validateRequests = enabled
	}
}

// WithRenderSize sets the SVG and PNG output size in pixels.
func WithRenderSize(width, height int) Option {
	return func(s *Server) {
		if width > 0 && height > 0 {
			s.renderWidth, s.renderHeight = width, height
		}
	}
}

// OpenAPI parses and validates the embedded OpenAPI document.
func OpenAPI(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawOpenAPI)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// NewHandler creates the HTTP handler for mgr.
func NewHandler(mgr *session.Manager, opts ...Option) (http.Handler, error) {
	s := &Server{
		sessions:     mgr,
		logger:       logging.NewNop(),
		renderWidth:  1200,
		renderHeight: 800,
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, err := OpenAPI(context.Background())
	if err != nil {
		return nil, err
	}
	s.doc = doc
	s.svg = svg.New(s.renderWidth, s.renderHeight)
	if s.raster, err = raster.New(s.renderWidth, s.renderHeight); err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	if s.validateRequests {
		router, err := legacy.NewRouter(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to build openapi router: %w", err)
		}
		r.Use(s.requestValidator(router))
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawOpenAPI)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/functions", s.ListCatalogFunctions)
	r.Get("/sessions", s.ListSessions)

	r.Route("/journeys", func(r chi.Router) {
		r.Get("/", s.ListJourneys)
		r.Post("/", s.CreateJourney)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetJourney)
			r.Patch("/", s.UpdateJourney)
			r.Delete("/", s.DeleteJourney)
			r.Post("/open", s.OpenJourney)
			r.Post("/save", s.SaveJourney)
			r.Post("/close", s.CloseJourney)
			r.Get("/validate", s.ValidateJourney)
			r.Get("/events", s.SubscribeEvents)

			r.Post("/properties", s.AddProperty)
			r.Patch("/properties/{itemId}", s.UpdateProperty)
			r.Delete("/properties/{itemId}", s.DeleteProperty)

			r.Post("/nodes", s.AddNode)
			r.Patch("/nodes/{itemId}", s.UpdateNode)
			r.Delete("/nodes/{itemId}", s.DeleteNode)

			r.Get("/functions/available", s.AvailableFunctions)
			r.Post("/functions", s.AddFunction)
			r.Patch("/functions/{itemId}", s.UpdateFunction)
			r.Delete("/functions/{itemId}", s.DeleteFunction)
			r.Post("/functions/{itemId}/import", s.ImportFunction)
			r.Post("/functions/{itemId}/entries/{field}", s.AddFunctionEntry)
			r.Put("/functions/{itemId}/entries/{field}/{index}", s.UpdateFunctionEntry)
			r.Delete("/functions/{itemId}/entries/{field}/{index}", s.RemoveFunctionEntry)

			r.Post("/mappings", s.AddMapping)
			r.Post("/mappings/draft", s.DraftMapping)
			r.Patch("/mappings/{itemId}", s.UpdateMapping)
			r.Delete("/mappings/{itemId}", s.DeleteMapping)

			r.Post("/edges", s.AddEdge)
			r.Patch("/edges/{itemId}", s.UpdateEdge)
			r.Delete("/edges/{itemId}", s.DeleteEdge)

			r.Get("/canvas/scene", s.GetScene)
			r.Get("/canvas.svg", s.RenderSVG)
			r.Get("/canvas.png", s.RenderPNG)
			r.Get("/canvas.mmd", s.RenderMermaid)
			r.Get("/canvas/viewport", s.GetViewport)
			r.Put("/canvas/viewport", s.SetViewport)
			r.Post("/canvas/zoom", s.Zoom)
			r.Post("/canvas/wheel", s.Wheel)
			r.Post("/canvas/pointer", s.Pointer)
			r.Post("/canvas/click", s.Click)
			r.Get("/canvas/selection", s.GetSelection)
			r.Put("/canvas/selection", s.Select)
			r.Delete("/canvas/selection", s.ClearSelection)
		})
	})

	return enableCORS(r), nil
}

// requestValidator rejects requests that do not satisfy the OpenAPI document.
// Routes the document does not describe pass through untouched.
func (s *Server) requestValidator(router routers.Router) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, params, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: params,
				Route:      route,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				s.logger.Warn("Request rejected by contract", "path", r.URL.Path, "error", err)
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_request"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Waypoint API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc != nil && s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"app":         "waypoint-http",
		"version":     strings.TrimSpace(waypoint.Version),
		"api_version": apiVersion,
		"catalog":     s.catalog != nil,
	})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.Sessions())
}

// ListCatalogFunctions handles the GET /functions request.
func (s *Server) ListCatalogFunctions(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no function catalog configured", Code: "catalog_disabled"})
		return
	}
	fns, err := s.catalog.ListFunctions(r.Context())
	if err != nil {
		s.logger.Error("Catalog request failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Code: "catalog_unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, fns)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

// decode reads a JSON body into dst, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error(), Code: "malformed_body"})
		return false
	}
	return true
}

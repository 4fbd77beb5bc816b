package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/claude/posecoach/internal/models"
	"github.com/claude/posecoach/internal/session"
)

// CatalogEditor persists exercise definitions.
type CatalogEditor interface {
	AddExercise(name string, rules []models.PostureRule) error
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	sessions *session.Manager
	editor   CatalogEditor
	whois    WhoIser
	log      *slog.Logger
	validate *validator.Validate
	upgrader websocket.Upgrader
	router   chi.Router
}

// New creates a new Server with all routes configured. editor may be nil,
// in which case exercise definitions are read-only.
func New(sessions *session.Manager, editor CatalogEditor, log *slog.Logger) *Server {
	s := &Server{
		sessions: sessions,
		editor:   editor,
		log:      log,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			// Browsers connect from the dev frontend on another port.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identify)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/v1/me", s.handleMe)

	s.router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleEndSession)
			r.Post("/frames", s.handleFrame)
			r.Put("/exercise", s.handleChangeExercise)
			r.Patch("/settings", s.handleUpdateSettings)
		})
	})

	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/exercises/{name}", s.handleGetExercise)
	s.router.Put("/api/v1/exercises/{name}", s.handlePutExercise)
	s.router.Post("/api/v1/catalog/reload", s.handleReloadCatalog)
	s.router.Post("/api/v1/score", s.handleScore)

	s.router.Get("/ws", s.handleWebSocket)
	s.router.Get("/ws/{id}", s.handleWebSocket)
}

// SetMetrics mounts a metrics handler (typically promhttp) at path.
func (s *Server) SetMetrics(path string, h http.Handler) {
	s.router.Method(http.MethodGet, path, h)
}

// SetMCP mounts an MCP streamable HTTP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}

// SetTailscale resolves request identities through the tailnet.
func (s *Server) SetTailscale(w WhoIser) {
	s.whois = w
}

package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"cytodash/internal"
	"cytodash/internal/dashboard"

	"github.com/gin-gonic/gin"
	"gopkg.in/guregu/null.v3"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Server represents the web server for the cytokine dashboard
type Server struct {
	router    *gin.Engine
	dashboard *dashboard.Service
	loadErr   error
	templates *template.Template
	logger    *internal.Logger
}

// NewServer creates the server. svc is nil when ingestion failed; loadErr then
// explains why and every API endpoint reports it.
func NewServer(svc *dashboard.Service, loadErr error, logger *internal.Logger) (*Server, error) {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if svc == nil && loadErr == nil {
		loadErr = fmt.Errorf("no dataset loaded")
	}

	funcMap := template.FuncMap{
		"concentration": func(v null.Float) string {
			if !v.Valid {
				return "N/A"
			}
			return fmt.Sprintf("%.2f", v.Float64)
		},
		"safeHTML": func(b []byte) template.HTML { return template.HTML(b) },
	}

	templates, err := template.New("").Funcs(funcMap).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.New(),
		dashboard: svc,
		loadErr:   loadErr,
		templates: templates,
		logger:    logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery())
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api", s.requireDataset)
	api.GET("/overview", s.handleOverview)
	api.GET("/timepoints", s.handleTimepoints)
	api.GET("/taxonomy", s.handleTaxonomy)
	api.GET("/categories", s.handleCategories)
	api.GET("/analytes", s.handleAnalytes)
	api.GET("/series", s.handleSeries)
	api.GET("/view", s.handleView)
	api.GET("/chart.png", s.handleChart)
	api.GET("/report", s.handleReport)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("[Server] starting cytokine dashboard on http://localhost%s", addr)
	return s.router.Run(addr)
}

// renderTemplate executes a named template as the response body
func (s *Server) renderTemplate(c *gin.Context, status int, name string, data interface{}) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		s.logger.Error("[Server] template %s: %v", name, err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// Package api serves the rules engine over a JSON HTTP API.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pillartwo/app"
	"pillartwo/internal"
	"pillartwo/internal/rulebook"
	"pillartwo/ports"
)

// Deps are the services the API reads from.
type Deps struct {
	Store      ports.EntityStore
	Dashboard  *app.DashboardService
	Validation *app.ValidationService
	Rulebook   *rulebook.Rulebook
	Exporter   ports.WorkbookExporter
	Logger     *internal.Logger
}

// Server represents the JSON API server
type Server struct {
	router *gin.Engine
	Deps
}

// NewServer creates the router and registers every route.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = internal.DefaultLogger
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{router: router, Deps: deps}
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/entities", s.handleEntities)
	api.GET("/entities/:id", s.handleEntity)
	api.GET("/entities/:id/detail", s.handleEntityDetail)
	api.GET("/jurisdictions", s.handleJurisdictions)
	api.GET("/summary", s.handleSummary)
	api.GET("/anomalies", s.handleAnomalies)
	api.GET("/dashboard", s.handleDashboard)
	api.GET("/profile/etr", s.handleETRProfile)
	api.POST("/validate/:type", s.handleValidate)
	api.GET("/references/:type", s.handleReference)
	api.GET("/export.xlsx", s.handleExport)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.Logger.Info("starting pillartwo API on %s", addr)
	return s.router.Run(addr)
}

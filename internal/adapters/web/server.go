// Package web serves the triage UI and JSON API over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/ports"
	"go.uber.org/zap"
)

const defaultMaxUploadBytes = 5 << 20

// Server is the HTTP front end of the triage service
type Server struct {
	service        ports.Triager
	metricsHandler http.Handler
	cfg            config.ServerConfig
	logger         *zap.Logger
	engine         *gin.Engine
	httpServer     *http.Server
	wg             sync.WaitGroup
}

// NewServer creates a new HTTP server. metricsHandler may be nil.
func NewServer(
	service ports.Triager,
	metricsHandler http.Handler,
	cfg config.ServerConfig,
	logger *zap.Logger,
) (*Server, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		service:        service,
		metricsHandler: metricsHandler,
		cfg:            cfg,
		logger:         logger,
	}

	engine := gin.New()
	engine.MaxMultipartMemory = cfg.MaxUploadBytes
	engine.SetHTMLTemplate(tmpl)
	engine.Use(RequestID(), Logger(logger), Recovery(logger))
	s.engine = engine
	s.routes()

	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/", s.index)
	s.engine.GET("/healthz", s.healthz)
	if s.metricsHandler != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metricsHandler))
	}

	api := s.engine.Group("/api")
	{
		api.POST("/process-email", s.processEmail)

		v1 := api.Group("/v1")
		v1.POST("/triage", s.triageJSON)
		v1.POST("/normalize", s.normalize)
	}

	partials := s.engine.Group("/partials")
	{
		partials.GET("/input-method/:method", s.inputMethod)
		partials.GET("/text-input", s.textInput)
	}
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Name identifies the listener in logs
func (s *Server) Name() string {
	return "http"
}

// Start binds the listen address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddress, err)
	}

	s.httpServer = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", ln.Addr().String()))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Stopping HTTP server")
	err := s.httpServer.Shutdown(ctx)
	s.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

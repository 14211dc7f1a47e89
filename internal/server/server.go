// Package server exposes the pipeline over HTTP. Routing, CORS, and upload
// plumbing live here; the verification semantics live in the stage packages
// and the orchestrator.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/clipcheck/clipcheck/internal/cache"
	"github.com/clipcheck/clipcheck/internal/model"
	"github.com/clipcheck/clipcheck/internal/pipeline"
	"github.com/clipcheck/clipcheck/internal/validate"
)

// Runner runs the full pipeline for one stored video
type Runner interface {
	Run(ctx context.Context, videoPath string) (*model.Result, error)
}

// SingleVerifier verifies one claim outside a pipeline run
type SingleVerifier interface {
	Verify(ctx context.Context, claim string) (model.Verdict, error)
}

// Deps are the collaborators the handlers dispatch to. Constructed by the
// process entry point and injected; the server owns none of their lifecycles.
type Deps struct {
	Runner      Runner
	Audio       pipeline.AudioExtractor
	Transcriber pipeline.Transcriber
	Claims      pipeline.ClaimExtractor
	Verifier    SingleVerifier
	Store       *cache.ResultStore
}

// Server is the HTTP service
type Server struct {
	engine   *gin.Engine
	httpServ *http.Server
	cfg      model.ServerConfig
	deps     Deps
	validate *validate.Validator
	log      zerolog.Logger
}

// New creates the server and registers all routes
func New(cfg model.ServerConfig, deps Deps, log zerolog.Logger) *Server {
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))
	engine.Use(corsMiddleware(cfg.AllowedOrigins))
	engine.MaxMultipartMemory = 32 << 20

	s := &Server{
		engine: engine,
		httpServ: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		cfg:      cfg,
		deps:     deps,
		validate: validate.New(),
		log:      log.With().Str("component", "server").Logger(),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/ping", s.handlePing)
	s.engine.POST("/upload", s.handleUpload)
	s.engine.POST("/stt", s.handleTranscribe)
	s.engine.POST("/claims/extract", s.handleExtractClaims)
	s.engine.POST("/claims/verify", s.handleVerifyClaim)
	s.engine.POST("/video/verify", s.handleVerifyVideo)
	s.engine.GET("/results/:id", s.handleResult)
}

// Handler exposes the routing tree, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.httpServ.Addr).Msg("listening")
		if err := s.httpServ.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServ.Shutdown(shutdownCtx)
}

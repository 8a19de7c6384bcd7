// Package server exposes the dataset analyses over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KaramelBytes/socialpulse-cli/internal/charts"
	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
	"github.com/KaramelBytes/socialpulse-cli/internal/views"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server. Handle is required; everything else has a
// usable zero value.
type Options struct {
	Handle       *pipeline.Handle
	Views        *views.Store
	Logger       *zap.Logger
	Mode         string
	ListenAddr   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TopCountries int
	Chart        charts.Options
}

// Server is the HTTP front end over one dataset.
type Server struct {
	opt     Options
	log     *zap.Logger
	engine  *gin.Engine
	metrics *metrics
}

// New builds the router. The dataset is not touched until the first request
// or until Run preloads it.
func New(opt Options) *Server {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.Mode != "" {
		gin.SetMode(opt.Mode)
	}
	if opt.TopCountries <= 0 {
		opt.TopCountries = 15
	}
	s := &Server{opt: opt, log: opt.Logger, engine: gin.New(), metrics: newMetrics()}
	s.engine.Use(recovery(s.log), requestLogger(s.log), s.metrics.middleware())
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/health", s.health)
	r.GET("/metrics", s.metrics.handler())

	api := r.Group("/api/v1")
	api.GET("/summary", s.summary)
	api.GET("/rows", s.rows)
	api.GET("/distribution/:field", s.distribution)
	api.GET("/means/:group/:value", s.means)
	api.GET("/correlations", s.correlations)
	api.GET("/countries", s.countries)
	api.GET("/insights", s.insights)
	api.GET("/describe/:field", s.describe)
	api.GET("/histogram/:field", s.histogram)
	api.GET("/report", s.report)
	api.GET("/export.csv", s.exportCSV)
	api.GET("/charts", s.chartList)
	api.GET("/charts/:name", s.chart)
	api.GET("/views", s.viewList)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run loads the dataset, then serves until ctx is cancelled and shuts down
// gracefully. A dataset that fails to load keeps the server from starting.
func (s *Server) Run(ctx context.Context) error {
	data, err := s.opt.Handle.Get()
	if err != nil {
		return err
	}
	s.metrics.rows.Set(float64(data.Len()))

	srv := &http.Server{
		Addr:         s.opt.ListenAddr,
		Handler:      s.engine,
		ReadTimeout:  s.opt.ReadTimeout,
		WriteTimeout: s.opt.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", s.opt.ListenAddr), zap.String("dataset", data.Name()), zap.Int("rows", data.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return <-errCh
}

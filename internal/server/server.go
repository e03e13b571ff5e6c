package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/config"
	expensedomain "github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/expense/domain"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/expense/liveevents"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/observability"
	obsmiddleware "github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/observability/logger"
	obsmetrics "github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/observability/metrics"
	obstracing "github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/observability/tracing"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterRoutes()
	}),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// RunHTTP binds the engine to the configured address for the lifetime of the app.
func RunHTTP(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config

	expenseSvc    expensedomain.Service
	liveEvents    *liveevents.Hub
	obsMetrics    *obsmetrics.Metrics
	ingestLimiter *ratelimit.ExpenseIngestLimiter
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	ExpenseSvc expensedomain.Service

	LiveEvents    *liveevents.Hub                 `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics             `optional:"true"`
	IngestLimiter *ratelimit.ExpenseIngestLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		expenseSvc:    p.ExpenseSvc,
		liveEvents:    p.LiveEvents,
		obsMetrics:    p.ObsMetrics,
		ingestLimiter: p.IngestLimiter,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// RegisterRoutes mounts the expense API.
func (s *Server) RegisterRoutes() {
	expenses := s.engine.Group("/expenses")
	{
		expenses.POST("", s.ExpenseIngestRateLimit(), s.CreateExpense)
		expenses.POST("/duplicates/check", s.CheckDuplicateReceipt)
		expenses.GET("", s.ListExpenses)
		expenses.GET("/live", s.StreamExpenseLiveEvents)
		expenses.GET("/:id", s.GetExpense)
		expenses.DELETE("/:id", s.DeleteExpense)
	}
}

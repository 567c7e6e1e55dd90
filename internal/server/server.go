package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/hookup/internal/config"
	hookupdomain "github.com/smallbiznis/hookup/internal/hookup/domain"
	"github.com/smallbiznis/hookup/internal/observability"
	obsmiddleware "github.com/smallbiznis/hookup/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/hookup/internal/observability/metrics"
	obstracing "github.com/smallbiznis/hookup/internal/observability/tracing"
	"github.com/smallbiznis/hookup/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const hookupsPath = "/api/smart-furniture-hookups"

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg config.Config, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("hookup API listening", zap.String("addr", ln.Addr().String()))

			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
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

// hookupLimiter is the subset of ratelimit.HookupLimiter the handlers use.
type hookupLimiter interface {
	Enabled() bool
	AllowWrite(ctx context.Context, clientKey string) (*ratelimit.RateLimitResult, error)
	AllowRead(ctx context.Context, clientKey string) (*ratelimit.RateLimitResult, error)
	TryLockHookup(ctx context.Context, hookupID string) (string, bool, error)
	ReleaseHookup(ctx context.Context, hookupID, token string) error
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	hookupSvc  hookupdomain.Service
	limiter    hookupLimiter
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	HookupSvc  hookupdomain.Service
	ObsMetrics *obsmetrics.Metrics       `optional:"true"`
	Limiter    *ratelimit.HookupLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("http.server"),
		hookupSvc:  p.HookupSvc,
		obsMetrics: p.ObsMetrics,
	}
	if p.Limiter.Enabled() {
		svc.limiter = p.Limiter
	}

	svc.registerHookupRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerHookupRoutes() {
	hookups := s.engine.Group(hookupsPath)

	hookups.POST("", s.HookupRateLimit(accessWrite), s.CreateHookup)
	hookups.GET("", s.HookupRateLimit(accessRead), s.ListHookups)
	hookups.GET("/:id", s.HookupRateLimit(accessRead), s.GetHookupByID)
	hookups.PATCH("/:id", s.HookupRateLimit(accessWrite), s.UpdateHookup)
	hookups.DELETE("/:id", s.HookupRateLimit(accessWrite), s.DeleteHookup)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}

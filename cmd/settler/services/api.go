package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/rafflechain/settler/config"
	"github.com/rafflechain/settler/internal/api"
	settlerLogger "github.com/rafflechain/settler/internal/logger"
	"github.com/rafflechain/settler/internal/raffle/store"
)

const shutdownTimeout = 10 * time.Second

func StartAPIServer(logger *slog.Logger, cfg *config.SettlerConfig, engine api.RaffleEngine, raffleStore store.RaffleStore,
	tracingAttributes []attribute.KeyValue,
) (func(), error) {
	logger = logger.With(slog.String("service", "api"))
	logger.Info("Starting")

	echoServer := setAPIEcho(logger, cfg)

	handlerOpts := []api.Option{
		api.WithLogger(logger),
		api.WithHealthCheck("store", raffleStore),
	}
	if tracingAttributes != nil {
		handlerOpts = append(handlerOpts, api.WithTracer(tracingAttributes...))
	}

	handler, err := api.NewHandler(engine, handlerOpts...)
	if err != nil {
		return nil, err
	}
	handler.Register(echoServer)

	go func() {
		logger.Info("Starting API server", slog.String("address", cfg.API.Address))
		err := echoServer.Start(cfg.API.Address)
		if err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				logger.Info("API http server closed")
				return
			}

			logger.Error("Failed to start API server", slog.String("err", err.Error()))
			return
		}
	}()

	stopFn := func() {
		logger.Info("Shutting down api")
		disposeAPI(logger, echoServer)
		logger.Info("Shutdown complete")
	}

	return stopFn, nil
}

func setAPIEcho(logger *slog.Logger, cfg *config.SettlerConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Recover returns a middleware which recovers from panics anywhere in the chain
	e.Use(echomiddleware.Recover())

	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost},
		AllowHeaders: []string{echo.HeaderContentType, api.ActorHeader},
	}))

	// Add event ID to the request context
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			//nolint:staticcheck // use string key on purpose
			reqCtx := context.WithValue(req.Context(), settlerLogger.EventIDField, uuid.New().String()) //lint:ignore SA1029 use string key on purpose
			c.SetRequest(req.WithContext(reqCtx))

			return next(c)
		}
	})

	if cfg.IsTracingEnabled() {
		e.Use(otelecho.Middleware("settler-api"))
	}

	e.Use(logRequestMiddleware(logger, cfg.API.RequestExtendedLogs))

	if cfg.API.RateLimit > 0 {
		e.Use(echomiddleware.RateLimiter(echomiddleware.NewRateLimiterMemoryStore(rate.Limit(cfg.API.RateLimit))))
	}

	if cfg.Prometheus.IsEnabled() {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem: "api",
			HistogramOptsFunc: func(opts prometheus.HistogramOpts) prometheus.HistogramOpts {
				if opts.Name == "request_duration_seconds" {
					opts.Buckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
				}
				return opts
			},
		}))
	}

	return e
}

func logRequestMiddleware(logger *slog.Logger, extendLog bool) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogError:   true,
		LogLatency: extendLog,
		LogHeaders: extendedHeaders(extendLog),
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ctx := c.Request().Context()

			attrs := []any{
				slog.String("verb", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
			}
			if extendLog {
				attrs = append(attrs, slog.Any("headers", v.Headers), slog.Duration("latency", v.Latency))
			}

			if v.Error == nil {
				logger.InfoContext(ctx, "REQUEST", attrs...)
			} else {
				logger.ErrorContext(ctx, "REQUEST_ERROR", append(attrs, slog.String("err", v.Error.Error()))...)
			}
			return nil
		},
	})
}

func extendedHeaders(extendLog bool) []string {
	if !extendLog {
		return nil
	}
	return []string{api.ActorHeader}
}

func disposeAPI(logger *slog.Logger, echoServer *echo.Echo) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := echoServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to close API echo server", slog.String("err", err.Error()))
	}
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Domenick1991/skybooker/api"
	"github.com/Domenick1991/skybooker/config"
	"github.com/Domenick1991/skybooker/internal/service/booking"
	"github.com/Domenick1991/skybooker/internal/service/flights"
)

const (
	shutdownTimeout = 5 * time.Second
	checkTimeout    = 2 * time.Second
	openAPIPath     = "/docs/openapi.json"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// NewRouter wires middleware, the flight and booking routes, /health and Swagger UI.
func NewRouter(cfg *config.Config, log *zap.Logger, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase, checks map[string]HealthCheck) *gin.Engine {
	router := gin.New()
	router.Use(api.RequestID(), api.RequestLogger(log), api.Recovery(log))

	auth := api.Auth(cfg.Auth.JWTSecret)
	group := router.Group("/api/flights")
	api.NewFlightHandler(flightSvc, auth).Register(group)
	api.NewBookingHandler(bookingSvc, auth).Register(group)

	router.GET("/health", healthHandler(checks))

	if cfg.HTTP.SwaggerFile != "" {
		router.StaticFile(openAPIPath, cfg.HTTP.SwaggerFile)
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(openAPIPath))))
	}
	return router
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "OK", http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
			err := check(ctx)
			cancel()
			if err != nil {
				results[name] = err.Error()
				status, code = "DEGRADED", http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"checks":    results,
		})
	}
}

// Run serves HTTP and the gRPC health service until ctx is cancelled or a server fails.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, handler http.Handler) error {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSeconds) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("gRPC health server listening", zap.String("address", cfg.GRPC.Address))
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers")
		healthSrv.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		grpcSrv.GracefulStop()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	return g.Wait()
}

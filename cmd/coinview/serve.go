package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/util"
	"github.com/bsv-blockchain/coinview/util/health"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const serviceName = "coinview"

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve grpc health and prometheus metrics for the coin store until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "grpc",
				Usage: "grpc health listen address, overrides health_grpcListenAddress",
			},
			&cli.StringFlag{
				Name:  "http",
				Usage: "metrics listen address, overrides metrics_httpListenAddress",
			},
		},
		Action: a.serve,
	}
}

func (a *app) serve(c *cli.Context) error {
	grpcAddress := a.settings.Health.GRPCListenAddress
	if c.IsSet("grpc") {
		grpcAddress = c.String("grpc")
	}

	httpAddress := a.settings.Metrics.HTTPListenAddress
	if c.IsSet("http") {
		httpAddress = c.String("http")
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := a.openStore(c)
	if err != nil {
		return err
	}

	defer closeStore(c, a.logger, store)

	checks := []health.Check{{Name: "UTXOStore", Check: store.Health}}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return util.StartGRPCServer(gCtx, a.logger, serviceName, grpcAddress, func(server *grpc.Server) {
			grpc_health_v1.RegisterHealthServer(server, health.NewServer(a.logger, serviceName, checks...))
		})
	})

	g.Go(func() error {
		return a.serveHTTP(gCtx, httpAddress, checks)
	})

	return g.Wait()
}

// serveHTTP serves /metrics and /health on address until ctx is done.
func (a *app) serveHTTP(ctx context.Context, address string, checks []health.Check) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler(checks))

	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	a.logger.Infof("[%s] HTTP metrics listening on %s", serviceName, address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.NewServiceError("[%s] HTTP server failed", serviceName, err)
	}

	return nil
}

func healthHandler(checks []health.Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, details, err := health.CheckAll(r.Context(), r.URL.Query().Has("liveness"), checks)
		if err != nil {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(details))
	}
}

func (a *app) healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "ask a running serve for its health",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Usage: "grpc address of the running serve, defaults to health_grpcListenAddress",
			},
			&cli.StringFlag{
				Name:  "http",
				Usage: "also probe the /health endpoint of this metrics address, e.g. http://localhost:9091",
			},
		},
		Action: a.health,
	}
}

func (a *app) health(c *cli.Context) error {
	address := c.String("address")
	if address == "" {
		address = a.settings.Health.GRPCListenAddress
	}

	checks := []health.Check{{Name: "gRPC", Check: health.CheckGRPCServer(address, nil)}}

	if httpAddress := c.String("http"); httpAddress != "" {
		checks = append(checks, health.Check{Name: "HTTP", Check: health.CheckHTTPServer(httpAddress, "/health")})
	}

	status, details, err := health.CheckAll(c.Context, false, checks)
	if err != nil {
		return err
	}

	if _, err = c.App.Writer.Write([]byte(details + "\n")); err != nil {
		return err
	}

	if status != http.StatusOK {
		return cli.Exit("", 1)
	}

	return nil
}

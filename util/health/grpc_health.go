package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/util"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const grpcCheckTimeout = 2 * time.Second

// CheckGRPCServer creates a health check that dials a gRPC server and runs healthCheckFunc on the
// connection. A nil healthCheckFunc calls the standard grpc_health_v1 Check.
func CheckGRPCServer(address string, healthCheckFunc func(context.Context, *grpc.ClientConn) error) func(context.Context, bool) (int, string, error) {
	if healthCheckFunc == nil {
		healthCheckFunc = CheckServing
	}

	return func(ctx context.Context, _ bool) (int, string, error) {
		conn, err := util.GetGRPCClient(address)
		if err != nil {
			return http.StatusServiceUnavailable, fmt.Sprintf("gRPC server at %s: failed to create client", address), err
		}

		defer conn.Close()

		ctx, cancel := context.WithTimeout(ctx, grpcCheckTimeout)
		defer cancel()

		if err = healthCheckFunc(ctx, conn); err != nil {
			return http.StatusServiceUnavailable, fmt.Sprintf("gRPC server at %s not serving", address), err
		}

		return http.StatusOK, fmt.Sprintf("gRPC server at %s is listening and accepting requests", address), nil
	}
}

// CheckServing asks the server's grpc_health_v1 service for its overall status.
func CheckServing(ctx context.Context, conn *grpc.ClientConn) error {
	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		return err
	}

	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return errors.NewServiceUnavailableError("server reported %s", resp.GetStatus())
	}

	return nil
}

package health

import (
	"context"
	"net/http"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/ulogger"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Server answers grpc_health_v1 requests from a set of checks. The empty service name, and the name
// the server was created with, report the readiness of all checks. Any other name is NotFound.
type Server struct {
	grpc_health_v1.UnimplementedHealthServer

	logger  ulogger.Logger
	service string
	checks  []Check
}

func NewServer(logger ulogger.Logger, service string, checks ...Check) *Server {
	return &Server{
		logger:  logger,
		service: service,
		checks:  checks,
	}
}

func (s *Server) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if name := req.GetService(); name != "" && name != s.service {
		return nil, errors.WrapGRPC(errors.NewNotFoundError("[Health] unknown service %q", name))
	}

	code, details, _ := CheckAll(ctx, false, s.checks)
	if code != http.StatusOK {
		s.logger.Warnf("[Health] %s not serving: %s", s.service, details)

		return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING}, nil
	}

	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}, nil
}


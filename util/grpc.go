package util

import (
	"context"
	"net"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/ulogger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/reflection"
)

// StartGRPCServer listens on address, lets register add its services and serves until ctx is done.
// A cancelled ctx stops the server gracefully and returns nil.
func StartGRPCServer(ctx context.Context, l ulogger.Logger, serviceName string, address string, register func(server *grpc.Server)) error {
	if address == "" {
		return errors.NewConfigurationError("[%s] no grpc listen address configured", serviceName)
	}

	lis, err := net.Listen("tcp", address)
	if err != nil {
		return errors.NewServiceError("[%s] GRPC server failed to listen on %s", serviceName, address, err)
	}

	return ServeGRPC(ctx, l, serviceName, lis, register)
}

// ServeGRPC is StartGRPCServer on a listener the caller already owns.
func ServeGRPC(ctx context.Context, l ulogger.Logger, serviceName string, lis net.Listener, register func(server *grpc.Server)) error {
	grpcServer := grpc.NewServer()

	// Register reflection service on gRPC server.
	reflection.Register(grpcServer)

	register(grpcServer)

	l.Infof("[%s] GRPC service listening on %s", serviceName, lis.Addr().String())

	go func() {
		<-ctx.Done()
		l.Infof("[%s] GRPC service shutting down", serviceName)
		grpcServer.GracefulStop()
	}()

	if err := grpcServer.Serve(lis); err != nil && ctx.Err() == nil {
		return errors.NewServiceError("[%s] GRPC server failed", serviceName, err)
	}

	return nil
}

// GetGRPCClient opens a plaintext client connection to address. The caller closes it.
func GetGRPCClient(address string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	if address == "" {
		return nil, errors.NewInvalidArgumentError("address is required")
	}

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, errors.NewServiceError("failed to create grpc client for %s", address, err)
	}

	return conn, nil
}

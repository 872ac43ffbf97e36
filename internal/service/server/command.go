package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	api "github.com/oshokin/webkit-proxy/internal/api/grpc/proxy"
	"github.com/oshokin/webkit-proxy/internal/config"
	"github.com/oshokin/webkit-proxy/internal/installer"
	"github.com/oshokin/webkit-proxy/internal/logger"
	pb "github.com/oshokin/webkit-proxy/internal/pb/v1"
	repository "github.com/oshokin/webkit-proxy/internal/repository/state"
	"github.com/oshokin/webkit-proxy/internal/service/common"
	"github.com/oshokin/webkit-proxy/internal/supervisor"
)

// Options controls the webkit-proxy-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile specifies the path to persist the proxy state JSON.
	StateFile string
}

// Run starts the gRPC server and blocks until context is canceled or server stops.
// A proxy still running at shutdown is stopped before Run returns.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "webkit-proxy-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	ctx = configureLogger(ctx, settings)

	stateFile := settings.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	listenAddress := resolveListenAddress(settings.DaemonAddress, opts.ListenAddress)

	locator, err := installer.New(settings)
	if err != nil {
		return fmt.Errorf("initialise installer: %w", err)
	}

	repo := repository.NewFileRepository(stateFile)
	reaper := func(pid int) (bool, error) {
		return supervisor.TerminatePID(pid, installer.BinaryName)
	}

	svc, err := newService(ctx, supervisor.NewFromConfig(locator, settings), repo, reaper)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(ctx)))
	pb.RegisterProxyServiceServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Proxy server listening", "listen_address", listenAddress, "state_file", stateFile)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		svc.shutdown(context.WithoutCancel(ctx))
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// configureLogger applies the configured level and optional file sink.
func configureLogger(ctx context.Context, settings *config.Config) context.Context {
	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	if settings.LogFile == "" {
		return ctx
	}

	logger.SetLogger(logger.NewWithFile(logger.AtomicLevel(), settings.LogFile))

	ctx = logger.ToContext(ctx, logger.Logger().Named("webkit-proxy-server"))
	logger.InfoKV(ctx, "Logging to file", "log_file", settings.LogFile)

	return ctx
}

// loggingInterceptor gives every call a named logger carrying the calling actor.
func loggingInterceptor(base context.Context) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = logger.ToContext(ctx, logger.FromContext(base))
		ctx = logger.WithKV(ctx, "method", info.FullMethod)

		if actor, ok := common.ActorFromContext(ctx); ok {
			ctx = logger.WithKV(ctx, "actor", actor)
		}

		logger.Debug(ctx, "Request received")

		return handler(ctx, req)
	}
}

// resolveListenAddress returns override when set, otherwise the configured address.
func resolveListenAddress(configAddr, override string) string {
	if override != "" {
		return override
	}

	return configAddr
}

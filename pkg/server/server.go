package server

import (
	"context"
	"sync"
	"time"

	corecontrol "github.com/core-tools/hsu-core/pkg/control"
	coredomain "github.com/core-tools/hsu-core/pkg/domain"
	corelogging "github.com/core-tools/hsu-core/pkg/logging"

	"github.com/core-tools/hsu-sys/pkg/control"
	"github.com/core-tools/hsu-sys/pkg/domain"
	"github.com/core-tools/hsu-sys/pkg/errors"
	"github.com/core-tools/hsu-sys/pkg/logging"
)

type Options struct {
	Port                 int
	ForceShutdownTimeout time.Duration
	Handler              domain.HandlerOptions
}

// State represents the lifecycle of the server
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StateStopping   State = "stopping"
	StateStopped    State = "stopped"
)

type Server struct {
	options Options
	server  corecontrol.Server
	handler domain.Contract
	logger  logging.Logger
	state   State
	mutex   sync.Mutex
}

func NewServer(options Options, coreLogger corelogging.Logger, logger logging.Logger) (*Server, error) {
	serverOptions := corecontrol.ServerOptions{
		Port: options.Port,
	}

	server, err := corecontrol.NewServer(serverOptions, coreLogger)
	if err != nil {
		return nil, errors.NewInternalError("failed to create server", err).WithContext("port", options.Port)
	}

	// Core services answer Ping for client readiness checks
	coreHandler := coredomain.NewDefaultHandler(coreLogger)
	corecontrol.RegisterGRPCServerHandler(server.GRPC(), coreHandler, coreLogger)

	handler := domain.NewSysHandler(options.Handler, logger)
	control.RegisterGRPCServerHandler(server.GRPC(), handler, logger)

	return &Server{
		options: options,
		server:  server,
		handler: handler,
		logger:  logger,
		state:   StateNotStarted,
	}, nil
}

// Contract gives in-process access to the same handler the gRPC service uses
func (s *Server) Contract() domain.Contract {
	return s.handler
}

func (s *Server) Start(ctx context.Context) {
	s.logger.Infof("Starting server, port: %d", s.options.Port)

	s.server.Start(ctx)
	s.setState(StateRunning)

	s.logger.Infof("Server started")
}

// Stop shuts the server down and releases its listener. It may be called
// before Start and more than once; only the first call does anything.
func (s *Server) Stop(ctx context.Context) {
	s.mutex.Lock()
	previous := s.state
	if previous == StateStopping || previous == StateStopped {
		s.mutex.Unlock()
		return
	}
	s.state = StateStopping
	s.mutex.Unlock()

	s.logger.Infof("Stopping server...")

	// The bound listener is owned by Serve, so a server that never started
	// is started into an immediate graceful stop to close it.
	if previous == StateNotStarted {
		s.server.Start(context.Background())
	}

	if ctx == nil {
		ctx = context.Background()
	}

	timeout := s.options.ForceShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.server.Shutdown(ctx)
	s.setState(StateStopped)

	s.logger.Infof("Server stopped")
}

func (s *Server) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

func (s *Server) setState(state State) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.logger.Debugf("Server state: %s -> %s", s.state, state)
	s.state = state
}

package ipc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"classtop/internal/commands"
	"classtop/internal/infrastructure/errors"
	"classtop/internal/infrastructure/logging"
)

// DefaultRequestTimeout bounds a single dispatched command
const DefaultRequestTimeout = 10 * time.Second

// Server accepts newline-delimited JSON requests on a unix socket and
// forwards them to a command dispatcher
type Server struct {
	socketPath   string
	listener     net.Listener
	dispatcher   commands.Dispatcher
	logger       logging.Logger
	timeout      time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a server bound to socketPath once started
func NewServer(socketPath string, dispatcher commands.Dispatcher, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Server{
		socketPath: socketPath,
		dispatcher: dispatcher,
		logger:     logger,
		timeout:    DefaultRequestTimeout,
	}
}

// SocketPath returns the path the server listens on
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening; requests run under a context derived from ctx
func (s *Server) Start(ctx context.Context) error {
	// A stale socket from a crashed instance would make Listen fail
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isShuttingDown() {
				return
			}
			s.logger.Warn("IPC accept error", "error", err.Error())
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) isShuttingDown() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

// handleConnection serves one request per connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(s.timeout))
	data, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err.Error())
		return
	}

	var resp *Response
	if req, err := ParseRequest(data); err != nil {
		resp = NewErrorResponse(fmt.Sprintf("Invalid request: %v", err), errors.ErrCodeInvalidArgument.String())
	} else {
		resp = s.handleRequest(req)
	}

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("Failed to marshal IPC response", "error", err.Error())
		return
	}

	conn.SetWriteDeadline(time.Now().Add(s.timeout))
	if _, err := conn.Write(append(respData, '\n')); err != nil {
		s.logger.Warn("Failed to send IPC response", "error", err.Error())
	}
}

func (s *Server) handleRequest(req *Request) *Response {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	s.logger.Debug("IPC request", "command", req.Command)

	data, err := s.dispatcher.Dispatch(ctx, req.Command, req.Payload)
	if err != nil {
		return NewErrorResponse(err.Error(), errors.CodeOf(err).String())
	}

	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error(), errors.ErrCodeInternal.String())
	}
	return resp
}

// Stop closes the listener, waits for in-flight requests and removes the socket
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}

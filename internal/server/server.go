package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

var ErrNotListening = errors.New("server not listening")

type Options struct {
	// RestartDelay is the pause between closing a faulted listener and
	// binding it again.
	RestartDelay    time.Duration
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server supervises one HTTP listener. A fault inside a handler aborts that
// connection and closes the listener at once; the same address is bound
// again after RestartDelay. Connections accepted before the fault keep
// running on the old http.Server until they finish or ShutdownTimeout
// passes. The handler, and whatever state it holds, is reused.
type Server struct {
	addr    string
	handler http.Handler
	logger  *slog.Logger
	opts    Options

	// draining tracks old generations still finishing their connections.
	draining sync.WaitGroup

	mu       sync.Mutex
	bound    net.Addr
	restarts int
}

func New(addr string, logger *slog.Logger, handler http.Handler, opts Options) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		addr:    addr,
		handler: handler,
		logger:  logger,
		opts:    opts,
	}
}

// Run serves until ctx is cancelled or the listener fails for a reason
// other than a handler fault.
func (s *Server) Run(ctx context.Context) error {
	defer s.draining.Wait()

	addr := s.addr
	for {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		// Keep an ephemeral port stable across restarts.
		addr = ln.Addr().String()

		restart, err := s.serve(ctx, ln)
		if !restart {
			return err
		}

		s.mu.Lock()
		s.restarts++
		s.mu.Unlock()
		s.logger.Info("restarting http server", "addr", addr, "delay", s.opts.RestartDelay)

		t := time.NewTimer(s.opts.RestartDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

// serve runs one listener generation. Each generation has its own fault
// channel, so a fault raised by a connection of a draining generation
// never cycles the current listener.
func (s *Server) serve(ctx context.Context, ln net.Listener) (restart bool, err error) {
	faults := make(chan error, 1)
	srv := &http.Server{
		Handler:           s.isolate(s.handler, faults),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.opts.ReadTimeout,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	s.setBound(ln.Addr())
	defer s.setBound(nil)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	select {
	case err := <-done:
		if errors.Is(err, http.ErrServerClosed) {
			return false, nil
		}
		return false, fmt.Errorf("serving on %s: %w", ln.Addr(), err)
	case <-ctx.Done():
		s.logger.Info("shutting down http server", "addr", ln.Addr())
		s.shutdown(srv)
		<-done
		return false, nil
	case err := <-faults:
		s.logger.Error("handler fault, closing listener", "addr", ln.Addr(), "error", err)
		// Closing the listener makes Serve return without touching the
		// connections it already accepted.
		ln.Close()
		<-done

		s.draining.Add(1)
		go func() {
			defer s.draining.Done()
			s.shutdown(srv)
		}()
		return true, nil
	}
}

// shutdown waits for srv's connections to go idle. Connections still busy
// after ShutdownTimeout are closed.
func (s *Server) shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown incomplete, closing connections", "error", err)
		srv.Close()
	}
}

// isolate turns a panicking handler into a fault: the connection is aborted
// and the fault is sent to the generation that accepted it.
func (s *Server) isolate(next http.Handler, faults chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			s.logger.Error("http handler panic",
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
				"request_id", middleware.GetReqID(r.Context()),
				"stack", string(debug.Stack()),
			)
			select {
			case faults <- err:
			default:
			}
			panic(http.ErrAbortHandler)
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setBound(addr net.Addr) {
	s.mu.Lock()
	s.bound = addr
	s.mu.Unlock()
}

// Addr is the address currently listened on, nil between restarts.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

func (s *Server) Restarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts
}

// Check implements health.Checker.
func (s *Server) Check(_ context.Context) error {
	if s.Addr() == nil {
		return ErrNotListening
	}
	return nil
}

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

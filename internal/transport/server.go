// Package transport runs the hand-rolled HTTP/1.1-shaped TCP server: accept
// loop, worker pool, and per-connection request/response framing. It knows
// nothing about order books — it hands parsed requests to a handler.Handler
// and writes back whatever Response comes out.
package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"vantage/internal/handler"
	"vantage/internal/wire"
	"vantage/internal/workerpool"
)

const (
	defaultWorkers    = 16
	defaultConnKeepal = 30 * time.Second
)

var errImproperConversion = errors.New("improper task conversion")

// Server accepts TCP connections, parses one HTTP-shaped request per
// connection, and writes back a response before closing it; there are no
// long-lived client sessions.
type Server struct {
	address string
	port    int
	pool    *workerpool.Pool
	h       *handler.Handler
	cancel  context.CancelFunc
}

// New builds a server listening on address:port, serving requests via h.
func New(address string, port int, h *handler.Handler) *Server {
	return &Server{
		address: address,
		port:    port,
		pool:    workerpool.New(defaultWorkers),
		h:       h,
	}
}

// Shutdown cancels the server's run context, tearing down the accept loop
// and all workers.
func (s *Server) Shutdown() {
	log.Info().Msg("transport server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Run listens and serves until ctx is cancelled. It blocks until the
// listener and all workers have torn down.
func (s *Server) Run(ctx context.Context) error {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		return fmt.Errorf("unable to start listener: %w", err)
	}
	defer listener.Close()

	t.Go(func() error {
		s.pool.Run(t, s.handleConnection)
		return nil
	})

	log.Info().Str("address", listener.Addr().String()).Msg("transport server listening")

	t.Go(func() error {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return nil
				default:
					log.Error().Err(err).Msg("error accepting connection")
					continue
				}
			}
			s.pool.AddTask(conn)
		}
	})

	<-t.Dying()
	listener.Close()
	return t.Wait()
}

// handleConnection reads exactly one request off conn, serves it, writes
// the response, and closes the connection. Any error returned here is
// fatal to the owning worker goroutine, so connection-level failures are
// logged and swallowed instead of propagated.
func (s *Server) handleConnection(t *tomb.Tomb, task workerpool.Task) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return errImproperConversion
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(defaultConnKeepal)); err != nil {
		log.Error().Err(err).Msg("failed setting connection deadline")
		return nil
	}

	req, err := wire.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		log.Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("malformed request")
		wire.WriteResponse(conn, 400, []byte(`{"error":"Bad Request"}`))
		return nil
	}

	resp := s.h.Serve(req)
	if err := wire.WriteResponse(conn, resp.Status, resp.Body); err != nil {
		log.Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("failed writing response")
	}
	return nil
}

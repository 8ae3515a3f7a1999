// Package gateway serves the binary store protocol over TCP and routes each
// opcoded frame to the catalog, ledger, or purchase processor.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/avdeyev/storeserv/internal/catalog"
	"github.com/avdeyev/storeserv/internal/services/purchase"
)

// Cataloger supplies the catalog snapshot sent to clients.
type Cataloger interface {
	Snapshot() *catalog.Catalog
}

// Pointskeeper answers balance queries.
type Pointskeeper interface {
	Load(ctx context.Context, accountID uint32, force bool) (int64, error)
}

// Purchaser processes purchase requests.
type Purchaser interface {
	Submit(ctx context.Context, accountID, tabIndex, itemIndex uint32) (purchase.Receipt, error)
}

// Authenticator validates the account id a connection announces.
type Authenticator interface {
	Exists(ctx context.Context, accountID uint32) error
}

// Server accepts client connections and runs one session loop per
// connection. Frames from one connection are handled strictly in order, one
// at a time; connections interleave freely against each other. Per-account
// debit safety under that interleaving is the ledger's job, not ours.
type Server struct {
	catalog   Cataloger
	ledger    Pointskeeper
	purchases Purchaser
	accounts  Authenticator

	mu     sync.Mutex
	lis    net.Listener
	conns  map[net.Conn]struct{}
	closed bool

	wg sync.WaitGroup
}

func NewServer(cat Cataloger, led Pointskeeper, svc Purchaser, auth Authenticator) *Server {
	return &Server{
		catalog:   cat,
		ledger:    led,
		purchases: svc,
		accounts:  auth,
		conns:     make(map[net.Conn]struct{}),
	}
}

// Serve accepts connections on lis until Shutdown closes it.
func (s *Server) Serve(lis net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()

		return net.ErrClosed
	}

	s.lis = lis
	s.mu.Unlock()

	for {
		conn, err := lis.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				// Shutdown path.
				return nil
			}

			return err
		}

		if !s.track(conn) {
			_ = conn.Close()

			return nil
		}

		s.wg.Add(1)

		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)

			s.handleConn(conn)
		}()
	}
}

// Shutdown stops accepting, closes all live connections, and waits for
// session loops to exit or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true

	if s.lis != nil {
		_ = s.lis.Close()
	}

	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	s.conns[conn] = struct{}{}

	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conns, conn)
}

func logAddr(conn net.Conn) slog.Attr {
	return slog.String("remote", conn.RemoteAddr().String())
}

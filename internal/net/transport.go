// Package net carries suggestion requests between the drawing app and a
// suggestion host over websockets, and finds hosts with mDNS.
package net

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"SketchBoard/internal/logging"
	"SketchBoard/internal/suggest"
)

// Path is the HTTP path of the suggestion websocket endpoint.
const Path = "/suggest"

var (
	// ErrNotFound is returned when discovery finds no host.
	ErrNotFound = fmt.Errorf("%w: no host answered on %s", suggest.ErrNoCollaborator, ServiceType)
	// ErrRemote wraps an error reported by the host.
	ErrRemote = errors.New("suggestion host error")
	// ErrMismatchedID is returned when a response does not answer the request.
	ErrMismatchedID = errors.New("response id does not match request")
)

// Request is the message sent to a host.
type Request struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Response is the host's answer to a Request.
type Response struct {
	ID          string               `json:"id"`
	Suggestions []suggest.Suggestion `json:"suggestions,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// Server answers suggestion requests with a Collaborator. A connection may
// carry any number of requests; each is answered in order.
type Server struct {
	collab   suggest.Collaborator
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewServer returns a Server answering with c.
func NewServer(c suggest.Collaborator, logger *slog.Logger) *Server {
	return &Server{
		collab: c,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logging.OrNop(logger).With("component", "HOST"),
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the HTTP handler serving Path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(Path, s)
	return mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	s.add(conn)
	defer s.remove(conn)

	addr := conn.RemoteAddr().String()
	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("client disconnected", "remote", addr, "err", err)
			}
			return
		}
		s.logger.Info("received request", "remote", addr, "id", req.ID, "description", req.Description)

		resp := Response{ID: req.ID}
		list, err := s.collab.Suggest(r.Context(), req.Description)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Suggestions = list
		}
		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Warn("write failed", "remote", addr, "err", err)
			return
		}
	}
}

func (s *Server) add(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) remove(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
	conn.Close()
}

// closeAll drops every open connection.
func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.closeAll()
	}()

	s.logger.Info("suggestion host listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Client is a suggest.Collaborator that asks a remote host. With an empty
// address the host is found by mDNS on first use and remembered.
type Client struct {
	addr            string
	discover        bool
	discoverTimeout time.Duration
	dialer          *websocket.Dialer
	logger          *slog.Logger

	mu       sync.Mutex
	resolved string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDiscovery enables or disables mDNS lookup for an empty address.
func WithDiscovery(on bool, timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.discover = on
		c.discoverTimeout = timeout
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient returns a client for the host at addr ("host:port" or a ws://
// URL).
func NewClient(addr string, opts ...ClientOption) *Client {
	c := &Client{
		addr:     addr,
		discover: true,
		dialer:   &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger).With("component", "SUGGEST")
	return c
}

// Suggest sends description to the host and waits for its answer or for
// ctx to end.
func (c *Client) Suggest(ctx context.Context, description string) ([]suggest.Suggestion, error) {
	addr, err := c.host(ctx)
	if err != nil {
		return nil, err
	}

	conn, _, err := c.dialer.DialContext(ctx, wsURL(addr), nil)
	if err != nil {
		c.forget(addr)
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.SetReadDeadline(deadline)
	}
	// Unblock the read if ctx is cancelled without a deadline.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	req := Request{ID: uuid.NewString(), Description: description}
	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("send request: %w", ctxErr(ctx, err))
	}
	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		return nil, fmt.Errorf("read response: %w", ctxErr(ctx, err))
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	if resp.ID != req.ID {
		return nil, ErrMismatchedID
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrRemote, resp.Error)
	}
	return resp.Suggestions, nil
}

func (c *Client) host(ctx context.Context) (string, error) {
	if c.addr != "" {
		return c.addr, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolved != "" {
		return c.resolved, nil
	}
	if !c.discover {
		return "", suggest.ErrNoCollaborator
	}
	addr, err := Discover(ctx, c.discoverTimeout)
	if err != nil {
		return "", err
	}
	c.logger.Info("discovered suggestion host", "addr", addr)
	c.resolved = addr
	return addr, nil
}

// forget drops a discovered address that stopped answering.
func (c *Client) forget(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolved == addr {
		c.resolved = ""
	}
}

func wsURL(addr string) string {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return addr
	}
	return "ws://" + addr + Path
}

// ctxErr prefers the context's error over the I/O error it caused.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

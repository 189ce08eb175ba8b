// Package websocket pushes re-rendered admin views to WebSocket clients
// whenever the underlying collections change.
package websocket

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSConn is the subset of *websocket.Conn the feed uses.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Renderer produces the current state of a view.
type Renderer func(ctx context.Context) (interface{}, error)

// Message is the envelope written to clients.
type Message struct {
	Type  string      `json:"type"`
	View  string      `json:"view"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Message types.
const (
	MessageSnapshot = "snapshot"
	MessageError    = "error"
)

// Server tracks open feeds so they can be closed on shutdown.
type Server struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu     sync.Mutex
	feeds  map[*Feed]struct{}
	closed bool
}

// NewServer creates a Server. allowedOrigins may contain "*".
func NewServer(allowedOrigins []string, logger *zap.Logger) *Server {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
		logger: logger,
		feeds:  make(map[*Feed]struct{}),
	}
}

// Upgrade switches the request to a WebSocket connection.
func (s *Server) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return s.upgrader.Upgrade(w, r, nil)
}

// Serve runs a feed on conn until the client disconnects, ctx is done or
// the server shuts down. sub is released before Serve returns.
func (s *Server) Serve(ctx context.Context, conn WSConn, view string, sub *notify.Subscription, render Renderer) {
	ctx, cancel := context.WithCancel(ctx)
	f := &Feed{
		conn:   conn,
		view:   view,
		sub:    sub,
		render: render,
		cancel: cancel,
		logger: s.logger.With(zap.String("view", view), zap.Stringer("remote", conn.RemoteAddr())),
	}
	if !s.register(f) {
		cancel()
		sub.Close()
		_ = conn.Close()
		return
	}
	defer s.unregister(f)
	f.run(ctx)
}

// Shutdown closes every open feed.
func (s *Server) Shutdown() {
	s.mu.Lock()
	s.closed = true
	feeds := make([]*Feed, 0, len(s.feeds))
	for f := range s.feeds {
		feeds = append(feeds, f)
	}
	s.mu.Unlock()

	for _, f := range feeds {
		f.cancel()
	}
}

// Len reports the number of open feeds.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feeds)
}

func (s *Server) register(f *Feed) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.feeds[f] = struct{}{}
	return true
}

func (s *Server) unregister(f *Feed) {
	s.mu.Lock()
	delete(s.feeds, f)
	s.mu.Unlock()
}

// Feed is a single client connection bound to one view.
type Feed struct {
	conn   WSConn
	view   string
	sub    *notify.Subscription
	render Renderer
	cancel context.CancelFunc
	logger *zap.Logger
}

func (f *Feed) run(ctx context.Context) {
	defer func() {
		f.cancel()
		f.sub.Close()
		_ = f.conn.Close()
		f.logger.Debug("live feed closed")
	}()
	f.logger.Debug("live feed opened")

	go f.readPump()
	f.writePump(ctx)
}

// readPump discards client messages and keeps the read deadline fresh.
// Any read error ends the feed.
func (f *Feed) readPump() {
	defer f.cancel()
	f.conn.SetReadLimit(maxMessageSize)
	_ = f.conn.SetReadDeadline(time.Now().Add(pongWait))
	f.conn.SetPongHandler(func(string) error {
		return f.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := f.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.logger.Warn("live feed read error", zap.Error(err))
			}
			return
		}
	}
}

func (f *Feed) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if err := f.push(ctx); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			_ = f.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = f.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case _, ok := <-f.sub.C:
			if !ok {
				return
			}
			f.drain()
			if err := f.push(ctx); err != nil {
				return
			}
		case <-ticker.C:
			_ = f.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := f.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drain collapses a burst of change events into one re-render.
func (f *Feed) drain() {
	for {
		select {
		case _, ok := <-f.sub.C:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (f *Feed) push(ctx context.Context) error {
	msg := Message{Type: MessageSnapshot, View: f.view}
	data, err := f.render(ctx)
	if err != nil {
		f.logger.Error("failed to render live view", zap.Error(err))
		msg = Message{Type: MessageError, View: f.view, Error: err.Error()}
	} else {
		msg.Data = data
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_ = f.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := f.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		f.logger.Debug("live feed write failed", zap.Error(err))
		return err
	}
	return nil
}

// Package server exposes one shared session over HTTP. Clients read
// snapshots, issue playback commands, and subscribe to a websocket stream
// that carries one snapshot per tick.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/engine"
	"github.com/san-kum/orrery/internal/metrics"
	"github.com/san-kum/orrery/internal/playback"
	"github.com/san-kum/orrery/internal/scene"
)

const shutdownTimeout = 5 * time.Second

var errRateLimited = errors.New("rate limit exceeded")

type Server struct {
	session  *engine.Session
	metrics  *metrics.Collector
	cfg      config.ServerConfig
	limiter  *IPRateLimiter
	hub      *hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// New wires a server around s. A nil collector gets a private registry.
// The collector is registered as a session observer.
func New(s *engine.Session, m *metrics.Collector, cfg config.ServerConfig) *Server {
	if m == nil {
		m = metrics.NewCollector(nil)
	}
	srv := &Server{
		session: s,
		metrics: m,
		cfg:     cfg,
		limiter: NewIPRateLimiter(rate.Limit(cfg.CommandRate), cfg.CommandBurst),
		hub:     newHub(),
		logger:  slog.With("component", "server"),
	}
	srv.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     srv.checkOrigin,
	}
	s.AddObserver(m)
	m.SetClock(s.Controller().Clock())
	return srv
}

func (s *Server) Clients() int { return s.hub.len() }

// Handler returns the routed mux wrapped in CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/clock", s.handleClock)
	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.Handle("POST /api/playback/{command}", s.rateLimited(http.HandlerFunc(s.handleCommand)))
	mux.Handle("POST /api/speed", s.rateLimited(http.HandlerFunc(s.handleSpeed)))
	mux.HandleFunc("GET /ws", s.handleStream)
	mux.Handle("GET /metrics", s.metrics.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.logger.Debug("routes configured", "allowed_origins", s.cfg.AllowedOrigins)
	return c.Handler(mux)
}

// Render broadcasts one frame to every stream client. It never fails, so a
// bad client cannot stop the session.
func (s *Server) Render(snap scene.Snapshot) error {
	if s.hub.len() == 0 {
		return nil
	}
	b, err := encodeSnapshot(snap, s.session.Speed())
	if err != nil {
		s.logger.Error("encode snapshot", "error", err)
		return nil
	}
	if dropped := s.hub.broadcast(b); dropped > 0 {
		s.logger.Debug("slow clients skipped frame", "dropped", dropped, "elapsed", snap.Elapsed)
	}
	return nil
}

// ListenAndServe serves on cfg.Listen and ticks the session every interval
// until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, interval time.Duration) error {
	httpSrv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 2)
	go func() {
		if err := s.session.Run(ctx, interval, s); err != nil && ctx.Err() == nil {
			errc <- fmt.Errorf("server: session: %w", err)
		}
	}()
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Listen, "interval", interval)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errc:
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	s.closeStreams()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	s.logger.Info("server stopped")
	return runErr
}

// closeStreams drops every stream client and settles the client gauge for
// them, since their handlers will find them already removed.
func (s *Server) closeStreams() {
	for range s.hub.closeAll() {
		s.metrics.ClientDisconnected()
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.cfg.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, s.cfg.TrustProxy)
		if !s.limiter.Allow(ip) {
			s.metrics.Rejected("rate_limit")
			w.Header().Set("Retry-After", "1")
			writeError(w, r, s.logger, errRateLimit, http.StatusTooManyRequests, errRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Clients   int    `json:"clients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Clients:   s.hub.len(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Frame())
}

// ClockResponse reports the clock and pace.
type ClockResponse struct {
	Clock playback.Clock `json:"clock"`
	Speed float64        `json:"speed"`
}

func (s *Server) clockResponse() ClockResponse {
	return ClockResponse{Clock: s.session.Controller().Clock(), Speed: s.session.Speed()}
}

func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.clockResponse())
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.session.Catalog()
	writeJSON(w, http.StatusOK, map[string]any{
		"sun":    cat.Sun(),
		"bodies": cat.Bodies(),
	})
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := playback.ParseCommand(r.PathValue("command"))
	if err != nil {
		s.metrics.Rejected("bad_command")
		writeError(w, r, s.logger, errNotFound, http.StatusNotFound, err)
		return
	}
	if err := s.session.Apply(cmd); err != nil {
		writeError(w, r, s.logger, errInternal, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.clockResponse())
}

type speedRequest struct {
	Factor float64 `json:"factor"`
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req speedRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, readLimit)).Decode(&req); err != nil {
		s.metrics.Rejected("bad_request")
		writeError(w, r, s.logger, errValidation, http.StatusBadRequest, fmt.Errorf("decode speed: %w", err))
		return
	}
	s.session.SetSpeed(req.Factor)
	s.logger.Info("speed changed", "requested", req.Factor, "speed", s.session.Speed())
	writeJSON(w, http.StatusOK, s.clockResponse())
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.metrics.Rejected("upgrade")
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, ip: clientIP(r, s.cfg.TrustProxy), send: make(chan []byte, sendBuffer)}
	s.hub.add(c)
	s.metrics.ClientConnected()
	logger := s.logger.With("client_ip", c.ip)
	logger.Info("stream client connected", "clients", s.hub.len())

	// first frame right away, before the next tick
	if b, err := encodeSnapshot(s.session.Frame(), s.session.Speed()); err == nil {
		s.hub.sendTo(c, b)
	}

	go c.writePump()
	c.readPump(s.handleClientMessage)

	if s.hub.remove(c) {
		s.metrics.ClientDisconnected()
	}
	logger.Info("stream client disconnected", "clients", s.hub.len())
}

func (s *Server) handleClientMessage(c *client, msg ClientMessage) {
	fail := func(err error) {
		if b, mErr := json.Marshal(Message{Type: "error", Error: err.Error()}); mErr == nil {
			s.hub.sendTo(c, b)
		}
	}

	if !s.limiter.Allow(c.ip) {
		s.metrics.Rejected("rate_limit")
		fail(errRateLimited)
		return
	}
	if msg.Command != "" {
		cmd, err := playback.ParseCommand(msg.Command)
		if err != nil {
			s.metrics.Rejected("bad_command")
			fail(err)
			return
		}
		if err := s.session.Apply(cmd); err != nil {
			fail(err)
			return
		}
	}
	if msg.Speed != nil {
		s.session.SetSpeed(*msg.Speed)
	}
	if b, err := json.Marshal(Message{Type: "ack", Speed: s.session.Speed()}); err == nil {
		s.hub.sendTo(c, b)
	}
}

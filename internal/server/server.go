// Package server serves interactive viewer sessions over HTTP.
//
// A session owns one [view.Viewer]. Its goroutine serialises the commands
// posted by HTTP handlers with the frame ticks of a time.Ticker, so a force
// pass always completes before a frame is published. Frames are pushed to
// the session's SSE subscribers and can be polled as JSON.
//
// # Routes
//
//	GET    /healthz
//	GET    /api/network
//	POST   /api/sessions
//	DELETE /api/sessions/{id}
//	GET    /api/sessions/{id}/frame
//	GET    /api/sessions/{id}/stream
//	POST   /api/sessions/{id}/focus|click|select
//	POST   /api/sessions/{id}/clear|mode|unfreeze|drag|highlight
package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/marchallab/netview/internal/events"
	"github.com/marchallab/netview/pkg/errors"
	"github.com/marchallab/netview/pkg/highlight"
	"github.com/marchallab/netview/pkg/network"
	"github.com/marchallab/netview/pkg/observability"
)

// Defaults for Options.
const (
	DefaultFPS        = 30
	DefaultSessionTTL = 30 * time.Minute
	DefaultSeed       = 42
)

// Options configures a Server.
type Options struct {
	// FPS is the tick and frame rate of every session.
	FPS int

	// SessionTTL closes sessions without requests or stream traffic for
	// longer. ReapInterval is how often sessions are checked; zero uses
	// half the TTL.
	SessionTTL   time.Duration
	ReapInterval time.Duration

	// Seed, Mode, NoLabels and Cooldown are the viewer defaults of new
	// sessions.
	Seed     uint64
	Mode     highlight.Mode
	NoLabels bool
	Cooldown time.Duration

	Logger    *log.Logger
	Publisher events.Publisher
}

func (o *Options) setDefaults() {
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = DefaultSessionTTL
	}
	if o.ReapInterval <= 0 {
		o.ReapInterval = o.SessionTTL / 2
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Mode == "" {
		o.Mode = highlight.DefaultMode
	}
	if o.Cooldown <= 0 {
		o.Cooldown = highlight.DefaultCooldown
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Publisher == nil {
		o.Publisher = events.NoopPublisher{}
	}
}

// Server hosts viewer sessions over one network.
type Server struct {
	model   *network.Model
	docHash string
	summary networkResponse
	opts    Options
	logger  *log.Logger
	hub     *sseHub

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

// New returns a server for m. docHash identifies the source document in
// events. The session reaper starts immediately; call Close to stop it.
func New(m *network.Model, docHash string, opts Options) *Server {
	opts.setDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		model:    m,
		docHash:  docHash,
		summary:  summarize(m, docHash),
		opts:     opts,
		logger:   opts.Logger,
		hub:      newSSEHub(),
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*session),
	}
	s.wg.Add(1)
	go s.reap()
	return s
}

// ListenAndServe serves on addr until ctx is done, then closes every session
// and shuts the listener down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("Serving viewer", "addr", addr, "nodes", len(s.model.Nodes), "links", len(s.model.Links))

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close ends every session and stops the reaper. It is idempotent.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	open := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		open = append(open, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range open {
		s.stop(sess, "shutdown")
	}
	s.cancel()
	s.wg.Wait()
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// =============================================================================
// Session Registry
// =============================================================================

func (s *Server) session(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	return sess, nil
}

func (s *Server) add(sess *session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New(errors.ErrCodeUnavailable, "server is shutting down")
	}
	s.sessions[sess.id] = sess
	return nil
}

func (s *Server) remove(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	return sess, ok
}

// stop ends a session that has already been removed from the registry.
func (s *Server) stop(sess *session, reason string) {
	sess.cancel()
	<-sess.done

	lifetime := time.Since(sess.opened)
	observability.Session().OnSessionClose(s.ctx, sess.id, lifetime)
	s.publish(s.ctx, events.TopicSessionClosed, events.SessionClosed{
		SessionID: sess.id,
		Reason:    reason,
		At:        time.Now(),
	})
	s.logger.Info("Session closed", "id", sess.id, "reason", reason, "lifetime", lifetime.Round(time.Millisecond))
}

func (s *Server) reap() {
	defer s.wg.Done()
	t := time.NewTicker(s.opts.ReapInterval)
	defer t.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-t.C:
			s.expire(now)
		}
	}
}

// expire closes sessions idle at now for longer than the TTL and returns
// how many it closed.
func (s *Server) expire(now time.Time) int {
	s.mu.Lock()
	var stale []*session
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen()) > s.opts.SessionTTL {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		s.stop(sess, "expired")
	}
	return len(stale)
}

func (s *Server) publish(ctx context.Context, topic string, event any) {
	if err := s.opts.Publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("Event not published", "topic", topic, "err", err)
	}
}

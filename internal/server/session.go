package server

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/marchallab/netview/internal/events"
	"github.com/marchallab/netview/pkg/errors"
	"github.com/marchallab/netview/pkg/highlight"
	"github.com/marchallab/netview/pkg/observability"
	"github.com/marchallab/netview/pkg/view"
)

// session is one viewer driven by its own goroutine.
type session struct {
	id     string
	opened time.Time
	viewer *view.Viewer

	cmds   chan command
	done   chan struct{}
	cancel context.CancelFunc

	seen  atomic.Int64
	frame atomic.Pointer[view.Frame]
}

// command runs fn on the session goroutine and reports its error on reply.
type command struct {
	fn    func(v *view.Viewer) error
	reply chan error
}

type sessionParams struct {
	Seed     uint64
	Mode     highlight.Mode
	Width    float64
	Height   float64
	NoLabels bool
}

// open starts a new session.
func (s *Server) open(p sessionParams) (*session, error) {
	v := view.New(s.model, view.Options{
		Width:    p.Width,
		Height:   p.Height,
		Seed:     p.Seed,
		NoLabels: p.NoLabels,
		Mode:     p.Mode,
		Cooldown: s.opts.Cooldown,
	})

	ctx, cancel := context.WithCancel(s.ctx)
	sess := &session{
		id:     uuid.NewString(),
		opened: time.Now(),
		viewer: v,
		cmds:   make(chan command),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	sess.touch()
	f := v.Frame()
	sess.frame.Store(&f)

	if err := s.add(sess); err != nil {
		cancel()
		v.Close()
		return nil, err
	}

	s.wg.Add(1)
	go s.run(ctx, sess)

	observability.Session().OnSessionOpen(ctx, sess.id, len(s.model.Nodes))
	s.publish(ctx, events.TopicSessionOpened, events.SessionOpened{
		SessionID:    sess.id,
		DocumentHash: s.docHash,
		Nodes:        len(s.model.Nodes),
		Links:        len(s.model.Links),
		At:           sess.opened,
	})
	s.logger.Info("Session opened", "id", sess.id, "seed", p.Seed, "mode", p.Mode)
	return sess, nil
}

// run is the session loop. It owns the viewer.
func (s *Server) run(ctx context.Context, sess *session) {
	defer s.wg.Done()
	defer close(sess.done)
	defer sess.viewer.Close()

	ticker := time.NewTicker(time.Second / time.Duration(s.opts.FPS))
	defer ticker.Stop()

	settled := sess.viewer.Settled()
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-sess.cmds:
			err := cmd.fn(sess.viewer)
			s.emit(sess)
			cmd.reply <- err
		case <-ticker.C:
			if sess.viewer.Tick() {
				s.emit(sess)
			}
			now := sess.viewer.Settled()
			if now && !settled {
				f := sess.current()
				s.publish(ctx, events.TopicLayoutSettled, events.LayoutSettled{
					SessionID: sess.id,
					Ticks:     f.Ticks,
					Alpha:     f.Alpha,
				})
				s.logger.Debug("Layout settled", "id", sess.id, "ticks", f.Ticks)
			}
			settled = now
		}
	}
}

// emit stores the current frame and pushes it to stream subscribers.
func (s *Server) emit(sess *session) {
	f := sess.viewer.Frame()
	sess.frame.Store(&f)

	topic := sessionTopic(sess.id)
	if s.hub.subscribers(topic) == 0 {
		return
	}
	data, err := json.Marshal(f)
	if err != nil {
		s.logger.Warn("Frame not encoded", "id", sess.id, "err", err)
		return
	}
	s.hub.broadcast(topic, eventFrame, data)
}

// do runs fn on the session goroutine and waits for it.
func (sess *session) do(ctx context.Context, fn func(v *view.Viewer) error) error {
	sess.touch()
	cmd := command{fn: fn, reply: make(chan error, 1)}
	select {
	case sess.cmds <- cmd:
	case <-sess.done:
		return sess.closedErr()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-sess.done:
		select {
		case err := <-cmd.reply:
			return err
		default:
			return sess.closedErr()
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (sess *session) closedErr() error {
	return errors.New(errors.ErrCodeSessionNotFound, "session %q is closed", sess.id)
}

func (sess *session) touch() { sess.seen.Store(time.Now().UnixNano()) }

func (sess *session) lastSeen() time.Time { return time.Unix(0, sess.seen.Load()) }

// current returns the latest frame.
func (sess *session) current() view.Frame { return *sess.frame.Load() }

func sessionTopic(id string) string { return "session." + id }

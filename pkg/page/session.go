package page

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/recipebox/internal/errors"
	"github.com/vango-dev/recipebox/pkg/favsync"
	"github.com/vango-dev/recipebox/pkg/loop"
	"github.com/vango-dev/recipebox/pkg/metrics"
	"github.com/vango-dev/recipebox/pkg/render"
	"github.com/vango-dev/recipebox/pkg/toast"
	"github.com/vango-dev/recipebox/pkg/vdom"
)

// Conn is the WebSocket connection of a session. *websocket.Conn
// implements it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadLimit(limit int64)
	SetWriteDeadline(t time.Time) error
	Close() error
}

// SessionConfig holds the timing of a session.
type SessionConfig struct {
	// WriteTimeout bounds every frame write (default: 10s).
	WriteTimeout time.Duration

	// MaxMessageSize bounds client frames (default: 4KB).
	MaxMessageSize int64

	// NotificationDisplay and NotificationFade time notifications.
	NotificationDisplay time.Duration
	NotificationFade    time.Duration

	// FlashDelay is how long server flashes stay before being dismissed.
	FlashDelay time.Duration
}

// DefaultSessionConfig returns the default session configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		WriteTimeout:        10 * time.Second,
		MaxMessageSize:      4 << 10,
		NotificationDisplay: toast.DefaultDisplay,
		NotificationFade:    toast.DefaultFade,
		FlashDelay:          toast.DefaultFlashDelay,
	}
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

// Session is one live listing page: its document, its loop, and the
// synchronizer bound to the document.
type Session struct {
	id      string
	conn    Conn
	config  SessionConfig
	doc     *vdom.Document
	loop    *loop.Loop
	sync    *favsync.Synchronizer
	toasts  *toast.Notifier
	metrics *metrics.Metrics
	logger  *slog.Logger

	// outbox holds toast frames emitted during the current task.
	// Loop only.
	outbox []ToastFrame

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// NewSession creates a session for doc over conn. Backend calls go to
// backend.
func NewSession(conn Conn, doc *vdom.Document, backend favsync.Backend, config SessionConfig, opts ...SessionOption) *Session {
	defaults := DefaultSessionConfig()
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = defaults.MaxMessageSize
	}

	s := &Session{
		id:     uuid.NewString(),
		conn:   conn,
		config: config,
		doc:    doc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session_id", s.id)

	s.loop = loop.New(loop.WithLogger(s.logger), loop.WithAfterTask(s.flush))
	s.toasts = toast.NewNotifier(doc, s.loop,
		toast.WithEmitter(s),
		toast.WithTiming(config.NotificationDisplay, config.NotificationFade),
		toast.WithObserver(func(l toast.Level) { s.metrics.RecordNotification(string(l)) }),
		toast.WithLogger(s.logger),
	)
	s.sync = favsync.New(doc, s.loop, backend, s.toasts,
		favsync.WithLogger(s.logger),
		favsync.WithObserver(s.observe),
	)
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Synchronizer returns the favorite synchronizer of the session.
func (s *Session) Synchronizer() *favsync.Synchronizer { return s.sync }

// Utilities returns the reusable favorite and notification helpers.
func (s *Session) Utilities() favsync.Utilities { return s.sync }

// Dispatch runs fn on the session loop.
func (s *Session) Dispatch(fn func()) bool { return s.loop.Dispatch(fn) }

// Emit implements toast.Emitter. It runs on the loop; the frame is
// written after the current task together with its patches.
func (s *Session) Emit(name string, data any) {
	if name != toast.EventName {
		return
	}
	m, _ := data.(map[string]any)
	frame := ToastFrame{Type: FrameToast}
	frame.ID, _ = m["id"].(string)
	frame.Level, _ = m["level"].(string)
	frame.Message, _ = m["message"].(string)
	s.outbox = append(s.outbox, frame)
}

// Run mounts the page and serves the connection until the client closes
// it, the connection fails, or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.metrics.SessionStarted()
	defer s.metrics.SessionEnded()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	s.logger.Info("session started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.loop.Run(gctx); err != nil && !stderrors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return s.readLoop(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		s.loop.Close()
		s.closeConn()
		return nil
	})

	s.loop.Dispatch(func() { s.mount(gctx) })

	err := g.Wait()
	s.loop.Wait()
	s.logger.Info("session closed", "degraded", s.sync.Degraded())
	return err
}

// mount binds the controls, reconciles them and schedules flash removal.
func (s *Session) mount(ctx context.Context) {
	bound := s.sync.Setup()
	s.sync.CheckFavorites(ctx)
	flashes := toast.DismissFlashes(s.doc, s.loop, s.config.FlashDelay)
	s.logger.Debug("page mounted", "controls", bound, "flashes", flashes)
}

func (s *Session) readLoop(ctx context.Context) error {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			s.metrics.RecordWSError("read")
			s.logger.Debug("read failed", "error", err)
			return nil
		}

		frame, err := DecodeClientFrame(data)
		if err != nil {
			s.metrics.RecordWSError("frame")
			s.logger.Warn("invalid client frame", "error", err)
			continue
		}

		switch frame.Type {
		case FrameClose:
			return nil
		case FrameClick:
			err := s.loop.TryDispatch(func() { s.handleClick(ctx, frame) })
			switch {
			case stderrors.Is(err, loop.ErrClosed):
				return nil
			case err != nil:
				s.metrics.RecordWSError("backpressure")
				s.logger.Warn("click dropped", "recipe_id", frame.RecipeID, "error", err)
			}
		}
	}
}

// handleClick toggles the clicked control.
func (s *Session) handleClick(ctx context.Context, frame ClientFrame) {
	var err error
	if c := s.sync.ControlByElementID(frame.Control); c != nil {
		err = s.sync.Toggle(ctx, c)
	} else {
		err = s.sync.HandleToggle(ctx, frame.RecipeID)
	}

	switch {
	case err == nil:
	case stderrors.Is(err, favsync.ErrPending):
		s.logger.Debug("toggle ignored while pending", "recipe_id", frame.RecipeID)
	default:
		s.logger.Warn("toggle failed", "recipe_id", frame.RecipeID, "control", frame.Control, "error", err)
	}
}

func (s *Session) observe(ev favsync.Event) {
	switch ev.Op {
	case favsync.OpReconcile:
		s.metrics.RecordReconciliation(ev.Err)
	default:
		s.metrics.RecordToggle(string(ev.Op), ev.Err)
	}
}

// flush runs after every loop task and writes the patches of the
// document changes, then the toast frames of the task.
func (s *Session) flush() {
	patches := s.doc.Flush()
	toasts := s.outbox
	s.outbox = nil

	for _, p := range patches {
		html, err := render.RenderToString(p.Node)
		if err != nil {
			s.logger.Error("render patch", "id", p.ID, "error", err)
			continue
		}
		if err := s.write(PatchFrame{Type: FramePatch, ID: p.ID, HTML: html}); err != nil {
			s.fail(err)
			return
		}
	}
	for _, t := range toasts {
		if err := s.write(t); err != nil {
			s.fail(err)
			return
		}
	}
	if len(patches) > 0 {
		s.logger.Debug("sent patches", "count", len(patches), "toasts", len(toasts))
	}
}

func (s *Session) write(frame any) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return errors.New("E161").WithDetail("encode frame").Wrap(err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.New("E161").Wrap(err)
	}
	return nil
}

// fail ends the session after a write error. Closing the connection makes
// the read loop return.
func (s *Session) fail(err error) {
	s.metrics.RecordWSError("write")
	s.logger.Error("write error", "error", err)
	s.closeConn()
}

func (s *Session) closeConn() {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.writeMu.Unlock()
		s.conn.Close()
	})
}

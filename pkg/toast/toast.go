package toast

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/recipebox/pkg/vdom"
)

// EventName is the event name notifications are emitted under.
const EventName = "recipebox:toast"

// ContainerID is the id of the notification container element.
const ContainerID = "notification-container"

// ContainerStyle positions the container in the top-right corner.
const ContainerStyle = "position: fixed; top: 20px; right: 20px; z-index: 1050; max-width: 300px;"

// Default timings.
const (
	DefaultDisplay    = 3 * time.Second
	DefaultFade       = 150 * time.Millisecond
	DefaultFlashDelay = 5 * time.Second
)

// Level is the notification level. It selects the alert-{level} class.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelDanger  Level = "danger"
)

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case LevelSuccess, LevelInfo, LevelDanger:
		return true
	}
	return false
}

// Scheduler runs fn after d. Callbacks must run where the document may be
// mutated, which for a session is its loop.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// Emitter receives every shown notification.
type Emitter interface {
	Emit(name string, data any)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(name string, data any)

// Emit calls f(name, data).
func (f EmitterFunc) Emit(name string, data any) {
	f(name, data)
}

// Notification is one shown notification.
type Notification struct {
	ID      string
	Level   Level
	Message string
	node    *vdom.VNode
}

// Node returns the alert element of the notification.
func (n Notification) Node() *vdom.VNode {
	return n.node
}

// Notifier shows notifications in a document.
type Notifier struct {
	doc      *vdom.Document
	sched    Scheduler
	emitter  Emitter
	observer func(Level)
	logger   *slog.Logger
	display  time.Duration
	fade     time.Duration
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithEmitter sets the emitter notifications are delivered to.
func WithEmitter(e Emitter) Option {
	return func(n *Notifier) {
		n.emitter = e
	}
}

// WithTiming sets how long a notification stays visible and how long its
// fade-out lasts before it is removed. Non-positive values keep the default.
func WithTiming(display, fade time.Duration) Option {
	return func(n *Notifier) {
		if display > 0 {
			n.display = display
		}
		if fade > 0 {
			n.fade = fade
		}
	}
}

// WithObserver sets a hook called with the level of every notification.
func WithObserver(fn func(Level)) Option {
	return func(n *Notifier) {
		n.observer = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// NewNotifier creates a Notifier for doc whose timers run on sched.
func NewNotifier(doc *vdom.Document, sched Scheduler, opts ...Option) *Notifier {
	n := &Notifier{
		doc:     doc,
		sched:   sched,
		logger:  slog.Default(),
		display: DefaultDisplay,
		fade:    DefaultFade,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Show appends a notification with message at level and schedules its
// removal. An unknown level is shown as info.
func (n *Notifier) Show(message string, level Level) Notification {
	if !level.Valid() {
		n.logger.Warn("unknown notification level", "level", string(level))
		level = LevelInfo
	}

	alert := vdom.Div(
		vdom.Class("alert", "alert-"+string(level), "alert-dismissible", "fade", "show"),
		vdom.Role("alert"),
		vdom.Text(message),
		vdom.Button(
			vdom.Type("button"),
			vdom.Class("btn-close"),
			vdom.Data("bs-dismiss", "alert"),
			vdom.AriaLabel("Close"),
		),
	)
	note := Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		node:    alert,
	}

	n.doc.AppendChild(n.container(), alert)

	n.sched.AfterFunc(n.display, func() {
		n.doc.RemoveClass(alert, "show")
		n.sched.AfterFunc(n.fade, func() {
			n.doc.Remove(alert)
		})
	})

	if n.emitter != nil {
		n.emitter.Emit(EventName, map[string]any{
			"id":      note.ID,
			"level":   string(level),
			"message": message,
		})
	}
	if n.observer != nil {
		n.observer(level)
	}
	return note
}

// container returns the notification container, creating it on first use.
func (n *Notifier) container() *vdom.VNode {
	if c := n.doc.GetElementByID(ContainerID); c != nil {
		return c
	}
	c := vdom.Div(vdom.ID(ContainerID), vdom.StyleAttr(ContainerStyle))
	n.doc.AppendChild(n.doc.Root(), c)
	return c
}

// DismissFlashes schedules removal of the dismissible alerts present in
// doc now. Alerts added later are not affected. It returns the number of
// alerts scheduled.
func DismissFlashes(doc *vdom.Document, sched Scheduler, delay time.Duration) int {
	if delay <= 0 {
		delay = DefaultFlashDelay
	}
	flashes := doc.QueryAllClasses("alert", "alert-dismissible")
	if len(flashes) == 0 {
		return 0
	}
	sched.AfterFunc(delay, func() {
		for _, alert := range flashes {
			doc.Remove(alert)
		}
	})
	return len(flashes)
}

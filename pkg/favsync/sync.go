package favsync

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync/atomic"

	"github.com/vango-dev/recipebox/internal/errors"
	"github.com/vango-dev/recipebox/pkg/api"
	"github.com/vango-dev/recipebox/pkg/loop"
	"github.com/vango-dev/recipebox/pkg/toast"
	"github.com/vango-dev/recipebox/pkg/vdom"
)

// Notification messages.
const (
	MsgAdded        = "Recipe added to favorites!"
	MsgRemoved      = "Recipe removed from favorites"
	MsgAddFailed    = "Error adding to favorites. Please try again."
	MsgRemoveFailed = "Error removing from favorites. Please try again."
)

var (
	// ErrPending is returned when a control already has a mutation in flight.
	ErrPending = stderrors.New("favsync: mutation already in flight")
	// ErrNoControl is returned when no bound control matches.
	ErrNoControl = stderrors.New("favsync: no bound control")
)

// Backend is the part of the REST client the synchronizer needs.
// *api.Client implements it.
type Backend interface {
	AddFavorite(ctx context.Context, recipeID string) error
	RemoveFavorite(ctx context.Context, recipeID string) error
	Favorites(ctx context.Context) ([]api.Recipe, error)
}

// Notifier shows notifications. *toast.Notifier implements it.
type Notifier interface {
	Show(message string, level toast.Level) toast.Notification
}

// Utilities is the surface other page code may call to reuse the
// synchronizer's behavior. *Synchronizer implements it.
type Utilities interface {
	ShowNotification(message string, level toast.Level)
	AddFavorite(ctx context.Context, recipeID string, c *Control) error
	RemoveFavorite(ctx context.Context, recipeID string, c *Control) error
}

// Op names a synchronizer operation in Events.
type Op string

const (
	OpReconcile Op = "reconcile"
	OpAdd       Op = "add"
	OpRemove    Op = "remove"
)

// Event reports a settled operation. For OpReconcile, RecipeID is empty.
type Event struct {
	Op       Op
	RecipeID string
	Err      error
}

// Synchronizer keeps the favorite controls of a document in step with the
// backend. Except for Degraded, its methods must be called on the loop
// that owns the document; continuations of backend calls run there too.
type Synchronizer struct {
	doc      *vdom.Document
	loop     *loop.Loop
	backend  Backend
	notifier Notifier
	logger   *slog.Logger
	observer func(Event)

	controls []*Control
	degraded atomic.Bool
}

var _ Utilities = (*Synchronizer)(nil)

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

// WithObserver sets a hook called on the loop whenever an operation settles.
func WithObserver(fn func(Event)) Option {
	return func(s *Synchronizer) {
		s.observer = fn
	}
}

// New creates a Synchronizer for doc. Backend calls run through l.
func New(doc *vdom.Document, l *loop.Loop, backend Backend, notifier Notifier, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		doc:      doc,
		loop:     l,
		backend:  backend,
		notifier: notifier,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "favsync")
	return s
}

// Setup binds every unbound favorite control in the document and returns
// the number of controls bound by this call. Bound nodes carry
// data-listener="true", so repeated calls never bind a node twice.
func (s *Synchronizer) Setup() int {
	bound := 0
	for _, node := range s.doc.QueryClass(ClassButton, ClassToggle) {
		if node.HasAttr(AttrListener) {
			continue
		}
		c := bindControl(node)
		if c.RecipeID == "" {
			s.logger.Warn("favorite control without recipe id", "variant", c.Variant.String())
			continue
		}
		s.doc.SetAttr(node, AttrListener, "true")
		c.render(s.doc)
		s.controls = append(s.controls, c)
		bound++
	}
	if bound > 0 {
		s.logger.Debug("favorite controls bound", "count", bound, "total", len(s.controls))
	}
	return bound
}

// Controls returns the bound controls in binding order.
func (s *Synchronizer) Controls() []*Control {
	return append([]*Control(nil), s.controls...)
}

// Control returns the first bound control for recipeID, or nil.
func (s *Synchronizer) Control(recipeID string) *Control {
	for _, c := range s.controls {
		if c.RecipeID == recipeID {
			return c
		}
	}
	return nil
}

// ControlByElementID returns the bound control whose node has id, or nil.
func (s *Synchronizer) ControlByElementID(id string) *Control {
	if id == "" {
		return nil
	}
	for _, c := range s.controls {
		if c.node.ID() == id {
			return c
		}
	}
	return nil
}

// Degraded reports whether the last reconciliation failed. It is safe to
// call from any goroutine.
func (s *Synchronizer) Degraded() bool {
	return s.degraded.Load()
}

// CheckFavorites fetches the user's favorite set and marks every bound
// control whose recipe is in it as favorited. Controls outside the set are
// left as they are. It reports whether a request was started; nothing is
// requested when no control is bound. A failed fetch is logged and marks
// the synchronizer degraded without notifying the user.
func (s *Synchronizer) CheckFavorites(ctx context.Context) bool {
	if len(s.controls) == 0 {
		return false
	}

	loop.Go(s.loop, func() ([]api.Recipe, error) {
		return s.backend.Favorites(ctx)
	}, func(favorites []api.Recipe, err error) {
		if err != nil {
			s.degraded.Store(true)
			s.logger.Error("error fetching favorites",
				"code", errors.CodeOf(err),
				"category", string(errors.CategoryOf(err)),
				"error", err,
			)
			s.settle(Event{Op: OpReconcile, Err: err})
			return
		}
		s.degraded.Store(false)

		ids := make(map[string]struct{}, len(favorites))
		for _, id := range api.IDs(favorites) {
			ids[id] = struct{}{}
		}
		marked := 0
		for _, c := range s.controls {
			if _, ok := ids[c.RecipeID]; ok {
				c.state = Favorited
				c.render(s.doc)
				marked++
			}
		}
		s.logger.Debug("favorites reconciled", "favorites", len(ids), "marked", marked)
		s.settle(Event{Op: OpReconcile})
	})
	return true
}

// HandleToggle toggles the first bound control for recipeID: an
// unfavorited control is added, a favorited one removed.
func (s *Synchronizer) HandleToggle(ctx context.Context, recipeID string) error {
	c := s.Control(recipeID)
	if c == nil {
		return ErrNoControl
	}
	return s.Toggle(ctx, c)
}

// Toggle toggles c according to its current state.
func (s *Synchronizer) Toggle(ctx context.Context, c *Control) error {
	if c.state == Favorited {
		return s.RemoveFavorite(ctx, c.RecipeID, c)
	}
	return s.AddFavorite(ctx, c.RecipeID, c)
}

// AddFavorite asks the backend to favorite recipeID. On success c becomes
// favorited and a success notification is shown; on any failure a danger
// notification is shown and c is unchanged. A nil c selects the first
// bound control for recipeID.
func (s *Synchronizer) AddFavorite(ctx context.Context, recipeID string, c *Control) error {
	return s.mutate(ctx, OpAdd, recipeID, c)
}

// RemoveFavorite asks the backend to unfavorite recipeID. On success c
// becomes unfavorited and an info notification is shown; on any failure a
// danger notification is shown and c is unchanged. A nil c selects the
// first bound control for recipeID.
func (s *Synchronizer) RemoveFavorite(ctx context.Context, recipeID string, c *Control) error {
	return s.mutate(ctx, OpRemove, recipeID, c)
}

// ShowNotification shows message at level.
func (s *Synchronizer) ShowNotification(message string, level toast.Level) {
	s.notifier.Show(message, level)
}

func (s *Synchronizer) mutate(ctx context.Context, op Op, recipeID string, c *Control) error {
	if c == nil {
		if c = s.Control(recipeID); c == nil {
			return ErrNoControl
		}
	}
	if c.pending {
		s.logger.Debug("toggle rejected while pending", "recipe_id", recipeID, "op", string(op))
		return ErrPending
	}

	call, target := s.backend.AddFavorite, Favorited
	okMsg, okLevel, failMsg := MsgAdded, toast.LevelSuccess, MsgAddFailed
	if op == OpRemove {
		call, target = s.backend.RemoveFavorite, Unfavorited
		okMsg, okLevel, failMsg = MsgRemoved, toast.LevelInfo, MsgRemoveFailed
	}

	c.pending = true
	c.render(s.doc)

	loop.Go(s.loop, func() (struct{}, error) {
		return struct{}{}, call(ctx, recipeID)
	}, func(_ struct{}, err error) {
		c.pending = false
		if err != nil {
			c.render(s.doc)
			s.logger.Error("favorite mutation failed",
				"op", string(op),
				"recipe_id", recipeID,
				"code", errors.CodeOf(err),
				"category", string(errors.CategoryOf(err)),
				"error", err,
			)
			s.notifier.Show(failMsg, toast.LevelDanger)
			s.settle(Event{Op: op, RecipeID: recipeID, Err: err})
			return
		}
		c.state = target
		c.render(s.doc)
		s.notifier.Show(okMsg, okLevel)
		s.settle(Event{Op: op, RecipeID: recipeID})
	})
	return nil
}

func (s *Synchronizer) settle(ev Event) {
	if s.observer != nil {
		s.observer(ev)
	}
}

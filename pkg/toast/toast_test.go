package toast_test

import (
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/recipebox/pkg/render"
	"github.com/vango-dev/recipebox/pkg/toast"
	"github.com/vango-dev/recipebox/pkg/vdom"
)

// fakeClock is a manual Scheduler. Advance runs due callbacks in order,
// including callbacks scheduled by other callbacks.
type fakeClock struct {
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) func() bool {
	c.seq++
	t := &fakeTimer{at: c.now + d, seq: c.seq, fn: fn}
	c.timers = append(c.timers, t)
	return func() bool {
		if t.stopped || t.fn == nil {
			return false
		}
		t.stopped = true
		return true
	}
}

func (c *fakeClock) Advance(d time.Duration) {
	end := c.now + d
	for {
		sort.SliceStable(c.timers, func(i, j int) bool {
			if c.timers[i].at != c.timers[j].at {
				return c.timers[i].at < c.timers[j].at
			}
			return c.timers[i].seq < c.timers[j].seq
		})
		if len(c.timers) == 0 || c.timers[0].at > end {
			break
		}
		t := c.timers[0]
		c.timers = c.timers[1:]
		c.now = t.at
		if !t.stopped {
			fn := t.fn
			t.fn = nil
			fn()
		}
	}
	c.now = end
}

type emittedEvent struct {
	name string
	data any
}

type recorder struct {
	events []emittedEvent
}

func (r *recorder) Emit(name string, data any) {
	r.events = append(r.events, emittedEvent{name, data})
}

func newDoc() *vdom.Document {
	return vdom.NewDocument(vdom.Div(vdom.ID("app")))
}

func TestShowCreatesContainerOnce(t *testing.T) {
	doc := newDoc()
	clock := &fakeClock{}
	n := toast.NewNotifier(doc, clock)

	n.Show("first", toast.LevelSuccess)
	n.Show("second", toast.LevelInfo)

	containers := doc.QueryAll(func(v *vdom.VNode) bool { return v.ID() == toast.ContainerID })
	if len(containers) != 1 {
		t.Fatalf("expected 1 container, got %d", len(containers))
	}
	c := containers[0]
	if got := c.GetAttr("style"); got != toast.ContainerStyle {
		t.Errorf("container style = %q", got)
	}
	if len(c.Children) != 2 {
		t.Errorf("expected 2 alerts, got %d", len(c.Children))
	}
}

func TestAlertMarkup(t *testing.T) {
	tests := []struct {
		level toast.Level
		class string
	}{
		{toast.LevelSuccess, "alert-success"},
		{toast.LevelInfo, "alert-info"},
		{toast.LevelDanger, "alert-danger"},
		{toast.Level("warning"), "alert-info"},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			doc := newDoc()
			n := toast.NewNotifier(doc, &fakeClock{})

			note := n.Show("Recipe added to favorites!", tt.level)
			alert := note.Node()
			for _, class := range []string{"alert", tt.class, "alert-dismissible", "fade", "show"} {
				if !alert.HasClass(class) {
					t.Errorf("alert missing class %q: %v", class, alert.Classes())
				}
			}
			if got := alert.GetAttr("role"); got != "alert" {
				t.Errorf("role = %q", got)
			}
			if !strings.Contains(alert.TextContent(), "Recipe added to favorites!") {
				t.Errorf("text = %q", alert.TextContent())
			}

			html := render.MustRenderToString(alert)
			if !strings.Contains(html, `class="btn-close"`) || !strings.Contains(html, `data-bs-dismiss="alert"`) {
				t.Errorf("close button missing: %s", html)
			}
			if note.ID == "" {
				t.Error("notification should have an id")
			}
		})
	}
}

func TestMessageIsEscaped(t *testing.T) {
	doc := newDoc()
	n := toast.NewNotifier(doc, &fakeClock{})

	note := n.Show("<script>alert(1)</script>", toast.LevelDanger)
	html := render.MustRenderToString(note.Node())
	if strings.Contains(html, "<script>") {
		t.Errorf("message not escaped: %s", html)
	}
}

func TestLifecycle(t *testing.T) {
	doc := newDoc()
	clock := &fakeClock{}
	n := toast.NewNotifier(doc, clock)

	note := n.Show("saved", toast.LevelSuccess)
	alert := note.Node()

	clock.Advance(toast.DefaultDisplay - time.Millisecond)
	if !alert.HasClass("show") || !doc.Contains(alert) {
		t.Fatal("alert should still be shown before the display duration")
	}

	clock.Advance(time.Millisecond)
	if alert.HasClass("show") {
		t.Error("show class should be removed after the display duration")
	}
	if !doc.Contains(alert) {
		t.Error("alert should stay in the document while fading")
	}

	clock.Advance(toast.DefaultFade)
	if doc.Contains(alert) {
		t.Error("alert should be removed after the fade")
	}
	if doc.GetElementByID(toast.ContainerID) == nil {
		t.Error("container should persist")
	}
}

func TestCustomTiming(t *testing.T) {
	doc := newDoc()
	clock := &fakeClock{}
	n := toast.NewNotifier(doc, clock, toast.WithTiming(time.Second, 10*time.Millisecond))

	note := n.Show("removed", toast.LevelInfo)
	clock.Advance(time.Second + 10*time.Millisecond)
	if doc.Contains(note.Node()) {
		t.Error("alert should be removed with custom timing")
	}
}

func TestEmitter(t *testing.T) {
	doc := newDoc()
	rec := &recorder{}
	var levels []toast.Level
	n := toast.NewNotifier(doc, &fakeClock{},
		toast.WithEmitter(rec),
		toast.WithObserver(func(l toast.Level) { levels = append(levels, l) }),
	)

	note := n.Show("Error adding to favorites. Please try again.", toast.LevelDanger)

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rec.events))
	}
	ev := rec.events[0]
	if ev.name != toast.EventName {
		t.Errorf("event name = %q", ev.name)
	}
	data := ev.data.(map[string]any)
	if data["level"] != "danger" || data["message"] != "Error adding to favorites. Please try again." {
		t.Errorf("event data = %v", data)
	}
	if data["id"] != note.ID {
		t.Errorf("event id = %v, want %s", data["id"], note.ID)
	}
	if len(levels) != 1 || levels[0] != toast.LevelDanger {
		t.Errorf("observer levels = %v", levels)
	}
}

func TestEmitterFunc(t *testing.T) {
	var got string
	e := toast.EmitterFunc(func(name string, data any) { got = name })
	e.Emit(toast.EventName, nil)
	if got != toast.EventName {
		t.Errorf("got %q", got)
	}
}

func TestDismissFlashes(t *testing.T) {
	flash := vdom.Div(vdom.Class("alert", "alert-warning", "alert-dismissible"), "Please log in")
	static := vdom.Div(vdom.Class("alert", "alert-info"), "Static notice")
	doc := vdom.NewDocument(vdom.Div(vdom.ID("app"), flash, static))
	clock := &fakeClock{}

	if got := toast.DismissFlashes(doc, clock, 0); got != 1 {
		t.Fatalf("scheduled %d flashes, want 1", got)
	}

	// A notification shown later is not a flash.
	note := toast.NewNotifier(doc, clock, toast.WithTiming(time.Hour, time.Hour)).Show("later", toast.LevelInfo)

	clock.Advance(toast.DefaultFlashDelay - time.Millisecond)
	if !doc.Contains(flash) {
		t.Fatal("flash removed too early")
	}
	clock.Advance(time.Millisecond)
	if doc.Contains(flash) {
		t.Error("flash should be removed after the delay")
	}
	if !doc.Contains(static) {
		t.Error("non-dismissible alert should stay")
	}
	if !doc.Contains(note.Node()) {
		t.Error("later notification should not be dismissed as a flash")
	}
}

func TestDismissFlashesNone(t *testing.T) {
	clock := &fakeClock{}
	if got := toast.DismissFlashes(newDoc(), clock, time.Second); got != 0 {
		t.Errorf("got %d", got)
	}
	if len(clock.timers) != 0 {
		t.Error("no timer should be scheduled without flashes")
	}
}

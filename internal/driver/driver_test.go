package driver

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mj1618/uisync/internal/config"
	"github.com/mj1618/uisync/internal/platform"
	_ "github.com/mj1618/uisync/internal/platform/scene"
	"github.com/mj1618/uisync/internal/sleeper"
	"go.uber.org/zap/zaptest"
)

const driverScene = `
display: {width: 400, height: 800}
screens:
  - id: main
    type: MainActivity
    root:
      type: DecorView
      bounds: [0, 0, 400, 800]
      children:
        - id: list
          type: ListView
          bounds: [0, 0, 400, 300]
          children:
            - {id: a, type: TextView, text: Apple, bounds: [0, 0, 400, 100]}
            - {id: b, type: TextView, text: Banana, bounds: [0, 100, 400, 100]}
            - {id: c, type: TextView, text: Cherry, bounds: [0, 200, 400, 100]}
            - {id: d, type: TextView, text: Date, bounds: [0, 300, 400, 100]}
            - {id: e, type: TextView, text: Elderberry, bounds: [0, 400, 400, 100]}
        - {id: next, resource_id: next_button, type: Button, text: Next, bounds: [0, 700, 400, 100]}
  - id: detail
    type: DetailActivity
    shown_at: 10s
    root:
      type: DecorView
      bounds: [0, 0, 400, 800]
      children:
        - {id: title, type: TextView, text: Details, bounds: [0, 0, 400, 100]}
overlays:
  - owner: detail
    shown_at: 12s
    hidden_at: 14s
    root:
      id: confirm
      type: DecorView
      bounds: [50, 300, 300, 200]
      children:
        - {id: ok, type: Button, text: OK, bounds: [60, 400, 100, 50]}
`

var epoch = time.Unix(1700000000, 0)

func newTestDriver(t *testing.T) (*Driver, *sleeper.FakeClock) {
	t.Helper()
	clock := sleeper.NewFakeClock(epoch)
	p, err := platform.NewProvider("scene", platform.Options{Data: []byte(driverScene), Clock: clock})
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	d, err := New(p, config.Default(),
		WithClock(clock),
		WithoutSampler(),
		WithLogger(zaptest.NewLogger(t)),
	)
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d, clock
}

func elapsed(c *sleeper.FakeClock) time.Duration { return c.Now().Sub(epoch) }

func TestNew_Errors(t *testing.T) {
	if _, err := New(nil, config.Default()); !errors.Is(err, platform.ErrNoProvider) {
		t.Errorf("expected ErrNoProvider, got %v", err)
	}
	cfg := config.Default()
	cfg.Pause = 0
	p, err := platform.NewProvider("scene", platform.Options{Data: []byte(driverScene)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(p, cfg); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestSession(t *testing.T) {
	d, _ := newTestDriver(t)
	if _, err := uuid.Parse(d.Session()); err != nil {
		t.Errorf("expected a uuid session, got %q", d.Session())
	}
	p, _ := platform.NewProvider("scene", platform.Options{Data: []byte(driverScene)})
	named, err := New(p, config.Default(), WithSession("run-7"), WithoutSampler())
	if err != nil {
		t.Fatal(err)
	}
	defer named.Close()
	if named.Session() != "run-7" {
		t.Errorf("expected run-7, got %q", named.Session())
	}
	if named.Backend() != "scene" {
		t.Errorf("expected scene backend, got %q", named.Backend())
	}
}

func TestSamplerStartsAndStops(t *testing.T) {
	p, err := platform.NewProvider("scene", platform.Options{Data: []byte(driverScene)})
	if err != nil {
		t.Fatal(err)
	}
	d, err := New(p, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := d.screens.Current(true); !ok || s.ID != "main" {
		t.Errorf("expected main screen, got %v %v", s, ok)
	}
	if err := d.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestCurrentScreen(t *testing.T) {
	d, clock := newTestDriver(t)
	if s, ok := d.PeekScreen(); !ok || s.Type != "MainActivity" {
		t.Fatalf("expected main screen, got %v %v", s, ok)
	}
	if elapsed(clock) != 0 {
		t.Errorf("expected PeekScreen not to pause, elapsed %v", elapsed(clock))
	}
	if s, ok := d.CurrentScreen(); !ok || s.ID != "main" {
		t.Fatalf("expected main screen, got %v %v", s, ok)
	}
	if elapsed(clock) != 500*time.Millisecond {
		t.Errorf("expected CurrentScreen to pause once, elapsed %v", elapsed(clock))
	}
}

func TestWaitForScreenAndStack(t *testing.T) {
	d, clock := newTestDriver(t)
	d.PeekScreen()

	if !d.WaitForScreen("DetailActivity", 15*time.Second) {
		t.Fatal("expected detail screen")
	}
	if got := elapsed(clock); got < 10*time.Second || got > 10*time.Second+50*time.Millisecond {
		t.Errorf("expected detail within one sync interval of 10s, got %v", got)
	}

	screens := d.Screens()
	if len(screens) != 2 || screens[0].ID != "main" || screens[1].ID != "detail" {
		t.Fatalf("expected [main detail], got %v", screens)
	}

	popped, ok := d.PopScreen()
	if !ok || popped.ID != "detail" {
		t.Fatalf("expected to pop detail, got %v %v", popped, ok)
	}
}

func TestFindNode(t *testing.T) {
	t.Run("pattern scrolls into view", func(t *testing.T) {
		d, _ := newTestDriver(t)
		n := d.FindNode(NodeQuery{Pattern: "^Elder"})
		if n == nil || n.ID != "e" {
			t.Fatalf("expected e, got %v", n)
		}
	})

	t.Run("type and index", func(t *testing.T) {
		d, _ := newTestDriver(t)
		n := d.FindNode(NodeQuery{Type: "TextView", Index: 3})
		if n == nil || n.ID != "d" {
			t.Fatalf("expected d, got %v", n)
		}
	})

	t.Run("resource id", func(t *testing.T) {
		d, _ := newTestDriver(t)
		n := d.FindNode(NodeQuery{ID: "next_button"})
		if n == nil || n.ID != "next" {
			t.Fatalf("expected next, got %v", n)
		}
	})

	t.Run("ref", func(t *testing.T) {
		d, _ := newTestDriver(t)
		n := d.FindNode(NodeQuery{Ref: "listview/apple"})
		if n == nil || n.ID != "a" {
			t.Fatalf("expected a, got %v", n)
		}
		if n := d.FindNode(NodeQuery{Ref: "apple"}); n == nil || n.ID != "a" {
			t.Fatalf("expected suffix ref to resolve a, got %v", n)
		}
		if n := d.FindNode(NodeQuery{Ref: "grape", Timeout: time.Second}); n != nil {
			t.Fatalf("expected nil for an unknown ref, got %v", n.ID)
		}
	})

	t.Run("scroll disabled", func(t *testing.T) {
		d, clock := newTestDriver(t)
		off := false
		if n := d.FindNode(NodeQuery{Pattern: "Elderberry", Scroll: &off, Timeout: 2 * time.Second}); n != nil {
			t.Fatalf("expected nil without scrolling, got %v", n.ID)
		}
		if elapsed(clock) < 2*time.Second {
			t.Errorf("expected to wait for the timeout, elapsed %v", elapsed(clock))
		}
	})
}

func TestWaitForText(t *testing.T) {
	d, _ := newTestDriver(t)
	n := d.WaitForText(TextQuery{Pattern: "Details", HardStop: true, Timeout: 15 * time.Second})
	if n == nil || n.ID != "title" {
		t.Fatalf("expected title, got %v", n)
	}
}

func TestWaitForOverlay(t *testing.T) {
	d, clock := newTestDriver(t)
	if d.IsOverlayOpen() {
		t.Fatal("expected no overlay at start")
	}
	if !d.WaitForScreen("detail", 15*time.Second) {
		t.Fatal("expected detail screen")
	}
	if !d.WaitForOverlay(true, 5*time.Second) {
		t.Fatal("expected dialog to open")
	}
	if elapsed(clock) < 12*time.Second {
		t.Errorf("dialog reported before it was shown: %v", elapsed(clock))
	}
	if !d.WaitForOverlay(false, 5*time.Second) {
		t.Fatal("expected dialog to close")
	}
	if elapsed(clock) < 14*time.Second {
		t.Errorf("close reported before the dialog was hidden: %v", elapsed(clock))
	}
}

func TestWaitForExpression(t *testing.T) {
	d, clock := newTestDriver(t)
	ok, err := d.WaitForExpression(`screen.type == "DetailActivity" && exists("Details")`, 15*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected expression to hold")
	}
	if elapsed(clock) < 10*time.Second {
		t.Errorf("expression held too early: %v", elapsed(clock))
	}

	if _, err := d.WaitForExpression("", time.Second); err == nil {
		t.Error("expected compile error")
	}
}

func TestCheckAndEnv(t *testing.T) {
	d, _ := newTestDriver(t)
	ok, err := d.Check(`count("Button") == 1 && !overlay && len(stack) == 1`)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Errorf("unexpected env: %+v", d.Env())
	}

	w, h, err := d.Display()
	if err != nil || w != 400 || h != 800 {
		t.Errorf("expected 400x800, got %dx%d (%v)", w, h, err)
	}
}

func TestHasText(t *testing.T) {
	d, clock := newTestDriver(t)
	if !d.HasText("^Elder") {
		t.Fatal("expected Elderberry after scrolling")
	}
	start := elapsed(clock)
	if d.HasText("Zucchini") {
		t.Fatal("expected no match")
	}
	if waited := elapsed(clock) - start; waited < 5*time.Second {
		t.Errorf("expected to search for the search timeout, waited %v", waited)
	}
}

func TestWaitForAnyType(t *testing.T) {
	d, _ := newTestDriver(t)
	if !d.WaitForAnyType([]string{"EditText", "btn"}) {
		t.Error("expected the button to satisfy the wait")
	}
	if d.WaitForAnyType([]string{"EditText"}) {
		t.Error("expected no edit field")
	}
}

func TestFindNode_Shown(t *testing.T) {
	d, _ := newTestDriver(t)
	n := d.FindNode(NodeQuery{Pattern: "Elderberry", Shown: true})
	if n == nil || n.ID != "e" {
		t.Fatalf("expected e once shown, got %v", n)
	}
	if !d.SufficientlyShown(n) {
		t.Error("expected e to be shown")
	}
	if d.StackIsEmpty() {
		t.Error("expected main on the stack")
	}
}

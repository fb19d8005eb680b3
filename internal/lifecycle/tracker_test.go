package lifecycle

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mj1618/uisync/internal/model"
	"github.com/mj1618/uisync/internal/platform"
	"github.com/mj1618/uisync/internal/sleeper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeHandle struct {
	mu        sync.Mutex
	id        string
	gone      bool
	finishing bool
}

func newHandle(id string) *fakeHandle { return &fakeHandle{id: id} }

func (h *fakeHandle) ID() string { return h.id }

func (h *fakeHandle) Resolve() (model.Screen, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.gone {
		return model.Screen{}, false
	}
	return model.Screen{ID: h.id, Type: h.id + "Activity", Finishing: h.finishing}, true
}

func (h *fakeHandle) setGone() {
	h.mu.Lock()
	h.gone = true
	h.mu.Unlock()
}

func (h *fakeHandle) setFinishing() {
	h.mu.Lock()
	h.finishing = true
	h.mu.Unlock()
}

type fakeOracle struct {
	mu    sync.Mutex
	next  platform.ScreenHandle
	err   error
	calls int
	// nilFor makes the first nilFor calls report no screen.
	nilFor int
}

func (o *fakeOracle) LastShownScreen() (platform.ScreenHandle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	if o.calls <= o.nilFor {
		return nil, nil
	}
	return o.next, nil
}

func (o *fakeOracle) report(h platform.ScreenHandle) {
	o.mu.Lock()
	o.next = h
	o.mu.Unlock()
}

func newTestTracker(o Oracle, opts ...Option) (*Tracker, *sleeper.FakeClock) {
	clock := sleeper.NewFakeClock(time.Unix(0, 0))
	return New(o, sleeper.New(clock), opts...), clock
}

func sampleAll(tr *Tracker, o *fakeOracle, hs ...platform.ScreenHandle) {
	for _, h := range hs {
		o.report(h)
		tr.Sample()
	}
}

func assertIDs(t *testing.T, tr *Tracker, want ...string) {
	t.Helper()
	got := tr.IDs()
	if len(got) != len(want) {
		t.Fatalf("expected stack %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected stack %v, got %v", want, got)
		}
	}
}

func TestSample_MoveToTop(t *testing.T) {
	o := &fakeOracle{}
	tr, _ := newTestTracker(o)
	a, b, c := newHandle("A"), newHandle("B"), newHandle("C")

	sampleAll(tr, o, a, b, c)
	assertIDs(t, tr, "A", "B", "C")

	sampleAll(tr, o, b)
	assertIDs(t, tr, "A", "C", "B")
}

func TestSample_NoOpResample(t *testing.T) {
	o := &fakeOracle{}
	tr, _ := newTestTracker(o)
	a, b := newHandle("A"), newHandle("B")
	sampleAll(tr, o, a, b)
	for i := 0; i < 10; i++ {
		tr.Sample()
	}
	assertIDs(t, tr, "A", "B")
}

func TestSample_FinishingEviction(t *testing.T) {
	o := &fakeOracle{}
	tr, _ := newTestTracker(o)
	a, b := newHandle("A"), newHandle("B")
	sampleAll(tr, o, a, b)

	b.setFinishing()
	tr.Sample()
	assertIDs(t, tr, "A")

	// A finishing screen is never pushed.
	c := newHandle("C")
	c.setFinishing()
	sampleAll(tr, o, c)
	assertIDs(t, tr, "A")
}

func TestSample_NeverDuplicates(t *testing.T) {
	o := &fakeOracle{}
	tr, _ := newTestTracker(o)
	handles := map[string]*fakeHandle{}
	for _, id := range []string{"A", "B", "C", "D"} {
		handles[id] = newHandle(id)
	}
	seq := "ABACADBBCADCBAADDCBA"
	for _, r := range seq {
		o.report(handles[string(r)])
		tr.Sample()

		seen := map[string]bool{}
		for _, id := range tr.IDs() {
			if seen[id] {
				t.Fatalf("duplicate %q in stack %v", id, tr.IDs())
			}
			seen[id] = true
		}
	}
	assertIDs(t, tr, "D", "C", "B", "A")
}

func TestSample_GoneAndErrorsIgnored(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	o := &fakeOracle{}
	tr, _ := newTestTracker(o, WithLogger(zap.New(core)))
	a := newHandle("A")
	sampleAll(tr, o, a)

	gone := newHandle("G")
	gone.setGone()
	sampleAll(tr, o, gone)
	assertIDs(t, tr, "A")

	o.mu.Lock()
	o.err = errors.New("no monitor")
	o.mu.Unlock()
	tr.Sample()
	assertIDs(t, tr, "A")

	if n := logs.FilterMessage("oracle query failed").Len(); n != 1 {
		t.Errorf("expected 1 oracle failure log, got %d", n)
	}

	o.mu.Lock()
	o.err = nil
	o.next = nil
	o.mu.Unlock()
	tr.Sample()
	assertIDs(t, tr, "A")
}

func TestRemovePush_Idempotent(t *testing.T) {
	o := &fakeOracle{}
	tr, _ := newTestTracker(o)
	a, b := newHandle("A"), newHandle("B")
	sampleAll(tr, o, a, b)
	before := tr.IDs()

	if !tr.Remove("B") {
		t.Fatal("expected B to be removed")
	}
	tr.Push(b)

	after := tr.IDs()
	if len(before) != len(after) || before[0] != after[0] || before[1] != after[1] {
		t.Errorf("expected %v, got %v", before, after)
	}
	if tr.Remove("Z") {
		t.Error("expected removing an absent screen to report false")
	}
}

func TestCurrent_PrunesGoneTop(t *testing.T) {
	o := &fakeOracle{}
	tr, _ := newTestTracker(o)
	a, b := newHandle("A"), newHandle("B")
	sampleAll(tr, o, a, b)
	b.setGone()

	s, ok := tr.Current(false)
	if !ok || s.ID != "A" {
		t.Errorf("expected A after pruning gone B, got %+v ok=%v", s, ok)
	}
	assertIDs(t, tr, "A")
}

func TestCurrent_SkipsFinishingTop(t *testing.T) {
	o := &fakeOracle{}
	tr, _ := newTestTracker(o)
	a, b := newHandle("A"), newHandle("B")
	sampleAll(tr, o, a, b)
	b.setFinishing()

	s, ok := tr.Current(false)
	if !ok || s.ID != "A" {
		t.Errorf("expected A while B is finishing, got %+v ok=%v", s, ok)
	}
	assertIDs(t, tr, "A")
}

func TestCurrent_EmptyWithoutWait(t *testing.T) {
	tr, clock := newTestTracker(&fakeOracle{})
	start := clock.Now()
	if _, ok := tr.Current(false); ok {
		t.Error("expected no screen")
	}
	if !clock.Now().Equal(start) {
		t.Error("expected no sleeping without mustWait")
	}
	if !tr.IsEmpty() {
		t.Error("expected empty stack")
	}
}

func TestCurrent_WaitsForFirstScreen(t *testing.T) {
	a := newHandle("A")
	o := &fakeOracle{next: a, nilFor: 3}
	tr, clock := newTestTracker(o)
	start := clock.Now()

	s, ok := tr.Current(true)
	if !ok || s.ID != "A" {
		t.Fatalf("expected A, got %+v ok=%v", s, ok)
	}
	if elapsed := clock.Now().Sub(start); elapsed != 3*sleeper.DefaultMiniPause {
		t.Errorf("expected 3 mini pauses, got %v", elapsed)
	}
	assertIDs(t, tr, "A")
}

func TestCurrent_BoundedScreenWait(t *testing.T) {
	o := &fakeOracle{}
	tr, clock := newTestTracker(o, WithScreenWait(time.Second))
	start := clock.Now()

	if _, ok := tr.Current(true); ok {
		t.Fatal("expected no screen")
	}
	elapsed := clock.Now().Sub(start)
	if elapsed < time.Second || elapsed > time.Second+sleeper.DefaultMiniPause {
		t.Errorf("expected to give up after ~1s, got %v", elapsed)
	}
}

func TestInitialScreenAndOpened(t *testing.T) {
	a, b := newHandle("A"), newHandle("B")
	o := &fakeOracle{}
	tr, _ := newTestTracker(o, WithInitialScreen(a))
	assertIDs(t, tr, "A")

	sampleAll(tr, o, b)
	a.setGone()
	opened := tr.Opened()
	if len(opened) != 1 || opened[0].ID != "B" {
		t.Errorf("expected only B opened, got %v", opened)
	}

	h, ok := tr.Pop()
	if !ok || h.ID() != "B" {
		t.Errorf("expected to pop B, got %v", h)
	}
	tr.Clear()
	if !tr.IsEmpty() {
		t.Error("expected empty stack after Clear")
	}
}

func TestStartClose_BackgroundSampler(t *testing.T) {
	o := &fakeOracle{next: newHandle("A")}
	tr := New(o, sleeper.New(nil), WithSampleInterval(time.Millisecond))
	tr.Start()
	tr.Start()

	deadline := time.Now().Add(2 * time.Second)
	for tr.IsEmpty() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	tr.Close()
	tr.Close()

	assertIDs(t, tr, "A")
}

func TestClose_WithoutStart(t *testing.T) {
	tr, _ := newTestTracker(&fakeOracle{})
	tr.Close()
}

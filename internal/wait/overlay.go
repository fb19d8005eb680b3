package wait

import (
	"time"

	"github.com/mj1618/uisync/internal/model"
	"go.uber.org/zap"
)

// IsOverlayOpen reports whether a shown overlay root other than the
// foreground screen's own root belongs to that screen.
func (w *Waiter) IsOverlayOpen() bool {
	screen, ok := w.screens.Current(false)
	if !ok || w.roots == nil {
		return false
	}
	roots, err := w.roots.LiveRoots()
	if err != nil {
		w.logger.Debug("introspection failed", zap.String("op", "live_roots"), zap.Error(err))
		return false
	}
	if model.IsOverlayOf(screen, model.FreshestNode(roots)) {
		return true
	}
	for _, r := range roots {
		if model.IsOverlayOf(screen, r) {
			return true
		}
	}
	return false
}

// WaitForOverlayOpen pauses once, then polls at the mini interval until an
// overlay of the foreground screen is open.
func (w *Waiter) WaitForOverlayOpen(timeout time.Duration) bool {
	return w.waitOverlayOpen(w.or(timeout, w.smallTimeout), true)
}

func (w *Waiter) waitOverlayOpen(timeout time.Duration, sleepFirst bool) bool {
	if sleepFirst {
		w.sleeper.Sleep()
	}
	deadline := w.sleeper.Now().Add(timeout)
	for w.sleeper.Now().Before(deadline) {
		if w.IsOverlayOpen() {
			return true
		}
		w.sleeper.SleepMini()
	}
	return false
}

// WaitForOverlayClose gives an overlay a short grace period to appear, then
// polls until none is open.
func (w *Waiter) WaitForOverlayClose(timeout time.Duration) bool {
	timeout = w.or(timeout, w.smallTimeout)
	w.waitOverlayOpen(overlayCloseGrace, false)
	deadline := w.sleeper.Now().Add(timeout)
	for w.sleeper.Now().Before(deadline) {
		if !w.IsOverlayOpen() {
			return true
		}
		w.sleeper.SleepFor(overlayClosePoll)
	}
	w.logger.Debug("overlay still open", zap.Duration("timeout", timeout))
	return false
}

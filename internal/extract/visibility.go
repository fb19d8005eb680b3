package extract

import "github.com/mj1618/uisync/internal/model"

// visibility evaluates the sufficiently-shown rule for one extraction pass.
// The display height is fetched at most once and only if some node has no
// scrollable container.
type visibility struct {
	e       *Extractor
	height  float64
	fetched bool
	err     error
}

func (e *Extractor) newVisibility() *visibility {
	return &visibility{e: e}
}

func (v *visibility) displayHeight() float64 {
	if v.fetched {
		return v.height
	}
	v.fetched = true
	var screen model.Screen
	if v.e.screens != nil {
		screen, _ = v.e.screens.Current(false)
	}
	h, err := v.e.port.DisplayHeight(screen)
	if err != nil {
		v.err = err
		return 0
	}
	v.height = float64(h)
	return v.height
}

// window returns the visible [top, bottom] range bounding n.
func (v *visibility) window(n *model.Node) (float64, float64) {
	if c := model.NearestContainer(n); c != nil {
		return float64(c.Bounds[1]), float64(c.Bottom())
	}
	return 0, v.displayHeight()
}

func (v *visibility) shown(n *model.Node) bool {
	if n == nil {
		return false
	}
	top, bottom := v.window(n)
	if v.err != nil {
		return false
	}
	center := n.CenterY()
	return center >= top && center <= bottom
}

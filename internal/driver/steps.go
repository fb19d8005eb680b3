package driver

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/uisync/internal/model"
	"github.com/mj1618/uisync/internal/platform"
	"gopkg.in/yaml.v3"
)

// ErrInvalidStep is returned for a step with zero or several actions.
var ErrInvalidStep = errors.New("invalid step")

// Step is one entry of a batch. Exactly one field is set.
type Step struct {
	Find          *NodeQuery     `yaml:"find,omitempty"           json:"find,omitempty"`
	WaitText      *TextQuery     `yaml:"wait_text,omitempty"      json:"wait_text,omitempty"`
	WaitScreen    *ScreenStep    `yaml:"wait_screen,omitempty"    json:"wait_screen,omitempty"`
	WaitOverlay   *OverlayStep   `yaml:"wait_overlay,omitempty"   json:"wait_overlay,omitempty"`
	WaitCondition *ConditionStep `yaml:"wait_condition,omitempty" json:"wait_condition,omitempty"`
	Check         string         `yaml:"check,omitempty"          json:"check,omitempty"`
	Search        string         `yaml:"search,omitempty"         json:"search,omitempty"`
	Scroll        *ScrollStep    `yaml:"scroll,omitempty"         json:"scroll,omitempty"`
	PopScreen     bool           `yaml:"pop_screen,omitempty"     json:"pop_screen,omitempty"`
	Sleep         time.Duration  `yaml:"sleep,omitempty"          json:"sleep,omitempty"`
}

// ScreenStep waits for a screen by identity or type name.
type ScreenStep struct {
	Name    string        `yaml:"name"              json:"name"`
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// OverlayStep waits for an overlay to open, or to close when Open is false.
type OverlayStep struct {
	Open    *bool         `yaml:"open,omitempty"    json:"open,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// ConditionStep waits for an expression to hold.
type ConditionStep struct {
	Expression string        `yaml:"expression"        json:"expression"`
	Timeout    time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// ScrollStep scrolls a number of pages.
type ScrollStep struct {
	Direction string `yaml:"direction,omitempty" json:"direction,omitempty"`
	Pages     int    `yaml:"pages,omitempty"     json:"pages,omitempty"`
}

// Action names the step's single action.
func (s Step) Action() (string, error) {
	var names []string
	if s.Find != nil {
		names = append(names, "find")
	}
	if s.WaitText != nil {
		names = append(names, "wait_text")
	}
	if s.WaitScreen != nil {
		names = append(names, "wait_screen")
	}
	if s.WaitOverlay != nil {
		names = append(names, "wait_overlay")
	}
	if s.WaitCondition != nil {
		names = append(names, "wait_condition")
	}
	if s.Check != "" {
		names = append(names, "check")
	}
	if s.Search != "" {
		names = append(names, "search")
	}
	if s.Scroll != nil {
		names = append(names, "scroll")
	}
	if s.PopScreen {
		names = append(names, "pop_screen")
	}
	if s.Sleep > 0 {
		names = append(names, "sleep")
	}
	switch len(names) {
	case 0:
		return "", fmt.Errorf("%w: no action", ErrInvalidStep)
	case 1:
		return names[0], nil
	default:
		return "", fmt.Errorf("%w: several actions (%s)", ErrInvalidStep, strings.Join(names, ", "))
	}
}

// ParseSteps decodes a YAML list of steps and checks each has one action.
func ParseSteps(data []byte) ([]Step, error) {
	var steps []Step
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("invalid YAML input: %w", err)
	}
	for i, s := range steps {
		if _, err := s.Action(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return steps, nil
}

// StepResult is the outcome of one step.
type StepResult struct {
	Step    int             `yaml:"step"              json:"step"`
	OK      bool            `yaml:"ok"                json:"ok"`
	Action  string          `yaml:"action"            json:"action"`
	Error   string          `yaml:"error,omitempty"   json:"error,omitempty"`
	Elapsed string          `yaml:"elapsed,omitempty" json:"elapsed,omitempty"`
	Node    *model.FlatNode `yaml:"node,omitempty"    json:"node,omitempty"`
	Screen  *model.Screen   `yaml:"screen,omitempty"  json:"screen,omitempty"`
}

// BatchResult is the outcome of RunSteps.
type BatchResult struct {
	OK        bool         `yaml:"ok"        json:"ok"`
	Action    string       `yaml:"action"    json:"action"`
	Steps     int          `yaml:"steps"     json:"steps"`
	Completed int          `yaml:"completed" json:"completed"`
	Results   []StepResult `yaml:"results"   json:"results"`
}

// RunSteps executes steps in order. With stopOnError the batch ends at the
// first failed step.
func (d *Driver) RunSteps(steps []Step, stopOnError bool) BatchResult {
	res := BatchResult{OK: true, Action: "do", Steps: len(steps)}
	for i, s := range steps {
		r := d.RunStep(s)
		r.Step = i + 1
		res.Results = append(res.Results, r)
		if r.OK {
			res.Completed++
			continue
		}
		res.OK = false
		if stopOnError {
			break
		}
	}
	return res
}

// RunStep executes one step.
func (d *Driver) RunStep(s Step) StepResult {
	action, err := s.Action()
	if err != nil {
		return StepResult{Action: "invalid", Error: err.Error()}
	}
	start := d.sleeper.Now()
	r := StepResult{Action: action}

	switch action {
	case "find":
		r.Node = flat(d.FindNode(*s.Find))
		r.OK = r.Node != nil
		if !r.OK {
			r.Error = "node not found"
		}
	case "wait_text":
		r.Node = flat(d.WaitForText(*s.WaitText))
		r.OK = r.Node != nil
		if !r.OK {
			r.Error = fmt.Sprintf("timed out waiting for text %q", s.WaitText.Pattern)
		}
	case "wait_screen":
		r.OK = d.WaitForScreen(s.WaitScreen.Name, s.WaitScreen.Timeout)
		if !r.OK {
			r.Error = fmt.Sprintf("timed out waiting for screen %q", s.WaitScreen.Name)
		}
	case "wait_overlay":
		open := s.WaitOverlay.Open == nil || *s.WaitOverlay.Open
		r.OK = d.WaitForOverlay(open, s.WaitOverlay.Timeout)
		if !r.OK {
			r.Error = "timed out waiting for overlay"
		}
	case "wait_condition":
		ok, err := d.WaitForExpression(s.WaitCondition.Expression, s.WaitCondition.Timeout)
		r.OK = ok
		switch {
		case err != nil:
			r.Error = err.Error()
		case !ok:
			r.Error = fmt.Sprintf("timed out waiting for %s", s.WaitCondition.Expression)
		}
	case "check":
		ok, err := d.Check(s.Check)
		r.OK = ok
		switch {
		case err != nil:
			r.Error = err.Error()
		case !ok:
			r.Error = fmt.Sprintf("condition is false: %s", s.Check)
		}
	case "search":
		r.OK = d.HasText(s.Search)
		if !r.OK {
			r.Error = fmt.Sprintf("no node matches %q", s.Search)
		}
	case "scroll":
		r.OK, r.Error = d.scrollPages(*s.Scroll)
	case "pop_screen":
		if d.StackIsEmpty() {
			r.Error = "screen stack is empty"
			break
		}
		screen, ok := d.PopScreen()
		r.OK = ok
		r.Screen = &screen
	case "sleep":
		d.sleeper.SleepFor(s.Sleep)
		r.OK = true
	}

	r.Elapsed = fmt.Sprintf("%.1fs", d.sleeper.Now().Sub(start).Seconds())
	return r
}

func (d *Driver) scrollPages(s ScrollStep) (bool, string) {
	dir, err := platform.ParseDirection(s.Direction)
	if err != nil {
		return false, err.Error()
	}
	if d.provider.Scroller == nil {
		return false, "scrolling not available for this backend"
	}
	pages := s.Pages
	if pages < 1 {
		pages = 1
	}
	moved := false
	for i := 0; i < pages; i++ {
		if !d.provider.Scroller.ScrollStep(dir) {
			break
		}
		moved = true
	}
	if !moved {
		return false, "content did not move"
	}
	return true, ""
}

func flat(n *model.Node) *model.FlatNode {
	if n == nil {
		return nil
	}
	f := model.Flatten(n)
	return &f
}

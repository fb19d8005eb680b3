package platform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/uisync/internal/sleeper"
)

// Direction is the direction of a scroll step.
type Direction int

const (
	Down Direction = iota
	Up
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// ParseDirection converts a string flag value to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "down":
		return Down, nil
	case "up":
		return Up, nil
	default:
		return Down, fmt.Errorf("unknown scroll direction: %q (expected up or down)", s)
	}
}

// Bounds represents a screen rectangle.
type Bounds struct {
	X, Y, Width, Height int
}

// Array returns the bounds in [x, y, width, height] form.
func (b Bounds) Array() [4]int {
	return [4]int{b.X, b.Y, b.Width, b.Height}
}

// ParseBBox parses a "x,y,w,h" string into a Bounds.
func ParseBBox(s string) (*Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid bbox %q: expected x,y,w,h", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid bbox %q: %w", s, err)
		}
		vals[i] = v
	}
	return &Bounds{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// Options configures a backend when it is constructed.
type Options struct {
	Source string        // Backend-specific source, e.g. a scene file path
	Data   []byte        // Inline source content; takes precedence over Source
	Clock  sleeper.Clock // Time source for backends that simulate time
}

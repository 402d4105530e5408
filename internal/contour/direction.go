package contour

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/pixgroup/internal/pointset"
)

// Direction is one of the four cardinal directions. Y grows downwards, so
// North is towards smaller Y.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

var directionNames = [...]string{"north", "east", "south", "west"}

// Valid reports whether d is one of the four cardinal directions.
func (d Direction) Valid() bool { return d >= North && d <= West }

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// Right returns d rotated 90° clockwise.
func (d Direction) Right() Direction { return (d + 1) % 4 }

// Left returns d rotated 90° anticlockwise.
func (d Direction) Left() Direction { return (d + 3) % 4 }

// Opposite returns d rotated by 180°.
func (d Direction) Opposite() Direction { return (d + 2) % 4 }

// Step returns p moved one pixel towards d.
func (d Direction) Step(p pointset.Point) pointset.Point {
	switch d {
	case North:
		p.Y--
	case East:
		p.X++
	case South:
		p.Y++
	case West:
		p.X--
	}
	return p
}

// ParseDirection parses a direction name or its first letter, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range directionNames {
		if s == name || (len(s) == 1 && s[0] == name[0]) {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Rotation classifies the winding of a closed trace.
type Rotation int

const (
	Unclassified Rotation = iota
	Clockwise
	Anticlockwise
)

func (r Rotation) String() string {
	switch r {
	case Clockwise:
		return "clockwise"
	case Anticlockwise:
		return "anticlockwise"
	default:
		return "unclassified"
	}
}

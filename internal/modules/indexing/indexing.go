package indexing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDirection is returned by ParseDirection for anything but up or down.
var ErrInvalidDirection = errors.New("direction must be \"up\" or \"down\"")

type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// ParseDirection accepts "up" or "down" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return Up, fmt.Errorf("%w: got %q", ErrInvalidDirection, s)
}

// Plan maps list positions to output indices.
type Plan struct {
	Start     int
	Direction Direction
	Total     int
}

func (p Plan) Step() int {
	if p.Direction == Up {
		return 1
	}
	return -1
}

// Adjusted is the starting point shifted by the list length when counting down.
func (p Plan) Adjusted() int {
	if p.Direction == Down {
		return p.Start + (p.Total-1)*p.Step()
	}
	return p.Start
}

// IndexAt returns the index for the 0-based list position pos.
//
// Positions are counted from the adjusted start and the offset is then
// taken against the original start. Counting up this yields Start+pos,
// counting down Start-pos.
func (p Plan) IndexAt(pos int) int {
	adjusted := p.Adjusted()
	counter := adjusted + pos
	return adjusted + (counter-p.Start)*p.Step()
}

// Indices returns IndexAt for every position of the list.
func (p Plan) Indices() []int {
	out := make([]int, 0, p.Total)
	for i := 0; i < p.Total; i++ {
		out = append(out, p.IndexAt(i))
	}
	return out
}

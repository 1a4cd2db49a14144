// Package agent models one exploring agent: its position and facing in
// the shared maze graph, and the egocentric-to-world coordinate frame
// rotation used to place a radar view onto the graph.
package agent

import (
	"github.com/jayllyz/labyrinth/internal/mazegraph"
	"github.com/jayllyz/labyrinth/internal/protocol"
)

// Algorithm tags which exploration strategy an agent runs. Dispatch on
// this tag happens at the single call site in internal/explore, per the
// "no dynamic polymorphism" redesign note.
type Algorithm int

const (
	RightHand Algorithm = iota
	Tremeaux
	Alian
)

func (a Algorithm) String() string {
	switch a {
	case RightHand:
		return "RightHand"
	case Tremeaux:
		return "Tremeaux"
	case Alian:
		return "Alian"
	default:
		return "Unknown"
	}
}

// ParseAlgorithm maps a CLI-provided name to an Algorithm tag.
func ParseAlgorithm(s string) (Algorithm, bool) {
	switch s {
	case "RightHand", "righthand", "right-hand":
		return RightHand, true
	case "Tremeaux", "tremeaux", "Trémaux":
		return Tremeaux, true
	case "Alian", "alian":
		return Alian, true
	default:
		return 0, false
	}
}

// Agent is owned exclusively by the worker goroutine that runs it; it
// is never shared or locked.
type Agent struct {
	Name      string
	Position  mazegraph.Cell
	Facing    protocol.Direction
	Algorithm Algorithm
}

// New returns an agent at the origin, facing Front.
func New(name string, algo Algorithm) *Agent {
	return &Agent{
		Name:      name,
		Position:  mazegraph.Cell{Row: 0, Col: 0},
		Facing:    protocol.Front,
		Algorithm: algo,
	}
}

// frontMask is the index->offset table for the Front-facing 3x3
// egocentric radar window, row-major, agent at index 4.
var frontMask = [9]mazegraph.Cell{
	{Row: -1, Col: -1}, {Row: 0, Col: -1}, {Row: 1, Col: -1},
	{Row: -1, Col: 0}, {Row: 0, Col: 0}, {Row: 1, Col: 0},
	{Row: -1, Col: 1}, {Row: 0, Col: 1}, {Row: 1, Col: 1},
}

// DirectionMask returns the 3x3 offset table rotated for the given
// facing: unrotated for Front, 90 degrees left for Right, 90 degrees
// right for Left, 180 degrees for Back.
func DirectionMask(facing protocol.Direction) [9]mazegraph.Cell {
	var mask [9]mazegraph.Cell
	switch facing {
	case protocol.Front:
		mask = frontMask
	case protocol.Right:
		mask = rotateLeft(frontMask)
	case protocol.Left:
		mask = rotateRight(frontMask)
	case protocol.Back:
		mask = rotateLeft(rotateLeft(frontMask))
	default:
		mask = frontMask
	}
	return mask
}

// rotateLeft rotates a 3x3 egocentric offset grid 90 degrees left
// (counter-clockwise): the cell previously at row-major index 2 (top
// right of the grid as drawn) becomes index 0, and so on. Rotating the
// index mapping is equivalent to rotating each offset by -90 degrees.
func rotateLeft(mask [9]mazegraph.Cell) [9]mazegraph.Cell {
	var out [9]mazegraph.Cell
	for i, off := range mask {
		out[i] = mazegraph.Cell{Row: -off.Col, Col: off.Row}
	}
	return out
}

// rotateRight rotates a 3x3 egocentric offset grid 90 degrees right
// (clockwise).
func rotateRight(mask [9]mazegraph.Cell) [9]mazegraph.Cell {
	var out [9]mazegraph.Cell
	for i, off := range mask {
		out[i] = mazegraph.Cell{Row: off.Col, Col: -off.Row}
	}
	return out
}

// Step advances pos by one cell along the agent's current orientation
// facing dir: Front decrements the column, Right increments the row,
// Back increments the column, Left decrements the row.
func Step(pos mazegraph.Cell, dir protocol.Direction) mazegraph.Cell {
	switch dir {
	case protocol.Front:
		return mazegraph.Cell{Row: pos.Row, Col: pos.Col - 1}
	case protocol.Right:
		return mazegraph.Cell{Row: pos.Row + 1, Col: pos.Col}
	case protocol.Back:
		return mazegraph.Cell{Row: pos.Row, Col: pos.Col + 1}
	case protocol.Left:
		return mazegraph.Cell{Row: pos.Row - 1, Col: pos.Col}
	default:
		return pos
	}
}

// Turn rotates the agent's facing by the given relative turn and
// advances its position by one step in the resulting orientation.
func (a *Agent) Turn(turn protocol.Direction) {
	a.Facing = a.Facing.Turn(turn)
}

// Advance steps the agent one cell in its current facing's world-frame
// offset (Front: column-1, Right: row+1, Back: column+1, Left: row-1).
func (a *Agent) Advance() {
	a.Position = Step(a.Position, a.Facing)
}

// Move turns the agent to face turn, then advances it one cell — the
// combined "turn then advance" semantics used by every explorer when
// it emits a move.
func (a *Agent) Move(turn protocol.Direction) {
	a.Turn(turn)
	a.Advance()
}

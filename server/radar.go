package server

import (
	"github.com/jayllyz/labyrinth/internal/agent"
	"github.com/jayllyz/labyrinth/internal/mazegen"
	"github.com/jayllyz/labyrinth/internal/mazegraph"
	"github.com/jayllyz/labyrinth/internal/protocol"
	"github.com/jayllyz/labyrinth/internal/radar"
)

// passageBetween reports whether a and b are open to each other in m,
// treating any position outside the maze as a closed boundary wall.
func passageBetween(m *mazegen.Maze, a, b mazegraph.Cell) radar.Passage {
	if !m.InBounds(a) || !m.InBounds(b) {
		return radar.Wall
	}
	for _, n := range m.Neighbors(a) {
		if n == b {
			return radar.Open
		}
	}
	return radar.Wall
}

// occupant classifies what, if anything, another player's presence
// contributes to cell pos's radar kind.
func occupant(players []*Player, self *Player, pos mazegraph.Cell, sameTeam map[string]bool) radar.CellKind {
	for _, p := range players {
		if p == self {
			continue
		}
		ppos, _ := p.SnapshotPosition()
		if ppos != pos {
			continue
		}
		if sameTeam[p.Name] {
			return radar.Ally
		}
		return radar.Enemy
	}
	return radar.Nothing
}

// synthesizeView builds the radar view centered on self, given the
// server's full knowledge of the maze: the inverse of internal/radar's
// Decode, built from world-frame wall and occupancy data rather than
// wire bytes. allPlayers lists every admitted player server-wide, used
// to place Ally/Enemy markers; sameTeam names self's own teammates.
func synthesizeView(m *mazegen.Maze, goal mazegraph.Cell, self *Player, allPlayers []*Player, sameTeam map[string]bool) *radar.View {
	center, facing := self.SnapshotPosition()
	mask := agent.DirectionMask(facing)

	north, south, west, east := mask[1], mask[7], mask[3], mask[5]

	var windowPos [9]mazegraph.Cell
	for i := 0; i < 9; i++ {
		windowPos[i] = mazegraph.Cell{Row: center.Row + mask[i].Row, Col: center.Col + mask[i].Col}
	}

	var horizontal [12]radar.Passage
	for k := 0; k < 12; k++ {
		rowBoundary, col := k/3, k%3
		var a, b mazegraph.Cell
		switch rowBoundary {
		case 0:
			a = addCell(windowPos[col], north)
			b = windowPos[col]
		case 3:
			a = windowPos[6+col]
			b = addCell(windowPos[6+col], south)
		default:
			a = windowPos[(rowBoundary-1)*3+col]
			b = windowPos[rowBoundary*3+col]
		}
		horizontal[k] = passageBetween(m, a, b)
	}

	var vertical [12]radar.Passage
	for k := 0; k < 12; k++ {
		row, colBoundary := k/4, k%4
		var a, b mazegraph.Cell
		switch colBoundary {
		case 0:
			a = addCell(windowPos[row*3], west)
			b = windowPos[row*3]
		case 3:
			a = windowPos[row*3+2]
			b = addCell(windowPos[row*3+2], east)
		default:
			a = windowPos[row*3+colBoundary-1]
			b = windowPos[row*3+colBoundary]
		}
		vertical[k] = passageBetween(m, a, b)
	}

	var cells [9]radar.CellKind
	for i := 0; i < 9; i++ {
		pos := windowPos[i]
		switch {
		case !m.InBounds(pos):
			cells[i] = radar.Invalid
		case pos == goal:
			cells[i] = radar.Objective
		default:
			cells[i] = occupant(allPlayers, self, pos, sameTeam)
		}
	}

	return radar.New(horizontal, vertical, cells)
}

func addCell(c, offset mazegraph.Cell) mazegraph.Cell {
	return mazegraph.Cell{Row: c.Row + offset.Row, Col: c.Col + offset.Col}
}

// Action result used by the server's move-validation step.
type moveOutcome struct {
	newPos  mazegraph.Cell
	errKind *protocol.ActionErrorKind
}

// validateMove checks a MoveTo request against the maze and the
// positions of every other admitted player, without mutating state.
func validateMove(m *mazegen.Maze, self *Player, turn protocol.Direction, allPlayers []*Player) moveOutcome {
	pos, facing := self.SnapshotPosition()
	newFacing := facing.Turn(turn)
	target := agent.Step(pos, newFacing)

	if !m.InBounds(target) {
		k := protocol.OutOfMap
		return moveOutcome{errKind: &k}
	}
	if passageBetween(m, pos, target) != radar.Open {
		k := protocol.Blocked
		return moveOutcome{errKind: &k}
	}
	for _, p := range allPlayers {
		if p == self {
			continue
		}
		ppos, _ := p.SnapshotPosition()
		if ppos == target {
			k := protocol.CannotPassThroughOpponent
			return moveOutcome{errKind: &k}
		}
	}
	return moveOutcome{newPos: target}
}

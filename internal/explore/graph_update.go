// Package explore implements the team's concurrent maze-exploration
// algorithms (right-hand, Trémaux, and the multi-agent "Alian"
// extension), all operating over a shared internal/mazegraph.Graph
// built incrementally from internal/radar views.
package explore

import (
	"github.com/jayllyz/labyrinth/internal/agent"
	"github.com/jayllyz/labyrinth/internal/mazegraph"
	"github.com/jayllyz/labyrinth/internal/protocol"
	"github.com/jayllyz/labyrinth/internal/radar"
)

func cellKind(k radar.CellKind) mazegraph.Kind {
	switch k {
	case radar.Ally:
		return mazegraph.Ally
	case radar.Enemy:
		return mazegraph.Enemy
	case radar.Monster:
		return mazegraph.Monster
	case radar.Help:
		return mazegraph.Help
	case radar.Objective:
		return mazegraph.Objective
	case radar.ObjectiveMonster:
		return mazegraph.ObjectiveMonster
	case radar.Invalid:
		return mazegraph.Invalid
	default:
		return mazegraph.Nothing
	}
}

// mustInsert names the center cell and its four orthogonal neighbors,
// which are always inserted regardless of kind.
func mustInsert(i int) bool {
	return i == 1 || i == 3 || i == 4 || i == 5 || i == 7
}

// UpdateGraph reconstructs the portion of the maze graph revealed by one
// radar view, placing the egocentric 3x3 window into world coordinates
// via the agent's current position and facing, and recording every wall
// segment and edge the radar resolved.
func UpdateGraph(g *mazegraph.Graph, a *agent.Agent, view *radar.View) {
	mask := agent.DirectionMask(a.Facing)

	var worldPos [9]mazegraph.Cell
	var inserted [9]bool

	for i := 0; i < 9; i++ {
		worldPos[i] = mazegraph.Cell{
			Row: a.Position.Row + mask[i].Row,
			Col: a.Position.Col + mask[i].Col,
		}
		kind := cellKind(view.Cells[i])
		if !mustInsert(i) && kind == mazegraph.Invalid {
			continue
		}
		g.Insert(worldPos[i], kind)
		inserted[i] = true
		g.RaiseWalls(worldPos[i], radar.WallCount(view, i))
	}

	for i := 0; i < 9; i++ {
		if !inserted[i] {
			continue
		}
		if radar.HasTop(view, i) && inserted[i-3] {
			g.AddNeighbor(worldPos[i], worldPos[i-3])
			g.AddNeighbor(worldPos[i-3], worldPos[i])
		}
		if radar.HasLeft(view, i) && inserted[i-1] {
			g.AddNeighbor(worldPos[i], worldPos[i-1])
			g.AddNeighbor(worldPos[i-1], worldPos[i])
		}
	}
}

// directionToward returns the turn (relative to the agent's current
// facing) that steps from the agent's position toward an adjacent
// target cell, by matching the offset against the current direction
// mask: mask[3]->Left, mask[5]->Right, mask[7]->Back, otherwise Front.
func directionToward(a *agent.Agent, target mazegraph.Cell) protocol.Direction {
	mask := agent.DirectionMask(a.Facing)
	diff := mazegraph.Cell{Row: target.Row - a.Position.Row, Col: target.Col - a.Position.Col}

	switch diff {
	case mask[3]:
		return protocol.Left
	case mask[5]:
		return protocol.Right
	case mask[7]:
		return protocol.Back
	default:
		return protocol.Front
	}
}

// CheckWin re-examines the just-observed radar cells against the move
// just emitted: index 5 (Right), 3 (Left), 1 (Front), 7 (Back) must
// contain Objective for the emitted direction.
func CheckWin(view *radar.View, emitted protocol.Direction) bool {
	var idx int
	switch emitted {
	case protocol.Right:
		idx = 5
	case protocol.Left:
		idx = 3
	case protocol.Front:
		idx = 1
	case protocol.Back:
		idx = 7
	default:
		return false
	}
	kind := view.Cells[idx]
	return kind == radar.Objective
}

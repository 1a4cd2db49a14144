package explore

import (
	"sort"

	"github.com/jayllyz/labyrinth/internal/agent"
	"github.com/jayllyz/labyrinth/internal/mazegraph"
	"github.com/jayllyz/labyrinth/internal/protocol"
	"github.com/jayllyz/labyrinth/internal/radar"
)

// Decide dispatches to the algorithm tagged on a, turns and advances a
// to reflect the chosen move, and returns the relative direction that
// was emitted. Callers must call UpdateGraph with the same view first.
func Decide(g *mazegraph.Graph, a *agent.Agent, view *radar.View) protocol.Direction {
	switch a.Algorithm {
	case agent.RightHand:
		return RightHand(g, a, view)
	case agent.Tremeaux:
		return tremeauxLike(g, a, view, false)
	case agent.Alian:
		return tremeauxLike(g, a, view, true)
	default:
		return RightHand(g, a, view)
	}
}

// RightHand inspects passages in priority Right, Front, Left, Back and
// emits the first open one, defaulting to Right if all are walled.
func RightHand(g *mazegraph.Graph, a *agent.Agent, view *radar.View) protocol.Direction {
	if !g.Contains(a.Position) {
		a.Move(protocol.Front)
		return protocol.Front
	}

	turn := protocol.Right
	switch {
	case radar.HasRight(view, 4):
		turn = protocol.Right
	case radar.HasTop(view, 4):
		turn = protocol.Front
	case radar.HasLeft(view, 4):
		turn = protocol.Left
	case radar.HasBottom(view, 4):
		turn = protocol.Back
	}
	a.Move(turn)
	return turn
}

func sortedNeighbors(g *mazegraph.Graph, p mazegraph.Cell) []mazegraph.Cell {
	set := g.Neighbors(p)
	out := make([]mazegraph.Cell, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// tremeauxLike implements both Trémaux (alian=false) and its Alian
// multi-agent extension (alian=true); see internal/explore's package
// doc for the shared preamble and the points where the two diverge.
func tremeauxLike(g *mazegraph.Graph, a *agent.Agent, view *radar.View, alian bool) protocol.Direction {
	center := a.Position
	rec := g.Get(center)
	if rec == nil {
		a.Move(protocol.Front)
		return protocol.Front
	}

	if alian {
		g.MarkVisitedBy(center, a.Name)
	}

	neighbors := sortedNeighbors(g, center)

	for _, p := range neighbors {
		pr := g.Get(p)
		if pr.WallCount == 3 && pr.Kind != mazegraph.Objective && pr.Kind != mazegraph.Help {
			g.SetStatus(p, mazegraph.DeadEnd)
		}
	}

	if alian {
		deadEnds := 0
		for _, p := range neighbors {
			if g.GetStatus(p) == mazegraph.DeadEnd {
				deadEnds++
			}
		}
		if rec.WallCount+deadEnds == 3 {
			g.SetStatus(center, mazegraph.DeadEnd)
		}
	}

	for _, p := range neighbors {
		if g.GetStatus(p) == mazegraph.NotVisited {
			g.SetStatus(center, mazegraph.Visited)
			g.SetParent(p, center)
			turn := directionToward(a, p)
			a.Move(turn)
			return turn
		}
	}

	if !alian {
		g.SetStatus(center, mazegraph.DeadEnd)
	}

	parent := rec.Parent
	var target mazegraph.Cell
	if parent == center || g.GetStatus(parent) == mazegraph.DeadEnd {
		if alian {
			target = alianBacktrack(g, a, neighbors, parent)
		} else {
			target = firstVisited(g, neighbors, parent)
		}
	} else {
		target = parent
	}

	turn := directionToward(a, target)
	a.Move(turn)
	return turn
}

// firstVisited returns the first Visited neighbor in sorted order, or
// parent if none exists (a dead-end pocket with no escape recorded yet).
func firstVisited(g *mazegraph.Graph, neighbors []mazegraph.Cell, parent mazegraph.Cell) mazegraph.Cell {
	for _, p := range neighbors {
		if g.GetStatus(p) == mazegraph.Visited {
			return p
		}
	}
	return parent
}

// alianBacktrack prefers a Visited neighbor this agent has never visited,
// then the least-visited-by-self Visited neighbor, then parent.
func alianBacktrack(g *mazegraph.Graph, a *agent.Agent, neighbors []mazegraph.Cell, parent mazegraph.Cell) mazegraph.Cell {
	var notVisitedBySelf, visitedBySelf []mazegraph.Cell
	for _, p := range neighbors {
		rec := g.Get(p)
		if rec.Status != mazegraph.Visited {
			continue
		}
		if rec.VisitedBy[a.Name] == 0 {
			notVisitedBySelf = append(notVisitedBySelf, p)
		} else {
			visitedBySelf = append(visitedBySelf, p)
		}
	}
	if len(notVisitedBySelf) > 0 {
		return notVisitedBySelf[0]
	}
	if len(visitedBySelf) > 0 {
		sort.SliceStable(visitedBySelf, func(i, j int) bool {
			return g.Get(visitedBySelf[i]).VisitedBy[a.Name] < g.Get(visitedBySelf[j]).VisitedBy[a.Name]
		})
		return visitedBySelf[0]
	}
	return parent
}

// Package mazegraph implements the shared, team-wide map an exploring
// client reconstructs incrementally from radar views: a dense mapping
// from integer cell coordinates to cell records, with the invariants
// required by the exploration algorithms in internal/explore.
package mazegraph

// Cell identifies a maze position by its signed row/column coordinates,
// in the agent's world frame. The agent's initial position is (0, 0).
type Cell struct {
	Row int16
	Col int16
}

// Kind classifies the contents of a cell as last observed by radar.
type Kind int

const (
	Nothing Kind = iota
	Ally
	Enemy
	Monster
	Help
	Objective
	ObjectiveMonster
	Invalid
)

// Status tracks an exploring agent's relationship to a cell.
type Status int

const (
	NotVisited Status = iota
	Visited
	DeadEnd
)

// Record is the per-cell state stored in a Graph.
type Record struct {
	Kind      Kind
	Neighbors map[Cell]struct{}
	Status    Status
	WallCount int
	Parent    Cell
	VisitedBy map[string]int
}

func newRecord(p Cell, kind Kind) *Record {
	return &Record{
		Kind:      kind,
		Neighbors: make(map[Cell]struct{}),
		Status:    NotVisited,
		WallCount: 0,
		Parent:    p, // the root-marker: a NotVisited cell's parent is itself.
		VisitedBy: make(map[string]int),
	}
}

// Graph is a mapping from cell identifier to cell record, shared by all
// agents on one team and mutated under a caller-held lock (see
// client.Runtime, which owns the mutex wrapping this type).
type Graph struct {
	cells map[Cell]*Record
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{cells: make(map[Cell]*Record)}
}

// Contains reports whether p has been inserted.
func (g *Graph) Contains(p Cell) bool {
	_, ok := g.cells[p]
	return ok
}

// Insert adds p with the given kind if absent; a no-op otherwise.
func (g *Graph) Insert(p Cell, kind Kind) {
	if _, ok := g.cells[p]; ok {
		return
	}
	g.cells[p] = newRecord(p, kind)
}

// Get returns the record for p, or nil if absent.
func (g *Graph) Get(p Cell) *Record {
	return g.cells[p]
}

// AddNeighbor inserts q into p's neighbor set. It does not insert the
// reverse edge: callers must invoke AddNeighbor in both directions to
// maintain the graph's symmetry invariant.
func (g *Graph) AddNeighbor(p, q Cell) {
	r, ok := g.cells[p]
	if !ok {
		return
	}
	r.Neighbors[q] = struct{}{}
}

// Neighbors returns the neighbor set of p, or nil if p is absent.
func (g *Graph) Neighbors(p Cell) map[Cell]struct{} {
	r, ok := g.cells[p]
	if !ok {
		return nil
	}
	return r.Neighbors
}

// SetStatus sets p's status. A no-op if p is absent.
func (g *Graph) SetStatus(p Cell, s Status) {
	if r, ok := g.cells[p]; ok {
		r.Status = s
	}
}

// GetStatus returns p's status, or DeadEnd if p is absent — this lets
// callers treat unknown cells as impassable without a separate nil
// check.
func (g *Graph) GetStatus(p Cell) Status {
	r, ok := g.cells[p]
	if !ok {
		return DeadEnd
	}
	return r.Status
}

// RaiseWalls updates p's wall count to max(w, old), preserving the
// monotone-non-decreasing invariant. A no-op if p is absent.
func (g *Graph) RaiseWalls(p Cell, w int) {
	r, ok := g.cells[p]
	if !ok {
		return
	}
	if w > r.WallCount {
		r.WallCount = w
	}
}

// SetParent sets p's DFS back-pointer to q. A no-op if p is absent.
func (g *Graph) SetParent(p, q Cell) {
	if r, ok := g.cells[p]; ok {
		r.Parent = q
	}
}

// MarkVisitedBy increments agentName's visit counter for p. A no-op if
// p is absent.
func (g *Graph) MarkVisitedBy(p Cell, agentName string) {
	r, ok := g.cells[p]
	if !ok {
		return
	}
	r.VisitedBy[agentName]++
}

// Clone returns a deep copy of the graph, suitable for a UI/spectator
// snapshot taken outside the caller's lock.
func (g *Graph) Clone() *Graph {
	out := New()
	for p, r := range g.cells {
		nr := &Record{
			Kind:      r.Kind,
			Neighbors: make(map[Cell]struct{}, len(r.Neighbors)),
			Status:    r.Status,
			WallCount: r.WallCount,
			Parent:    r.Parent,
			VisitedBy: make(map[string]int, len(r.VisitedBy)),
		}
		for n := range r.Neighbors {
			nr.Neighbors[n] = struct{}{}
		}
		for name, count := range r.VisitedBy {
			nr.VisitedBy[name] = count
		}
		out.cells[p] = nr
	}
	return out
}

// Len returns the number of inserted cells.
func (g *Graph) Len() int {
	return len(g.cells)
}

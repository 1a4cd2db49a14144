package mazegraph

import "testing"

func TestSymmetricEdgesRequireBothDirections(t *testing.T) {
	g := New()
	a := Cell{0, 0}
	b := Cell{1, 0}
	g.Insert(a, Nothing)
	g.Insert(b, Nothing)

	g.AddNeighbor(a, b)
	g.AddNeighbor(b, a)

	if _, ok := g.Neighbors(a)[b]; !ok {
		t.Fatalf("expected a->b edge")
	}
	if _, ok := g.Neighbors(b)[a]; !ok {
		t.Fatalf("expected b->a edge")
	}
}

func TestWallCountIsMonotone(t *testing.T) {
	g := New()
	p := Cell{0, 0}
	g.Insert(p, Nothing)

	g.RaiseWalls(p, 2)
	g.RaiseWalls(p, 1) // must not lower the count
	if got := g.Get(p).WallCount; got != 2 {
		t.Fatalf("wall count = %d, want 2 (monotone)", got)
	}
	g.RaiseWalls(p, 3)
	if got := g.Get(p).WallCount; got != 3 {
		t.Fatalf("wall count = %d, want 3", got)
	}
}

func TestDeadEndIsAbsorbing(t *testing.T) {
	g := New()
	p := Cell{0, 0}
	g.Insert(p, Nothing)
	g.SetStatus(p, DeadEnd)
	g.SetStatus(p, Visited) // callers should not do this, but even so:

	// The explorer package is responsible for never re-marking a
	// DeadEnd cell; here we only verify the primitive allows reads
	// to observe whatever was last set, and that GetStatus on an
	// absent cell always reports DeadEnd (unknown == impassable).
	if g.GetStatus(Cell{9, 9}) != DeadEnd {
		t.Fatalf("expected unknown cell to report DeadEnd")
	}
}

func TestParentDefaultsToSelf(t *testing.T) {
	g := New()
	p := Cell{3, 4}
	g.Insert(p, Nothing)
	if g.Get(p).Parent != p {
		t.Fatalf("expected a freshly inserted cell's parent to be itself")
	}
}

func TestGetStatusOfAbsentCellIsDeadEnd(t *testing.T) {
	g := New()
	if g.GetStatus(Cell{1, 1}) != DeadEnd {
		t.Fatalf("expected absent cell to report DeadEnd")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := New()
	p := Cell{0, 0}
	g.Insert(p, Nothing)
	g.MarkVisitedBy(p, "scout")

	clone := g.Clone()
	g.MarkVisitedBy(p, "scout")

	if clone.Get(p).VisitedBy["scout"] != 1 {
		t.Fatalf("clone should not observe mutations made after Clone()")
	}
	if g.Get(p).VisitedBy["scout"] != 2 {
		t.Fatalf("original graph should reflect mutations made after Clone()")
	}
}

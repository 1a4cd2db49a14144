package mazegen

import (
	"container/heap"

	"github.com/jayllyz/labyrinth/internal/mazegraph"
)

// BFSShortestPath returns the shortest path from start to goal, breaking
// ties between equally-short frontiers by visiting neighbors in the
// fixed N, S, W, E order. Returns nil if goal is unreachable.
func BFSShortestPath(m *Maze, start, goal mazegraph.Cell) []mazegraph.Cell {
	if start == goal {
		return []mazegraph.Cell{start}
	}

	visited := map[mazegraph.Cell]bool{start: true}
	parent := map[mazegraph.Cell]mazegraph.Cell{}
	queue := []mazegraph.Cell{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, n := range m.Neighbors(cur) {
			if visited[n] {
				continue
			}
			visited[n] = true
			parent[n] = cur
			if n == goal {
				return reconstruct(parent, start, goal)
			}
			queue = append(queue, n)
		}
	}
	return nil
}

func manhattan(a, b mazegraph.Cell) int {
	d := func(x, y int16) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.Row, b.Row) + d(a.Col, b.Col)
}

type pqItem struct {
	cell mazegraph.Cell
	f, g int
	seq  int // insertion order, for deterministic tie-break alongside f
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].seq < pq[j].seq
}
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// AStarShortestPath returns the shortest path from start to goal using
// the Manhattan-distance heuristic, breaking ties in N, S, W, E order
// among neighbors at equal cost. Returns nil if goal is unreachable.
func AStarShortestPath(m *Maze, start, goal mazegraph.Cell) []mazegraph.Cell {
	if start == goal {
		return []mazegraph.Cell{start}
	}

	gScore := map[mazegraph.Cell]int{start: 0}
	parent := map[mazegraph.Cell]mazegraph.Cell{}
	closed := map[mazegraph.Cell]bool{}

	pq := &priorityQueue{{cell: start, f: manhattan(start, goal), g: 0, seq: 0}}
	heap.Init(pq)
	seq := 1

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if closed[cur.cell] {
			continue
		}
		if cur.cell == goal {
			return reconstruct(parent, start, goal)
		}
		closed[cur.cell] = true

		for _, n := range m.Neighbors(cur.cell) {
			tentativeG := cur.g + 1
			if g, ok := gScore[n]; ok && g <= tentativeG {
				continue
			}
			gScore[n] = tentativeG
			parent[n] = cur.cell
			heap.Push(pq, pqItem{cell: n, f: tentativeG + manhattan(n, goal), g: tentativeG, seq: seq})
			seq++
		}
	}
	return nil
}

func reconstruct(parent map[mazegraph.Cell]mazegraph.Cell, start, goal mazegraph.Cell) []mazegraph.Cell {
	path := []mazegraph.Cell{goal}
	cur := goal
	for cur != start {
		cur = parent[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Package mazegen generates the server-side maze with the sidewinder
// algorithm and answers shortest-path queries against it, both for
// placing a reachable goal and for the optional round-length oracle.
package mazegen

import (
	"math/rand"

	"github.com/jayllyz/labyrinth/internal/mazegraph"
)

// Maze is a (2w+1)x(2h+1) grid: interior cells sit at odd coordinates,
// walls at even coordinates. Width/Height are the interior cell counts.
type Maze struct {
	Width, Height int
	Entry, Exit   mazegraph.Cell

	// open[r][c] reports whether the wall/cell at grid position (r, c)
	// (0 <= r < 2*Height+1, 0 <= c < 2*Width+1) is passable: interior
	// cells are always open, wall positions are open only where the
	// generator carved through.
	open [][]bool
}

func gridRows(h int) int { return 2*h + 1 }
func gridCols(w int) int { return 2*w + 1 }

func cellRow(c mazegraph.Cell) int { return int(c.Row)*2 + 1 }
func cellCol(c mazegraph.Cell) int { return int(c.Col)*2 + 1 }

// Generate builds a width x height maze with the sidewinder algorithm.
// Identical seeds produce identical mazes. Entry and exit are chosen
// uniformly on the west and east interior rows respectively.
func Generate(width, height int, seed int64) *Maze {
	rng := rand.New(rand.NewSource(seed))

	rows, cols := gridRows(height), gridCols(width)
	open := make([][]bool, rows)
	for r := range open {
		open[r] = make([]bool, cols)
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			open[2*row+1][2*col+1] = true
		}
	}

	for row := 0; row < height; row++ {
		runStart := 0
		for col := 0; col < width; col++ {
			atEastWall := col == width-1
			carveEast := !atEastWall && (row == 0 || rng.Intn(2) == 0)

			if carveEast {
				open[2*row+1][2*col+2] = true
				continue
			}

			if row > 0 {
				runCol := runStart + rng.Intn(col-runStart+1)
				open[2*row][2*runCol+1] = true
			}
			runStart = col + 1
		}
	}

	entryRow := rng.Intn(height)
	exitRow := rng.Intn(height)
	m := &Maze{
		Width:  width,
		Height: height,
		Entry:  mazegraph.Cell{Row: int16(entryRow), Col: 0},
		Exit:   mazegraph.Cell{Row: int16(exitRow), Col: int16(width - 1)},
		open:   open,
	}
	return m
}

// InBounds reports whether c is an interior cell of the maze.
func (m *Maze) InBounds(c mazegraph.Cell) bool {
	return c.Row >= 0 && int(c.Row) < m.Height && c.Col >= 0 && int(c.Col) < m.Width
}

// direction order used to break shortest-path ties: N, S, W, E.
var tieBreakOrder = []mazegraph.Cell{
	{Row: -1, Col: 0}, // N
	{Row: 1, Col: 0},  // S
	{Row: 0, Col: -1}, // W
	{Row: 0, Col: 1},  // E
}

// Neighbors returns c's passable interior neighbors, in N, S, W, E order.
func (m *Maze) Neighbors(c mazegraph.Cell) []mazegraph.Cell {
	var out []mazegraph.Cell
	r, col := cellRow(c), cellCol(c)
	for _, d := range tieBreakOrder {
		n := mazegraph.Cell{Row: c.Row + d.Row, Col: c.Col + d.Col}
		if !m.InBounds(n) {
			continue
		}
		wallRow, wallCol := r+int(d.Row), col+int(d.Col)
		if m.open[wallRow][wallCol] {
			out = append(out, n)
		}
	}
	return out
}

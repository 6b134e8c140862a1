package core

// Cell is a single tile of the transcoded map.
// Type: terrain code, 0 = empty, 2 = general, 3 = city.
// Owner: 0 means neutral; player ordinal i is stored as i+1.
// Army: number of units on that tile.
type Cell struct {
	Type  int
	Owner int
	Army  int
}

const (
	TileEmpty   = 0
	TileGeneral = 2
	TileCity    = 3
	NeutralID   = 0
)

func (c Cell) IsEmpty() bool { return c.Type == TileEmpty && c.Owner == NeutralID && c.Army == 0 }
func (c Cell) IsCity() bool  { return c.Type == TileCity }

// Triple returns the [terrain, owner, army] encoding of the cell
func (c Cell) Triple() [3]int {
	return [3]int{c.Type, c.Owner, c.Army}
}

// Grid holds the map cells in row-major order.
// Rows() exposes them as [row][col].
type Grid struct {
	W, H int
	C    []Cell // length = W*H
}

func NewGrid(w, h int) *Grid {
	return &Grid{W: w, H: h, C: make([]Cell, w*h)}
}

// Cell returns the cell at the coordinate. The coordinate must be in bounds.
func (g *Grid) Cell(c Coordinate) Cell {
	return g.C[c.ToIndex(g.W)]
}

// Set overwrites the cell at the given tile index
func (g *Grid) Set(idx int, c Cell) error {
	if idx < 0 || idx >= len(g.C) {
		return ErrInvalidCoordinates
	}
	g.C[idx] = c
	return nil
}

// Rows returns the cells as [row][col] slices sharing the grid's storage
func (g *Grid) Rows() [][]Cell {
	rows := make([][]Cell, g.H)
	for y := 0; y < g.H; y++ {
		rows[y] = g.C[y*g.W : (y+1)*g.W]
	}
	return rows
}

// Codes returns the scalar terrain codes as [row][col]
func (g *Grid) Codes() [][]int {
	out := make([][]int, g.H)
	for y, row := range g.Rows() {
		out[y] = make([]int, len(row))
		for x, c := range row {
			out[y][x] = c.Type
		}
	}
	return out
}

// Triples returns the [terrain, owner, army] encoding as [row][col]
func (g *Grid) Triples() [][][3]int {
	out := make([][][3]int, g.H)
	for y, row := range g.Rows() {
		out[y] = make([][3]int, len(row))
		for x, c := range row {
			out[y][x] = c.Triple()
		}
	}
	return out
}

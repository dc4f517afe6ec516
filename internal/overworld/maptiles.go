package overworld

import (
	"github.com/scawful/yaze-go/internal/gfx"
	"github.com/scawful/yaze-go/internal/rom"
	"github.com/scawful/yaze-go/internal/yzerr"
)

// World selects which of the three tilemap layers is being addressed.
type World int

const (
	LightWorld World = iota
	DarkWorld
	SpecialWorld
)

// GridDim is the width/height in tile16 cells of a world's full tilemap
// (spec.md §3.1: each area is a 32x32 tile16 grid, and a world's 0x40
// areas are arranged 8 wide and 8 high, so 8*32 cells per side).
const GridDim = 256

// MapTiles holds the three 256x256 tile16-id grids that are the source
// of truth for painting (spec.md C5).
type MapTiles struct {
	Layers [3][GridDim][GridDim]uint16
}

// NewMapTiles constructs an empty, all-zero set of tilemap layers.
func NewMapTiles() *MapTiles {
	return &MapTiles{}
}

// GetTile returns the tile16 id at grid coordinates, clamping
// out-of-range coordinates to the nearest valid cell rather than
// faulting (spec.md §6.4: "indices are clamped").
func (m *MapTiles) GetTile(world World, x, y int) uint16 {
	x, y = clampGrid(x), clampGrid(y)
	return m.Layers[world][y][x]
}

// SetTile sets the tile16 id at grid coordinates; indices are clamped,
// never an error (spec.md §6.4).
func (m *MapTiles) SetTile(world World, x, y int, tile16ID uint16) {
	x, y = clampGrid(x), clampGrid(y)
	m.Layers[world][y][x] = tile16ID
}

func clampGrid(v int) int {
	if v < 0 {
		return 0
	}
	if v >= GridDim {
		return GridDim - 1
	}
	return v
}

// AreaGrid extracts one area's 32x32 sub-grid (spec.md §3.1: each area
// is a 32x32 tile16 grid) given its world and local grid position.
func (m *MapTiles) AreaGrid(world World, areaGX, areaGY int) [32][32]uint16 {
	var grid [32][32]uint16
	baseX, baseY := areaGX*32, areaGY*32
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			grid[y][x] = m.Layers[world][baseY+y][baseX+x]
		}
	}
	return grid
}

// SetAreaGrid writes one area's 32x32 sub-grid back into the layer.
func (m *MapTiles) SetAreaGrid(world World, areaGX, areaGY int, grid [32][32]uint16) {
	baseX, baseY := areaGX*32, areaGY*32
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			m.Layers[world][baseY+y][baseX+x] = grid[y][x]
		}
	}
}

// Tile32Table is the deduplicated table of tile16-quad patterns used by
// the map layers (spec.md §3.2/§3.3). Entries are ordered by first use
// so a save is deterministic.
type Tile32Table struct {
	entries []gfx.Tile32
	index   map[gfx.Tile32]int
}

// NewTile32Table constructs an empty table.
func NewTile32Table() *Tile32Table {
	return &Tile32Table{index: make(map[gfx.Tile32]int)}
}

// Intern returns the index of q, inserting it (ordered by first use) if
// it is not already present.
func (t *Tile32Table) Intern(q gfx.Tile32) int {
	if idx, ok := t.index[q]; ok {
		return idx
	}
	idx := len(t.entries)
	t.entries = append(t.entries, q)
	t.index[q] = idx
	return idx
}

// Entries returns the table in insertion order.
func (t *Tile32Table) Entries() []gfx.Tile32 { return t.entries }

// Len returns the number of unique tile32 patterns.
func (t *Tile32Table) Len() int { return len(t.entries) }

// MaxTile32Entries bounds how many unique tile32 patterns fit in the
// ROM's tile32 table region; exceeding it is an Encoding failure on
// save (spec.md §3.3, B3).
const MaxTile32Entries = 0x2000

// tile32TableAddr is where the encoded tile32 table lands on save,
// parked clear of the entity tables in entities.go (spec.md §6.1): like
// those tables, the exact vanilla/ZCO address isn't present in the
// filtered reference source, so this is the engine's own constant.
const tile32TableAddr = 0x0FA000

// EncodeTile32Table writes table back to r as eight fixed-stride
// parallel byte planes -- t0_lo, t0_hi, t1_lo, t1_hi, t2_lo, t2_hi,
// t3_lo, t3_hi -- one byte per entry, each plane MaxTile32Entries wide
// regardless of how many entries are actually in use (spec.md §6.1's
// on-disk format, §4.8 "write the tile32 table"). Unused trailing slots
// are zero-filled so the table's address and size never depend on
// content.
func EncodeTile32Table(r *rom.ROM, table *Tile32Table) error {
	entries := table.Entries()
	if len(entries) > MaxTile32Entries {
		return yzerr.Newf(yzerr.Encoding, "EncodeTile32Table", "tile32 table overflow: %d exceeds %d unique patterns", len(entries), MaxTile32Entries)
	}

	planes := [8]func(gfx.Tile32) uint8{
		func(q gfx.Tile32) uint8 { return uint8(q.T0) },
		func(q gfx.Tile32) uint8 { return uint8(q.T0 >> 8) },
		func(q gfx.Tile32) uint8 { return uint8(q.T1) },
		func(q gfx.Tile32) uint8 { return uint8(q.T1 >> 8) },
		func(q gfx.Tile32) uint8 { return uint8(q.T2) },
		func(q gfx.Tile32) uint8 { return uint8(q.T2 >> 8) },
		func(q gfx.Tile32) uint8 { return uint8(q.T3) },
		func(q gfx.Tile32) uint8 { return uint8(q.T3 >> 8) },
	}

	for plane, extract := range planes {
		base := tile32TableAddr + plane*MaxTile32Entries
		for i := 0; i < MaxTile32Entries; i++ {
			var b uint8
			if i < len(entries) {
				b = extract(entries[i])
			}
			if err := r.WriteByte(base+i, b); err != nil {
				return err
			}
		}
	}
	return nil
}

// BuildTile32Table recomputes the deduplicated tile32 table from
// scratch by scanning every area's 32x32 tile16 grid in 2x2 quads
// (spec.md §3.4: "no incremental form").
func BuildTile32Table(m *MapTiles) (*Tile32Table, error) {
	table := NewTile32Table()
	for world := 0; world < 3; world++ {
		for qy := 0; qy < GridDim/2; qy++ {
			for qx := 0; qx < GridDim/2; qx++ {
				t0 := m.Layers[world][qy*2][qx*2]
				t1 := m.Layers[world][qy*2][qx*2+1]
				t2 := m.Layers[world][qy*2+1][qx*2]
				t3 := m.Layers[world][qy*2+1][qx*2+1]
				table.Intern(gfx.Tile32{T0: t0, T1: t1, T2: t2, T3: t3})
				if table.Len() > MaxTile32Entries {
					return nil, yzerr.Newf(yzerr.Encoding, "BuildTile32Table", "tile32 table overflow: exceeds %d unique patterns", MaxTile32Entries)
				}
			}
		}
	}
	return table, nil
}

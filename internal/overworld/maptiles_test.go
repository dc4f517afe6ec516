package overworld

import (
	"testing"

	"github.com/scawful/yaze-go/internal/gfx"
)

func TestGetSetTile_ClampsOutOfRange(t *testing.T) {
	m := NewMapTiles()
	m.SetTile(LightWorld, -5, 400, 0x42)
	if got := m.GetTile(LightWorld, -1, 9999); got != 0x42 {
		t.Errorf("clamped GetTile = 0x%X, want 0x42", got)
	}
}

func TestAreaGrid_RoundTrip(t *testing.T) {
	m := NewMapTiles()
	var grid [32][32]uint16
	grid[0][0] = 1
	grid[31][31] = 2
	m.SetAreaGrid(DarkWorld, 2, 3, grid)

	got := m.AreaGrid(DarkWorld, 2, 3)
	if got[0][0] != 1 || got[31][31] != 2 {
		t.Fatalf("AreaGrid round trip mismatch: %+v", got)
	}

	// A neighboring area grid must be untouched.
	other := m.AreaGrid(DarkWorld, 3, 3)
	if other[0][0] != 0 {
		t.Errorf("neighboring area grid leaked data: %+v", other[0][0])
	}
}

func TestTile32Table_InternDedups(t *testing.T) {
	table := NewTile32Table()
	q := gfx.Tile32{T0: 1, T1: 2, T2: 3, T3: 4}
	i1 := table.Intern(q)
	i2 := table.Intern(q)
	if i1 != i2 {
		t.Errorf("Intern of identical quad returned different indices: %d vs %d", i1, i2)
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}

	table.Intern(gfx.Tile32{T0: 9})
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2 after distinct insert", table.Len())
	}
}

func TestBuildTile32Table_OverflowIsEncodingError(t *testing.T) {
	m := NewMapTiles()
	// Force every 2x2 quad across all three worlds to be unique so the
	// table exceeds MaxTile32Entries.
	id := uint16(0)
	for w := 0; w < 3; w++ {
		for y := 0; y < GridDim; y++ {
			for x := 0; x < GridDim; x++ {
				m.Layers[w][y][x] = id
				id++
			}
		}
	}
	if _, err := BuildTile32Table(m); err == nil {
		t.Fatalf("expected Encoding error on tile32 overflow")
	}
}

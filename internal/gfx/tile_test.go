package gfx

import "testing"

func TestDecodeTile8_AllZeroIsTransparent(t *testing.T) {
	data := make([]byte, 32)
	tile, err := DecodeTile8(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, px := range tile.Pixels {
		if px != 0 {
			t.Fatalf("pixel %d = %d, want 0", i, px)
		}
	}
}

func TestDecodeTile8_KnownPattern(t *testing.T) {
	data := make([]byte, 32)
	// Row 0: plane0 byte = 0xFF (all bit0 set), others 0 -> every pixel value 1.
	data[0] = 0xFF
	tile, err := DecodeTile8(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for x := 0; x < 8; x++ {
		if tile.Pixels[x] != 1 {
			t.Errorf("row0 col%d = %d, want 1", x, tile.Pixels[x])
		}
	}
}

func TestSubTileWord_RoundTrip(t *testing.T) {
	cases := []SubTile{
		{TileID: 0x123, Palette: 5, Priority: true, HFlip: false, VFlip: true},
		{TileID: 0x3FF, Palette: 7, Priority: true, HFlip: true, VFlip: true},
		{TileID: 0, Palette: 0},
	}
	for _, c := range cases {
		word := EncodeSubTileWord(c)
		back := DecodeSubTileWord(word)
		if back != c {
			t.Errorf("round trip mismatch: %+v -> 0x%04X -> %+v", c, word, back)
		}
	}
}

func TestRenderTile16_BothFlipsRotate180(t *testing.T) {
	data := make([]byte, SheetBytes)
	// tile index 0: set pixel (0,0) distinctly via plane bits.
	data[0] = 0x80 // bit7 of row0 plane0 -> pixel (x=0,y=0) = 1
	sheet, err := DecodeSheet(0, data)
	if err != nil {
		t.Fatalf("DecodeSheet: %v", err)
	}
	sheets := [4]*Sheet{sheet, nil, nil, nil}

	sub := SubTile{TileID: 0, HFlip: true, VFlip: true}
	t16 := Tile16{TopLeft: sub}
	cell := RenderTile16(t16, sheets)

	// Original tile has pixel value at (0,0); after 180 rotation it
	// should land at (7,7) within the quadrant.
	if cell[7*16+7] == 0 {
		t.Errorf("expected rotated pixel to be nonzero at (7,7)")
	}
	if cell[0*16+0] != 0 {
		t.Errorf("expected (0,0) to be transparent after rotation, got %d", cell[0*16+0])
	}
}

func TestRenderTile16_OutOfRangeTileIsTransparent(t *testing.T) {
	sheets := [4]*Sheet{nil, nil, nil, nil}
	t16 := Tile16{TopLeft: SubTile{TileID: 999}}
	cell := RenderTile16(t16, sheets)
	for i, px := range cell {
		if px != 0 {
			t.Fatalf("pixel %d = %d, want 0 (no-fault degrade)", i, px)
		}
	}
}

func TestBuildBlockset_UpdateInPlace(t *testing.T) {
	data := make([]byte, SheetBytes)
	sheet, _ := DecodeSheet(0, data)
	sheets := [4]*Sheet{sheet, sheet, sheet, sheet}

	defs := make([]Tile16, 9)
	atlas := BuildBlockset(defs, sheets)
	if atlas.Width != BlocksetTilesAcross*16 {
		t.Fatalf("unexpected atlas width %d", atlas.Width)
	}
	if atlas.Height != 2*16 {
		t.Fatalf("expected 2 rows for 9 tile16s, got height %d", atlas.Height)
	}

	if err := atlas.UpdateBlocksetTile(8, Tile16{}, sheets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := atlas.UpdateBlocksetTile(100, Tile16{}, sheets); err == nil {
		t.Fatalf("expected out-of-bounds error")
	}
}

package gfx

import "github.com/scawful/yaze-go/internal/yzerr"

// TilesPerSheet is the number of 8x8 tiles packed into one graphics sheet.
const TilesPerSheet = 64

// SheetBytes is the size in bytes of one 4bpp planar sheet
// (64 tiles * 32 bytes/tile).
const SheetBytes = TilesPerSheet * 32

// Tile8 is an 8x8 indexed-color tile; each pixel is 0-15 into a
// 16-color palette row. Index 0 is transparent.
type Tile8 struct {
	Pixels [64]uint8 // row-major, y*8+x
}

// DecodeTile8 expands one 32-byte 4bpp-planar tile into indexed pixels.
// SNES 4bpp tiles store two bitplane pairs: the first 16 bytes
// interleave bitplanes 0 and 1 one row at a time, the next 16 bytes
// interleave bitplanes 2 and 3 the same way.
func DecodeTile8(data []byte) (Tile8, error) {
	if len(data) < 32 {
		return Tile8{}, yzerr.Newf(yzerr.Decode, "DecodeTile8", "need 32 bytes, got %d", len(data))
	}
	var t Tile8
	for row := 0; row < 8; row++ {
		p0 := data[row*2]
		p1 := data[row*2+1]
		p2 := data[16+row*2]
		p3 := data[16+row*2+1]
		for col := 0; col < 8; col++ {
			bit := 7 - col
			b0 := (p0 >> bit) & 1
			b1 := (p1 >> bit) & 1
			b2 := (p2 >> bit) & 1
			b3 := (p3 >> bit) & 1
			t.Pixels[row*8+col] = b0 | (b1 << 1) | (b2 << 2) | (b3 << 3)
		}
	}
	return t, nil
}

// Sheet is one decoded graphics sheet: 64 tile8s, laid out 16 across
// by 4 down in a 128x32 indexed bitmap (spec.md §4.4).
type Sheet struct {
	ID     int
	Width  int
	Height int
	Pixels []uint8 // Width*Height, row-major
}

const (
	SheetTilesAcross = 16
	SheetTilesDown   = 4
	SheetWidth       = SheetTilesAcross * 8
	SheetHeight      = SheetTilesDown * 8
)

// SheetTableAddr is the PC offset of the first decompressed graphics
// sheet; sheets are addressed by id*SheetBytes from here once
// decompressed out of their own LZ-compressed pointer table (outside
// this package's scope — see the black-box screen codec in package
// overworld).
const SheetTableAddr = 0x90000

// MaxSheets bounds how many distinct graphics sheets an area-graphics
// slot can reference (spec.md §4.4).
const MaxSheets = 0xC3

// DecodeSheet decodes all 64 tiles of one sheet into a single indexed bitmap.
func DecodeSheet(id int, data []byte) (*Sheet, error) {
	if len(data) < SheetBytes {
		return nil, yzerr.Newf(yzerr.Decode, "DecodeSheet", "sheet %d needs %d bytes, got %d", id, SheetBytes, len(data))
	}
	s := &Sheet{ID: id, Width: SheetWidth, Height: SheetHeight, Pixels: make([]uint8, SheetWidth*SheetHeight)}
	for tileIdx := 0; tileIdx < TilesPerSheet; tileIdx++ {
		tile, err := DecodeTile8(data[tileIdx*32 : tileIdx*32+32])
		if err != nil {
			return nil, err
		}
		tx := (tileIdx % SheetTilesAcross) * 8
		ty := (tileIdx / SheetTilesAcross) * 8
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				s.Pixels[(ty+y)*s.Width+(tx+x)] = tile.Pixels[y*8+x]
			}
		}
	}
	return s, nil
}

// Tile8At extracts tile tileIdx (0-63) as a standalone Tile8 from a
// decoded sheet, returning a solid-index-0 tile if out of range (the
// hot per-pixel "no fault" rule of spec.md §4.4).
func (s *Sheet) Tile8At(tileIdx int) Tile8 {
	var t Tile8
	if tileIdx < 0 || tileIdx >= TilesPerSheet {
		return t
	}
	tx := (tileIdx % SheetTilesAcross) * 8
	ty := (tileIdx / SheetTilesAcross) * 8
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			t.Pixels[y*8+x] = s.Pixels[(ty+y)*s.Width+(tx+x)]
		}
	}
	return t
}

// SubTile is the canonical in-memory form of one tile16 quadrant
// (Open Question 3, SPEC_FULL.md §9): unpacked fields rather than the
// packed ROM bitfield word.
type SubTile struct {
	TileID   uint16 // 10 bits
	Palette  uint8  // 3 bits
	Priority bool
	HFlip    bool
	VFlip    bool
}

// DecodeSubTileWord unpacks one ROM-format 16-bit tile16 sub-tile word:
// bitfields {tile8_id:10, palette:3, priority:1, h_flip:1, v_flip:1}.
func DecodeSubTileWord(word uint16) SubTile {
	return SubTile{
		TileID:   word & 0x03FF,
		Palette:  uint8((word >> 10) & 0x07),
		Priority: (word>>13)&1 != 0,
		HFlip:    (word>>14)&1 != 0,
		VFlip:    (word>>15)&1 != 0,
	}
}

// EncodeSubTileWord packs a SubTile back into ROM format.
func EncodeSubTileWord(s SubTile) uint16 {
	word := s.TileID & 0x03FF
	word |= uint16(s.Palette&0x07) << 10
	if s.Priority {
		word |= 1 << 13
	}
	if s.HFlip {
		word |= 1 << 14
	}
	if s.VFlip {
		word |= 1 << 15
	}
	return word
}

// Tile16 is a 16x16 cell composed of four 8x8 sub-tiles: top-left,
// top-right, bottom-left, bottom-right.
type Tile16 struct {
	TopLeft, TopRight, BottomLeft, BottomRight SubTile
}

// Tile32 stores only the four constituent tile16 IDs of a 32x32 cell.
type Tile32 struct {
	T0, T1, T2, T3 uint16
}

// Tile16DefAddr is the PC offset of the tile16 definition table: four
// packed sub-tile words per entry, in TopLeft/TopRight/BottomLeft/
// BottomRight order (spec.md §4.8 "write the tile16 definitions").
const Tile16DefAddr = 0x78000

// MaxTile16Defs bounds how many tile16 definitions the ROM's tile16
// table region holds (spec.md §3.3 "a few hundred").
const MaxTile16Defs = 0x200

// romReader is the minimal surface tile.go needs from rom.ROM, kept
// local to avoid an import cycle (package rom never imports gfx).
type romReader interface {
	ReadWord(pc int) (uint16, error)
}

type romWriter interface {
	WriteWord(pc int, value uint16) error
}

// DecodeTile16Defs reads count tile16 definitions starting at baseAddr.
func DecodeTile16Defs(r romReader, baseAddr, count int) ([]Tile16, error) {
	defs := make([]Tile16, count)
	for i := 0; i < count; i++ {
		addr := baseAddr + i*8
		words := [4]uint16{}
		for w := 0; w < 4; w++ {
			word, err := r.ReadWord(addr + w*2)
			if err != nil {
				return nil, yzerr.Wrap(yzerr.Decode, "DecodeTile16Defs", err)
			}
			words[w] = word
		}
		defs[i] = Tile16{
			TopLeft:     DecodeSubTileWord(words[0]),
			TopRight:    DecodeSubTileWord(words[1]),
			BottomLeft:  DecodeSubTileWord(words[2]),
			BottomRight: DecodeSubTileWord(words[3]),
		}
	}
	return defs, nil
}

// EncodeTile16Defs writes defs back starting at baseAddr, the inverse
// of DecodeTile16Defs.
func EncodeTile16Defs(w romWriter, baseAddr int, defs []Tile16) error {
	for i, t16 := range defs {
		addr := baseAddr + i*8
		words := [4]uint16{
			EncodeSubTileWord(t16.TopLeft),
			EncodeSubTileWord(t16.TopRight),
			EncodeSubTileWord(t16.BottomLeft),
			EncodeSubTileWord(t16.BottomRight),
		}
		for wi, word := range words {
			if err := w.WriteWord(addr+wi*2, word); err != nil {
				return yzerr.Wrap(yzerr.Encoding, "EncodeTile16Defs", err)
			}
		}
	}
	return nil
}

// RenderTile16 composes one 16x16 indexed cell from the area's four
// chosen sheets and a palette row offset (3-bit palette field times
// 16, per the tile16 ROM encoding). Both flip flags are honored
// simultaneously when both are set (180-degree rotation), and a
// sub-tile referencing a tile8 beyond the sheet set degrades to a
// solid transparent cell rather than faulting (spec.md §4.4 tie-breaks).
func RenderTile16(t Tile16, sheets [4]*Sheet) [16 * 16]uint8 {
	var out [16 * 16]uint8
	quadrants := [4]struct {
		sub  SubTile
		ox   int
		oy   int
	}{
		{t.TopLeft, 0, 0},
		{t.TopRight, 8, 0},
		{t.BottomLeft, 0, 8},
		{t.BottomRight, 8, 8},
	}
	for _, q := range quadrants {
		tile := lookupSubTileTile8(q.sub, sheets)
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				sx, sy := x, y
				if q.sub.HFlip {
					sx = 7 - x
				}
				if q.sub.VFlip {
					sy = 7 - y
				}
				px := tile.Pixels[sy*8+sx]
				if px != 0 {
					px += q.sub.Palette * 16
				}
				out[(q.oy+y)*16+(q.ox+x)] = px
			}
		}
	}
	return out
}

func lookupSubTileTile8(sub SubTile, sheets [4]*Sheet) Tile8 {
	sheetIdx := int(sub.TileID) / TilesPerSheet
	tileIdx := int(sub.TileID) % TilesPerSheet
	if sheetIdx < 0 || sheetIdx >= len(sheets) || sheets[sheetIdx] == nil {
		return Tile8{}
	}
	return sheets[sheetIdx].Tile8At(tileIdx)
}

// Blockset is the rendered atlas holding every tile16 of one area's
// graphics set, one 16x16 cell per tile16 id, 8 cells across.
const BlocksetTilesAcross = 8

type Blockset struct {
	Width, Height int
	Pixels        []uint8
}

// BuildBlockset renders every tile16 in tile16s into one atlas image.
func BuildBlockset(tile16s []Tile16, sheets [4]*Sheet) *Blockset {
	n := len(tile16s)
	rows := (n + BlocksetTilesAcross - 1) / BlocksetTilesAcross
	if rows == 0 {
		rows = 1
	}
	b := &Blockset{
		Width:  BlocksetTilesAcross * 16,
		Height: rows * 16,
		Pixels: make([]uint8, BlocksetTilesAcross*16*rows*16),
	}
	for i, t16 := range tile16s {
		cell := RenderTile16(t16, sheets)
		cx := (i % BlocksetTilesAcross) * 16
		cy := (i / BlocksetTilesAcross) * 16
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				b.Pixels[(cy+y)*b.Width+(cx+x)] = cell[y*16+x]
			}
		}
	}
	return b
}

// UpdateBlocksetTile re-renders a single tile16's cell in place,
// without rebuilding the whole atlas (spec.md §4.4 "pending tile
// changes" / per-tile live update).
func (b *Blockset) UpdateBlocksetTile(tile16Index int, t16 Tile16, sheets [4]*Sheet) error {
	cellsAcross := b.Width / 16
	cx := (tile16Index % cellsAcross) * 16
	cy := (tile16Index / cellsAcross) * 16
	if cy+16 > b.Height {
		return yzerr.Newf(yzerr.InvalidArgument, "Blockset.UpdateBlocksetTile", "tile16 index %d out of atlas bounds", tile16Index)
	}
	cell := RenderTile16(t16, sheets)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			b.Pixels[(cy+y)*b.Width+(cx+x)] = cell[y*16+x]
		}
	}
	return nil
}

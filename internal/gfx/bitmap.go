package gfx

import (
	"bytes"
	"image"
	"image/color"

	"golang.org/x/image/bmp"
)

// AreaDim is the pixel size of one composed area (spec.md §3.1): a
// 256x256 display region backed by a 32x32 grid of tile16 cells.
const AreaDim = 256

// Bitmap is a composed, palettized image plus the palette it was built
// against; Index values that fall outside the palette never occur if
// the caller used ComposeAreaBitmap (invariant I4).
type Bitmap struct {
	Img *image.Paletted
}

// EncodeBMP serializes the bitmap for debug dumps (SPEC_FULL.md §3's
// golang.org/x/image/bmp wiring); not used on any hot path.
func (b *Bitmap) EncodeBMP() ([]byte, error) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, b.Img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func paletteToColorPalette(p [256]Color) color.Palette {
	cp := make(color.Palette, 256)
	for i, c := range p {
		cp[i] = c
	}
	return cp
}

// ComposeAreaBitmap renders a 32x32 tile16-id grid into a 256x256
// palettized bitmap using the area's four chosen sheets and composed
// working palette. Index 0 is transparent wherever a sub-tile's source
// pixel was transparent (invariant I4).
func ComposeAreaBitmap(tile16Grid [32][32]uint16, tile16Defs []Tile16, sheets [4]*Sheet, palette [256]Color) *Bitmap {
	img := image.NewPaletted(image.Rect(0, 0, AreaDim, AreaDim), paletteToColorPalette(palette))

	for gy := 0; gy < 32; gy++ {
		for gx := 0; gx < 32; gx++ {
			id := int(tile16Grid[gy][gx])
			var t16 Tile16
			if id >= 0 && id < len(tile16Defs) {
				t16 = tile16Defs[id]
			}
			cell := RenderTile16(t16, sheets)
			px, py := gx*16, gy*16
			for y := 0; y < 16; y++ {
				for x := 0; x < 16; x++ {
					img.SetColorIndex(px+x, py+y, cell[y*16+x])
				}
			}
		}
	}
	return &Bitmap{Img: img}
}

// UpdateAreaBitmapRegion repaints the single 16x16 cell at grid (gx,gy)
// in place, matching spec.md scenario 2 (SetTile must not trigger a
// full rebuild).
func UpdateAreaBitmapRegion(b *Bitmap, gx, gy int, t16 Tile16, sheets [4]*Sheet) {
	cell := RenderTile16(t16, sheets)
	px, py := gx*16, gy*16
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			b.Img.SetColorIndex(px+x, py+y, cell[y*16+x])
		}
	}
}

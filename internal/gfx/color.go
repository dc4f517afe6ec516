// Package gfx implements the 4bpp tile decoding and palette composition
// pipeline (spec.md C3/C4): tile8 bitplane expansion, tile16/tile32
// compositing, blockset atlas assembly, and the palette engine that
// feeds all of it.
package gfx

import "image/color"

// Color is an SNES 15-bit BGR color: three 5-bit channels. Index 0 of
// any palette is conventionally transparent in composed bitmaps.
type Color struct {
	R, G, B uint8 // 0-31
}

// RGBA implements color.Color by scaling 5-bit channels to 16-bit.
func (c Color) RGBA() (r, g, b, a uint32) {
	scale := func(v uint8) uint32 {
		v5 := uint32(v) & 0x1F
		v8 := (v5 << 3) | (v5 >> 2)
		return v8 * 0x101
	}
	return scale(c.R), scale(c.G), scale(c.B), 0xFFFF
}

// ToRGB888 converts to 8-bit-per-channel RGB, matching the public API's
// yaze_snes_color_to_rgb.
func (c Color) ToRGB888() (r, g, b uint8) {
	expand := func(v uint8) uint8 {
		v5 := v & 0x1F
		return (v5 << 3) | (v5 >> 2)
	}
	return expand(c.R), expand(c.G), expand(c.B)
}

// FromRGB888 builds a Color from 8-bit channels, matching
// yaze_rgb_to_snes_color.
func FromRGB888(r, g, b uint8) Color {
	return Color{R: r >> 3, G: g >> 3, B: b >> 3}
}

// DecodeColorWord unpacks a little-endian 15-bit BGR555 word as stored
// in CGRAM/ROM palette tables: bit15 unused, bbbbb ggggg rrrrr.
func DecodeColorWord(word uint16) Color {
	return Color{
		R: uint8(word & 0x1F),
		G: uint8((word >> 5) & 0x1F),
		B: uint8((word >> 10) & 0x1F),
	}
}

// EncodeColorWord packs a Color back into a 15-bit BGR555 word.
func EncodeColorWord(c Color) uint16 {
	return uint16(c.R&0x1F) | uint16(c.G&0x1F)<<5 | uint16(c.B&0x1F)<<10
}

var _ color.Color = Color{}

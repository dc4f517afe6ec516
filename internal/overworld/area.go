package overworld

import (
	"github.com/scawful/yaze-go/internal/gfx"
	"github.com/scawful/yaze-go/internal/rom"
)

// AreaCount is the number of area records in the overworld: 0x40 each
// for the light and dark worlds plus 0x20 for the half-sized special
// world (spec.md §3.1).
const AreaCount = 0xA0

// AreaSize is the area's footprint in the world grid.
type AreaSize int

const (
	SizeSmall AreaSize = iota
	SizeLarge
	SizeWide
	SizeTall
)

// SelfParent is the sentinel parent id meaning "not part of a
// multi-area group" (spec.md §3.3).
const SelfParent = 0xFF

// deathMountainOverride pins area_graphics slot 7 for the Death
// Mountain areas regardless of the generic area-graphics table
// (SPEC_FULL.md §5, ported verbatim from overworld_regression_test.cc).
var deathMountainOverride = map[int]uint8{
	0x03: 0x59, // light world
	0x45: 0x59, // dark world mirror
}

const deathMountainDefaultGFX = 0x5B

// AreaRecord is one of the 0xA0 per-area records (spec.md §3.2/§4.6).
// Fields not supported by the ROM's detected version are left at their
// zero value and never read by version-gated accessors.
type AreaRecord struct {
	ID int

	Parent       uint8
	LargeMapFlag bool // legacy vanilla/v1/v2 flag: true if part of a 2x2 large map
	Size         AreaSize

	AreaGraphics [8]uint8 // 8 static-graphics slots, slot 7 carries the Death Mountain override
	AreaPalette  uint8
	MainPalette  uint8 // v2+

	SpriteGraphics [3]uint8 // per game-state (0/1/2)
	SpritePalette  [3]uint8

	MessageID uint16
	Music     [4]uint8

	MosaicDirs  [4]bool // N,E,S,W; vanilla/v1 only use index 0
	BGColor     *gfx.Color // v2+, nil if not set
	CustomTileset [8]uint8 // v3+
	AnimatedGFX   uint8    // v3+
	SubscreenOverlay uint16 // v3+
}

// StaticGraphics returns area_graphics slot i, applying the Death
// Mountain override to slot 7 (SPEC_FULL.md §5).
func (a *AreaRecord) StaticGraphics(i int) uint8 {
	if i == 7 {
		if v, ok := deathMountainOverride[a.ID]; ok {
			return v
		}
		return deathMountainDefaultGFX
	}
	if i < 0 || i >= len(a.AreaGraphics) {
		return 0
	}
	return a.AreaGraphics[i]
}

// EffectiveSize resolves Open Question 1 (SPEC_FULL.md/spec.md §9): on
// v3 ROMs the explicit size enum wins; on Vanilla/v1/v2 the legacy
// large-map flag wins (Small or Large only, per spec.md §3.3).
func (a *AreaRecord) EffectiveSize(v Version) AreaSize {
	if SupportsAreaEnum(v) {
		return a.Size
	}
	if a.LargeMapFlag {
		return SizeLarge
	}
	return SizeSmall
}

// EffectiveParent resolves the parent id, treating SelfParent as "this
// area owns itself" (spec.md §3.3).
func (a *AreaRecord) EffectiveParent() int {
	if a.Parent == SelfParent {
		return a.ID
	}
	return int(a.Parent)
}

// WorldOf returns which of the 3 worlds (0=light,1=dark,2=special) an
// area id belongs to.
func WorldOf(areaID int) int { return areaID / 0x40 }

// LocalOf returns an area id's position within its own world (0..0x3F).
func LocalOf(areaID int) int { return areaID % 0x40 }

// Area record table addresses (PC offsets). parentTableAddr,
// sizeTableAddr, and the first two area-graphics arrays are the real
// vanilla table addresses (overworld_regression_test.cc); the remaining
// area-graphics slots (0x7C41, 0x7E41, then 0x8141..0x8441) and every
// per-field table below are the engine's own constant block, not
// addresses recovered from a ROM.
const (
	parentTableAddr = 0x125EC
	sizeTableAddr   = 0x1788D
	paletteTableAddr = 0x7D1C
)

var areaGraphicsTableAddr = [8]int{0x7A41, 0x7B41, 0x7C41, 0x7D41 + 0x100, 0x8141, 0x8241, 0x8341, 0x8441}

const (
	mainPaletteTableAddr = paletteTableAddr + 0xA0
	spriteGfxTableAddrBase = 0x8D00 // 3 slots * 0xA0 stride
	spritePalTableAddrBase = 0x9000
	messageIDTableAddr     = 0x9300 // u16, 2 bytes/entry
	musicTableAddrBase     = 0x9500 // 4 slots * 0xA0 stride
	mosaicTableAddr        = 0x9D00
	customTilesetTableAddrBase = 0xA000 // 8 slots * 0xA0 stride
	animatedGfxTableAddr       = 0xA800
	subscreenOverlayTableAddr  = 0xA900 // u16
	bgColorTableAddr           = 0xAB00 // u16
)

// DecodeAreaRecords reads all 0xA0 area records from rom in a layout
// gated by v, per spec.md §4.6/R1/R2: vanilla/v1 fields only, v2 adds
// main_palette/BG color/full mosaic, v3 adds the size enum, custom
// tileset, animated GFX and subscreen overlay.
func DecodeAreaRecords(r *rom.ROM, v Version) ([AreaCount]AreaRecord, error) {
	var areas [AreaCount]AreaRecord

	for id := 0; id < AreaCount; id++ {
		a := &areas[id]
		a.ID = id

		parent, err := r.ReadByte(parentTableAddr + id)
		if err != nil {
			return areas, err
		}
		a.Parent = parent

		sizeByte, err := r.ReadByte(sizeTableAddr + id)
		if err != nil {
			return areas, err
		}
		a.LargeMapFlag = sizeByte != 0x01
		if SupportsAreaEnum(v) {
			a.Size = AreaSize(sizeByte & 0x03)
		} else if a.LargeMapFlag {
			a.Size = SizeLarge
		} else {
			a.Size = SizeSmall
		}

		for slot := range a.AreaGraphics {
			b, err := r.ReadByte(areaGraphicsTableAddr[slot] + id)
			if err != nil {
				return areas, err
			}
			a.AreaGraphics[slot] = b
		}

		pal, err := r.ReadByte(paletteTableAddr + id)
		if err != nil {
			return areas, err
		}
		a.AreaPalette = pal

		if SupportsMainPalette(v) {
			mp, err := r.ReadByte(mainPaletteTableAddr + id)
			if err != nil {
				return areas, err
			}
			a.MainPalette = mp
		}

		for gs := 0; gs < 3; gs++ {
			sg, err := r.ReadByte(spriteGfxTableAddrBase + gs*AreaCount + id)
			if err != nil {
				return areas, err
			}
			a.SpriteGraphics[gs] = sg
			sp, err := r.ReadByte(spritePalTableAddrBase + gs*AreaCount + id)
			if err != nil {
				return areas, err
			}
			a.SpritePalette[gs] = sp
		}

		msg, err := r.ReadWord(messageIDTableAddr + id*2)
		if err != nil {
			return areas, err
		}
		a.MessageID = msg

		for m := 0; m < 4; m++ {
			music, err := r.ReadByte(musicTableAddrBase + m*AreaCount + id)
			if err != nil {
				return areas, err
			}
			a.Music[m] = music
		}

		mosaicByte, err := r.ReadByte(mosaicTableAddr + id)
		if err != nil {
			return areas, err
		}
		if SupportsFullMosaic(v) {
			for dir := 0; dir < 4; dir++ {
				a.MosaicDirs[dir] = mosaicByte&(1<<uint(dir)) != 0
			}
		} else {
			a.MosaicDirs[0] = mosaicByte&1 != 0
		}

		if SupportsCustomBGColors(v) {
			bg, err := r.ReadWord(bgColorTableAddr + id*2)
			if err != nil {
				return areas, err
			}
			c := gfx.DecodeColorWord(bg)
			a.BGColor = &c
		}

		if SupportsCustomTileGFX(v) {
			for slot := range a.CustomTileset {
				ct, err := r.ReadByte(customTilesetTableAddrBase + slot*AreaCount + id)
				if err != nil {
					return areas, err
				}
				a.CustomTileset[slot] = ct
			}
		}

		if SupportsAnimatedGFX(v) {
			ag, err := r.ReadByte(animatedGfxTableAddr + id)
			if err != nil {
				return areas, err
			}
			a.AnimatedGFX = ag
		}

		if SupportsSubscreenOverlay(v) {
			ov, err := r.ReadWord(subscreenOverlayTableAddr + id*2)
			if err != nil {
				return areas, err
			}
			a.SubscreenOverlay = ov
		}

		// Size/world legality (spec.md §3.3): Wide/Tall are only legal on
		// v3; a lower-version ROM that somehow encodes them downgrades to
		// Small rather than faulting.
		if !SupportsAreaEnum(v) && (a.Size == SizeWide || a.Size == SizeTall) {
			a.Size = SizeSmall
		}
	}

	return areas, nil
}

// EncodeAreaRecords writes every field DecodeAreaRecords understands
// back to rom in the same version-gated layout (spec.md §4.8 phase 1).
func EncodeAreaRecords(r *rom.ROM, v Version, areas [AreaCount]AreaRecord) error {
	for id := 0; id < AreaCount; id++ {
		a := &areas[id]

		if err := r.WriteByte(parentTableAddr+id, a.Parent); err != nil {
			return err
		}

		var sizeByte uint8
		if SupportsAreaEnum(v) {
			sizeByte = uint8(a.Size)
		} else if a.EffectiveSize(v) == SizeLarge {
			sizeByte = 0x00
		} else {
			sizeByte = 0x01
		}
		if err := r.WriteByte(sizeTableAddr+id, sizeByte); err != nil {
			return err
		}

		for slot, val := range a.AreaGraphics {
			if err := r.WriteByte(areaGraphicsTableAddr[slot]+id, val); err != nil {
				return err
			}
		}

		if err := r.WriteByte(paletteTableAddr+id, a.AreaPalette); err != nil {
			return err
		}

		if SupportsMainPalette(v) {
			if err := r.WriteByte(mainPaletteTableAddr+id, a.MainPalette); err != nil {
				return err
			}
		}

		for gs := 0; gs < 3; gs++ {
			if err := r.WriteByte(spriteGfxTableAddrBase+gs*AreaCount+id, a.SpriteGraphics[gs]); err != nil {
				return err
			}
			if err := r.WriteByte(spritePalTableAddrBase+gs*AreaCount+id, a.SpritePalette[gs]); err != nil {
				return err
			}
		}

		if err := r.WriteWord(messageIDTableAddr+id*2, a.MessageID); err != nil {
			return err
		}

		for m := 0; m < 4; m++ {
			if err := r.WriteByte(musicTableAddrBase+m*AreaCount+id, a.Music[m]); err != nil {
				return err
			}
		}

		var mosaicByte uint8
		if SupportsFullMosaic(v) {
			for dir := 0; dir < 4; dir++ {
				if a.MosaicDirs[dir] {
					mosaicByte |= 1 << uint(dir)
				}
			}
		} else if a.MosaicDirs[0] {
			mosaicByte = 1
		}
		if err := r.WriteByte(mosaicTableAddr+id, mosaicByte); err != nil {
			return err
		}

		if SupportsCustomBGColors(v) && a.BGColor != nil {
			if err := r.WriteWord(bgColorTableAddr+id*2, gfx.EncodeColorWord(*a.BGColor)); err != nil {
				return err
			}
		}

		if SupportsCustomTileGFX(v) {
			for slot, val := range a.CustomTileset {
				if err := r.WriteByte(customTilesetTableAddrBase+slot*AreaCount+id, val); err != nil {
					return err
				}
			}
		}

		if SupportsAnimatedGFX(v) {
			if err := r.WriteByte(animatedGfxTableAddr+id, a.AnimatedGFX); err != nil {
				return err
			}
		}

		if SupportsSubscreenOverlay(v) {
			if err := r.WriteWord(subscreenOverlayTableAddr+id*2, a.SubscreenOverlay); err != nil {
				return err
			}
		}
	}
	return nil
}

package overworld

import (
	"github.com/scawful/yaze-go/internal/gfx"
	"github.com/scawful/yaze-go/internal/hackmanifest"
	"github.com/scawful/yaze-go/internal/project"
	"github.com/scawful/yaze-go/internal/rom"
	"github.com/scawful/yaze-go/internal/yzerr"
	"github.com/scawful/yaze-go/internal/yzlog"
)

// SaveOptions controls which C8 save phases run and what write-conflict
// policy gates them (spec.md §4.8).
type SaveOptions struct {
	Flags    project.FeatureFlags
	Manifest *hackmanifest.Manifest
	Policy   hackmanifest.Policy
}

// writeRangesForFlags projects the PC byte ranges each gated save phase
// would touch, so the hack-manifest gate can be consulted before a
// single byte is written (spec.md §4.8 "Write-conflict gate").
func (o *Overworld) writeRangesForFlags(flags project.FeatureFlags) []hackmanifest.PcRange {
	var ranges []hackmanifest.PcRange

	if flags.SaveOverworldMaps {
		ranges = append(ranges,
			hackmanifest.PcRange{Start: parentTableAddr, End: parentTableAddr + AreaCount},
			hackmanifest.PcRange{Start: sizeTableAddr, End: sizeTableAddr + AreaCount},
			hackmanifest.PcRange{Start: gfx.Tile16DefAddr, End: gfx.Tile16DefAddr + gfx.MaxTile16Defs*8},
			hackmanifest.PcRange{Start: tile32TableAddr, End: tile32TableAddr + 8*MaxTile32Entries},
		)
	}
	if flags.SaveOverworldEntrances {
		ranges = append(ranges, hackmanifest.PcRange{Start: entranceTableAddr, End: entranceIDTableAddr + MaxEntrances})
	}
	if flags.SaveOverworldExits {
		ranges = append(ranges, hackmanifest.PcRange{Start: exitTableAddr, End: exitTableAddr + MaxExits*19})
	}
	if flags.SaveOverworldItems {
		ranges = append(ranges, hackmanifest.PcRange{Start: itemTableAddr, End: itemIDTableAddr + MaxItems})
	}
	if flags.SaveOverworldProperties {
		ranges = append(ranges,
			hackmanifest.PcRange{Start: paletteTableAddr, End: paletteTableAddr + AreaCount},
			hackmanifest.PcRange{Start: mosaicTableAddr, End: mosaicTableAddr + AreaCount},
		)
	}
	if flags.SaveOverworldMusic {
		ranges = append(ranges, hackmanifest.PcRange{Start: musicTableAddrBase, End: musicTableAddrBase + 4*AreaCount})
	}

	return ranges
}

// Save writes every gated phase back to the ROM image, per spec.md
// §4.8: the hack-manifest write-conflict gate is consulted before any
// byte is touched, then phases run in a fixed order (maps, then
// entities) so a map/entity inconsistency can never reach disk. A
// PolicyBlock conflict aborts with no mutation at all; PolicyAllow and
// PolicyWarn both proceed, the latter logging every conflict first.
func (o *Overworld) Save(opts SaveOptions) error {
	if o.ROM == nil {
		return yzerr.New(yzerr.Io, "Overworld.Save", "no ROM loaded")
	}

	if opts.Manifest != nil {
		ranges := o.writeRangesForFlags(opts.Flags)
		conflicts := opts.Manifest.AnalyzePcWriteRanges(rom.PcToLoRom, ranges)
		if len(conflicts) > 0 {
			switch opts.Policy {
			case hackmanifest.PolicyBlock:
				return yzerr.Newf(yzerr.Conflict, "Overworld.Save", "save blocked: %d write range(s) owned by hack module(s)", len(conflicts))
			case hackmanifest.PolicyWarn:
				if o.Log != nil {
					for _, c := range conflicts {
						o.Log.Logf(yzlog.ComponentSave, yzlog.LevelWarn, "write range overlaps %q (%s) at 0x%06X-0x%06X", c.ModuleName, c.Ownership, c.Range.Start, c.Range.End)
					}
				}
			case hackmanifest.PolicyAllow:
				// proceed silently
			}
		}
	}

	if opts.Flags.SaveOverworldMaps {
		table, err := BuildTile32Table(o.Tiles)
		if err != nil {
			return err
		}
		o.Tile32Table = table
		if err := EncodeTile32Table(o.ROM, table); err != nil {
			return yzerr.Wrap(yzerr.Encoding, "Overworld.Save", err)
		}

		if err := EncodeAreaRecords(o.ROM, o.Version, o.Areas); err != nil {
			return yzerr.Wrap(yzerr.Encoding, "Overworld.Save", err)
		}
		if err := gfx.EncodeTile16Defs(o.ROM, gfx.Tile16DefAddr, o.Tile16Defs); err != nil {
			return yzerr.Wrap(yzerr.Encoding, "Overworld.Save", err)
		}
		if err := o.encodeScreens(); err != nil {
			return err
		}
	}

	entrances, exits, items, sprites := o.Entrances, o.Exits, o.Items, o.Sprites
	if !opts.Flags.SaveOverworldEntrances {
		entrances = nil
	}
	if !opts.Flags.SaveOverworldExits {
		exits = nil
	}
	if !opts.Flags.SaveOverworldItems {
		items = nil
	}
	if !opts.Flags.SaveOverworldEntrances && !opts.Flags.SaveOverworldExits && !opts.Flags.SaveOverworldItems {
		sprites = [3][]Sprite{}
	}
	if opts.Flags.SaveOverworldEntrances || opts.Flags.SaveOverworldExits || opts.Flags.SaveOverworldItems {
		if err := EncodeEntities(o.ROM, entrances, exits, items, sprites); err != nil {
			return yzerr.Wrap(yzerr.Encoding, "Overworld.Save", err)
		}
	}

	o.ROM.Dirty = false
	if o.Log != nil {
		o.Log.Logf(yzlog.ComponentSave, yzlog.LevelInfo, "saved overworld: version=%s tile32=%d", o.Version, o.Tile32Table.Len())
	}
	return nil
}

// encodeScreens re-compresses every area's 32x32 tile16 grid through
// the active codec and writes it back at its existing pointer slot.
// An encoded screen longer than the window Load decodes from (up to
// 4096 bytes from the slot, cut short at the end of the ROM) is an
// Encoding failure.
func (o *Overworld) encodeScreens() error {
	ptrBase := screenPointerTableAddr
	if SupportsExpandedSpace(o.Version) {
		ptrBase = expandedScreenPointerTableAddr
	}

	for id := 0; id < AreaCount; id++ {
		world := World(WorldOf(id))
		if world > SpecialWorld {
			continue
		}
		gx, gy := LocalOf(id)%8, LocalOf(id)/8
		grid := o.Tiles.AreaGrid(world, gx, gy)
		raw := encodeScreenGrid(grid)

		encoded, err := o.Codec.Encode(raw)
		if err != nil {
			return yzerr.Wrap(yzerr.Encoding, "Overworld.encodeScreens", err)
		}

		ptr, err := o.ROM.ReadWord(ptrBase + id*2)
		if err != nil {
			return err
		}
		pc := rom.LoRomToPc(uint32(ptr) | 0x0D0000)

		existing := make([]byte, 0, len(encoded))
		for i := 0; i < 4096 && pc+i < o.ROM.Size(); i++ {
			existing = append(existing, o.ROM.At(pc+i))
		}
		// The slot's budget is the same fixed window decompressScreens
		// reads from, not the length of the blob previously stored there.
		if len(encoded) > len(existing) && len(existing) > 0 {
			return yzerr.Newf(yzerr.Encoding, "Overworld.encodeScreens", "area %d: encoded screen grew past its allotted space (%d > %d bytes)", id, len(encoded), len(existing))
		}

		for i, b := range encoded {
			if err := o.ROM.WriteByte(pc+i, b); err != nil {
				return err
			}
		}
	}
	return nil
}

// encodeScreenGrid is the inverse of decodeScreenGrid: a little-endian
// flattening of a 32x32 tile16-id grid.
func encodeScreenGrid(grid [32][32]uint16) []byte {
	out := make([]byte, 32*32*2)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			i := (y*32 + x) * 2
			v := grid[y][x]
			out[i] = uint8(v)
			out[i+1] = uint8(v >> 8)
		}
	}
	return out
}

package overworld

import "github.com/scawful/yaze-go/internal/rom"

// OverworldCustomASMHasBeenApplied is the PC offset of the single marker
// byte the ZSCustomOverworld (ZCO) patch writes to announce its version.
const OverworldCustomASMHasBeenApplied = 0x140145

// Version classifies a ROM into the vanilla game or one of the three
// ZCO feature generations. Every capability check in the engine is a
// pure function of this value, never a direct read of the marker byte.
type Version int

const (
	Vanilla Version = iota
	V1
	V2
	V3
)

func (v Version) String() string {
	switch v {
	case Vanilla:
		return "Vanilla"
	case V1:
		return "ZSCustomOverworld v1"
	case V2:
		return "ZSCustomOverworld v2"
	case V3:
		return "ZSCustomOverworld v3"
	default:
		return "Unknown"
	}
}

// DetectVersion reads the ZCO marker byte and classifies the ROM.
// 0xFF and 0x00 both mean vanilla (no patch applied); 1/2/>=3 map to
// the corresponding ZCO generation.
func DetectVersion(r *rom.ROM) Version {
	asmVersion := r.At(OverworldCustomASMHasBeenApplied)
	return versionFromMarker(asmVersion)
}

func versionFromMarker(asmVersion uint8) Version {
	switch {
	case asmVersion == 0xFF || asmVersion == 0x00:
		return Vanilla
	case asmVersion == 1:
		return V1
	case asmVersion == 2:
		return V2
	case asmVersion >= 3:
		return V3
	default:
		return Vanilla
	}
}

// SupportsAreaEnum reports whether the ROM stores an explicit area-size
// enum (Wide/Tall areas), which only v3 ROMs do; lower versions use the
// legacy large-map flag and can only be Small or Large.
func SupportsAreaEnum(v Version) bool { return v == V3 }

// SupportsExpandedSpace reports whether Load and Save read screen
// pointers from expandedScreenPointerTableAddr instead of the legacy
// table. That table sits at PC 0x3F51D, inside the vanilla 1 MiB; no
// table is placed past the 1 MiB mark.
func SupportsExpandedSpace(v Version) bool { return v != Vanilla }

// SupportsCustomBGColors reports whether the area-specific background
// color override field exists (v2+).
func SupportsCustomBGColors(v Version) bool { return v == V2 || v == V3 }

// SupportsMainPalette reports whether the main_palette field exists (v2+).
func SupportsMainPalette(v Version) bool { return v == V2 || v == V3 }

// SupportsFullMosaic reports whether all four mosaic direction bits are
// stored individually (v2+) versus a single bool (vanilla/v1).
func SupportsFullMosaic(v Version) bool { return v == V2 || v == V3 }

// SupportsCustomTileGFX reports whether the custom_tileset[8] field
// exists (v3+).
func SupportsCustomTileGFX(v Version) bool { return v == V3 }

// SupportsAnimatedGFX reports whether the animated_gfx field exists (v3+).
func SupportsAnimatedGFX(v Version) bool { return v == V3 }

// SupportsSubscreenOverlay reports whether the subscreen_overlay field
// exists (v3+).
func SupportsSubscreenOverlay(v Version) bool { return v == V3 }

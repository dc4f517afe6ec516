package overworld

import (
	"testing"

	"github.com/scawful/yaze-go/internal/rom"
)

func romWithMarker(t *testing.T, marker uint8) *rom.ROM {
	t.Helper()
	r := rom.New()
	r.LoadBytes(make([]byte, OverworldCustomASMHasBeenApplied+1))
	if err := r.WriteByte(OverworldCustomASMHasBeenApplied, marker); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	return r
}

func TestDetectVersion(t *testing.T) {
	cases := []struct {
		marker uint8
		want   Version
	}{
		{0xFF, Vanilla},
		{0x00, Vanilla},
		{0x01, V1},
		{0x02, V2},
		{0x03, V3},
		{0x07, V3},
	}
	for _, c := range cases {
		r := romWithMarker(t, c.marker)
		if got := DetectVersion(r); got != c.want {
			t.Errorf("DetectVersion(marker=0x%02X) = %v, want %v", c.marker, got, c.want)
		}
	}
}

func TestCapabilities_GatedByVersion(t *testing.T) {
	if SupportsAreaEnum(Vanilla) || SupportsAreaEnum(V1) || SupportsAreaEnum(V2) {
		t.Fatal("area enum must only be supported on v3")
	}
	if !SupportsAreaEnum(V3) {
		t.Fatal("area enum must be supported on v3")
	}

	if SupportsExpandedSpace(Vanilla) {
		t.Fatal("vanilla must not support expanded space")
	}
	for _, v := range []Version{V1, V2, V3} {
		if !SupportsExpandedSpace(v) {
			t.Errorf("%v must support expanded space", v)
		}
	}

	if SupportsCustomBGColors(Vanilla) || SupportsCustomBGColors(V1) {
		t.Fatal("BG color override requires v2+")
	}
	if !SupportsCustomBGColors(V2) || !SupportsCustomBGColors(V3) {
		t.Fatal("BG color override must be supported on v2 and v3")
	}

	for _, v := range []Version{Vanilla, V1, V2} {
		if SupportsCustomTileGFX(v) || SupportsAnimatedGFX(v) || SupportsSubscreenOverlay(v) {
			t.Errorf("%v must not support v3-only features", v)
		}
	}
	if !SupportsCustomTileGFX(V3) || !SupportsAnimatedGFX(V3) || !SupportsSubscreenOverlay(V3) {
		t.Fatal("v3 must support custom tile GFX, animated GFX, and subscreen overlay")
	}
}

package overworld

import "testing"

func TestStaticGraphics_DeathMountainOverride(t *testing.T) {
	a := &AreaRecord{ID: 0x03, AreaGraphics: [8]uint8{0, 0, 0, 0, 0, 0, 0, 0x20}}
	if got := a.StaticGraphics(7); got != 0x59 {
		t.Errorf("Death Mountain LW StaticGraphics(7) = 0x%02X, want 0x59", got)
	}

	dw := &AreaRecord{ID: 0x45}
	if got := dw.StaticGraphics(7); got != 0x59 {
		t.Errorf("Death Mountain DW StaticGraphics(7) = 0x%02X, want 0x59", got)
	}

	other := &AreaRecord{ID: 0x04}
	if got := other.StaticGraphics(7); got != deathMountainDefaultGFX {
		t.Errorf("non-DM StaticGraphics(7) = 0x%02X, want 0x%02X", got, deathMountainDefaultGFX)
	}
}

func TestStaticGraphics_OtherSlotsUseTable(t *testing.T) {
	a := &AreaRecord{ID: 0x10, AreaGraphics: [8]uint8{0x11, 0x22, 0, 0, 0, 0, 0, 0}}
	if got := a.StaticGraphics(0); got != 0x11 {
		t.Errorf("StaticGraphics(0) = 0x%02X, want 0x11", got)
	}
	if got := a.StaticGraphics(1); got != 0x22 {
		t.Errorf("StaticGraphics(1) = 0x%02X, want 0x22", got)
	}
}

func TestEffectiveSize_VersionGated(t *testing.T) {
	a := &AreaRecord{Size: SizeWide, LargeMapFlag: true}
	if got := a.EffectiveSize(V3); got != SizeWide {
		t.Errorf("v3 EffectiveSize = %v, want SizeWide", got)
	}
	if got := a.EffectiveSize(V2); got != SizeLarge {
		t.Errorf("v2 EffectiveSize = %v, want SizeLarge (legacy flag wins)", got)
	}

	small := &AreaRecord{Size: SizeWide, LargeMapFlag: false}
	if got := small.EffectiveSize(V1); got != SizeSmall {
		t.Errorf("v1 EffectiveSize = %v, want SizeSmall", got)
	}
}

func TestEffectiveParent_SelfParentSentinel(t *testing.T) {
	a := &AreaRecord{ID: 0x07, Parent: SelfParent}
	if got := a.EffectiveParent(); got != 0x07 {
		t.Errorf("EffectiveParent = %d, want own id 0x07", got)
	}

	child := &AreaRecord{ID: 0x08, Parent: 0x07}
	if got := child.EffectiveParent(); got != 0x07 {
		t.Errorf("EffectiveParent = %d, want 0x07", got)
	}
}

func TestWorldOfAndLocalOf(t *testing.T) {
	cases := []struct {
		areaID, world, local int
	}{
		{0x00, 0, 0x00},
		{0x3F, 0, 0x3F},
		{0x40, 1, 0x00},
		{0x80, 2, 0x00},
	}
	for _, c := range cases {
		if got := WorldOf(c.areaID); got != c.world {
			t.Errorf("WorldOf(0x%02X) = %d, want %d", c.areaID, got, c.world)
		}
		if got := LocalOf(c.areaID); got != c.local {
			t.Errorf("LocalOf(0x%02X) = %d, want %d", c.areaID, got, c.local)
		}
	}
}

package overworld

import (
	"testing"

	"github.com/scawful/yaze-go/internal/arena"
	"github.com/scawful/yaze-go/internal/gfx"
	"github.com/scawful/yaze-go/internal/rom"
	"github.com/scawful/yaze-go/internal/yzerr"
)

func newTestOverworld(t *testing.T, marker uint8) *Overworld {
	t.Helper()
	data := make([]byte, 0x200000)
	data[OverworldCustomASMHasBeenApplied] = marker
	// Fresh ROM fixture: mark every entity slot's map-id byte as the
	// deleted sentinel so a load starts with no live entities.
	for i := 0; i < MaxEntrances; i++ {
		data[entranceTableAddr+i*3] = deletedMapID
	}
	for i := 0; i < MaxExits; i++ {
		data[exitTableAddr+i*19] = deletedMapID
	}
	for i := 0; i < MaxItems; i++ {
		data[itemTableAddr+i*3] = deletedMapID
	}
	for gs := 0; gs < 3; gs++ {
		for i := 0; i < MaxSprites; i++ {
			data[spriteTableAddrBase+gs*MaxSprites*4+i*4] = deletedMapID
		}
	}

	r := rom.New()
	r.LoadBytes(data)

	o := New(gfx.NewEngine(), arena.New(), nil)
	if err := o.Load(r); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return o
}

func TestLoad_DetectsVersionAndPopulatesEntities(t *testing.T) {
	o := newTestOverworld(t, 0x03)
	if o.Version != V3 {
		t.Errorf("Version = %v, want V3", o.Version)
	}
	if len(o.Entrances) != MaxEntrances {
		t.Errorf("len(Entrances) = %d, want %d", len(o.Entrances), MaxEntrances)
	}
	for _, e := range o.Entrances {
		if !e.Deleted {
			t.Fatalf("freshly loaded entrance slot not marked deleted")
		}
	}
}

func TestGetSetTile_ClampedAndNoFullRebuild(t *testing.T) {
	o := newTestOverworld(t, 0x00)
	o.SetTile(LightWorld, 10, 10, 5)
	if got := o.GetTile(LightWorld, 10, 10); got != 5 {
		t.Errorf("GetTile = %d, want 5", got)
	}
	o.SetTile(LightWorld, 300, -4, 7)
	if got := o.GetTile(LightWorld, 255, 0); got != 7 {
		t.Errorf("GetTile(255, 0) after out-of-range SetTile = %d, want 7", got)
	}
	// SetTile before any build must not panic or build the area.
	if len(o.built) != 0 {
		t.Errorf("SetTile unexpectedly triggered a build")
	}
}

func TestEnsureMapBuilt_CachesAndQueuesTextureCommand(t *testing.T) {
	o := newTestOverworld(t, 0x00)
	if err := o.EnsureMapBuilt(0); err != nil {
		t.Fatalf("EnsureMapBuilt: %v", err)
	}
	if !o.built[0] {
		t.Errorf("area 0 not marked built")
	}
	cmds := o.Arena.DrainTextureCommands()
	if len(cmds) != 1 || cmds[0].Kind != arena.CommandCreate {
		t.Fatalf("expected one CommandCreate, got %+v", cmds)
	}

	// Re-calling when not dirty should be a no-op (no duplicate command).
	if err := o.EnsureMapBuilt(0); err != nil {
		t.Fatalf("EnsureMapBuilt (2nd): %v", err)
	}
	if cmds := o.Arena.DrainTextureCommands(); len(cmds) != 0 {
		t.Errorf("expected no new texture commands on cache hit, got %d", len(cmds))
	}
}

func TestEnsureMapBuilt_OutOfRangeIsInvalidArgument(t *testing.T) {
	o := newTestOverworld(t, 0x00)
	err := o.EnsureMapBuilt(AreaCount)
	if k, ok := yzerr.KindOf(err); !ok || k != yzerr.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestHoverAndTick_BuildsAfterDwell(t *testing.T) {
	o := newTestOverworld(t, 0x00)
	o.HoverArea(5)

	if err := o.Tick(BuildDelay / 2); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if o.built[5] {
		t.Fatalf("area built before BuildDelay elapsed")
	}

	if err := o.Tick(BuildDelay); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !o.built[5] {
		t.Fatalf("area not built after BuildDelay elapsed")
	}
}

func TestHoverArea_ResetsOnChange(t *testing.T) {
	o := newTestOverworld(t, 0x00)
	o.HoverArea(5)
	_ = o.Tick(BuildDelay * 0.9)
	o.HoverArea(6) // switching area resets dwell
	if o.dwellTime != 0 || o.lastHoveredArea != 6 {
		t.Fatalf("hover change did not reset dwell timer")
	}
}

func TestConfigureMultiAreaMap_SmallToLarge(t *testing.T) {
	o := newTestOverworld(t, 0x03) // v3 fixture; Large needs no v3, only Wide/Tall do
	if err := o.ConfigureMultiAreaMap(0, SizeLarge); err != nil {
		t.Fatalf("ConfigureMultiAreaMap: %v", err)
	}
	if o.Areas[0].Size != SizeLarge || o.Areas[0].Parent != SelfParent {
		t.Errorf("parent area not configured correctly: %+v", o.Areas[0])
	}
	for _, sibling := range []int{1, 8, 9} {
		if o.Areas[sibling].Parent != 0 {
			t.Errorf("area %d parent = %d, want 0", sibling, o.Areas[sibling].Parent)
		}
		if o.Areas[sibling].Size != SizeLarge {
			t.Errorf("area %d size = %v, want SizeLarge", sibling, o.Areas[sibling].Size)
		}
	}
}

func TestConfigureMultiAreaMap_WideRejectedOnNonV3(t *testing.T) {
	o := newTestOverworld(t, 0x00) // Vanilla
	err := o.ConfigureMultiAreaMap(0, SizeWide)
	if k, ok := yzerr.KindOf(err); !ok || k != yzerr.Configuration {
		t.Fatalf("expected Configuration error, got %v", err)
	}
	if o.Areas[0].Size != SizeSmall {
		t.Errorf("state mutated despite rejected transition: %+v", o.Areas[0])
	}
}

func TestConfigureMultiAreaMap_CrossingWorldBoundaryIsConfiguration(t *testing.T) {
	o := newTestOverworld(t, 0x03)
	// Area at local (7,7) -- the bottom-right corner of its world grid --
	// cannot absorb a Large group without wrapping past row/column 8.
	err := o.ConfigureMultiAreaMap(0x3F, SizeLarge)
	if k, ok := yzerr.KindOf(err); !ok || k != yzerr.Configuration {
		t.Fatalf("expected Configuration error, got %v", err)
	}
}

func TestConfigureMultiAreaMap_LargeToSmallReleasesSiblings(t *testing.T) {
	o := newTestOverworld(t, 0x03)
	if err := o.ConfigureMultiAreaMap(0, SizeLarge); err != nil {
		t.Fatalf("ConfigureMultiAreaMap(Large): %v", err)
	}
	if err := o.ConfigureMultiAreaMap(0, SizeSmall); err != nil {
		t.Fatalf("ConfigureMultiAreaMap(Small): %v", err)
	}
	for _, sibling := range []int{1, 8, 9} {
		if o.Areas[sibling].Parent != SelfParent {
			t.Errorf("area %d parent = %d, want SelfParent after shrink", sibling, o.Areas[sibling].Parent)
		}
	}
}

func TestInsertEntrance_ViaOverworld(t *testing.T) {
	o := newTestOverworld(t, 0x00)
	idx, err := o.InsertEntrance(Entrance{EntranceID: 3, Entity: Entity{MapID: 1}})
	if err != nil {
		t.Fatalf("InsertEntrance: %v", err)
	}
	if o.Entrances[idx].EntranceID != 3 {
		t.Errorf("stored entrance mismatch: %+v", o.Entrances[idx])
	}
}

func TestEnsureMapBuilt_InvalidatedByPaletteEdit(t *testing.T) {
	o := newTestOverworld(t, 0x00)
	if err := o.EnsureMapBuilt(0); err != nil {
		t.Fatalf("EnsureMapBuilt: %v", err)
	}
	if !o.built[0] {
		t.Fatalf("area 0 not marked built")
	}
	o.Arena.DrainTextureCommands()

	// Editing one of the overworld's own palette groups must propagate
	// through the arena's palette-listener bus and invalidate every
	// cached area bitmap (spec.md §4.3 "Edit notification", §4.7 item 5).
	if err := o.Palettes.SetColor("ow_main", 0, 0, gfx.Color{R: 31, G: 0, B: 0}); err != nil {
		t.Fatalf("SetColor: %v", err)
	}
	if o.built[0] {
		t.Fatalf("area 0 still marked built after a palette edit invalidated it")
	}
	if !o.dirtyAreas[0] {
		t.Fatalf("area 0 not marked dirty after a palette edit")
	}

	if err := o.EnsureMapBuilt(0); err != nil {
		t.Fatalf("EnsureMapBuilt (rebuild): %v", err)
	}
	cmds := o.Arena.DrainTextureCommands()
	if len(cmds) != 1 || cmds[0].Kind != arena.CommandCreate {
		t.Fatalf("expected the palette edit to cause exactly one rebuild, got %+v", cmds)
	}
}

func TestInsertEntranceAtPixel_SnapsMouseCoordinateToGrid(t *testing.T) {
	o := newTestOverworld(t, 0x01)
	idx, err := o.InsertEntranceAtPixel(0x05, 9, 120, 72)
	if err != nil {
		t.Fatalf("InsertEntranceAtPixel: %v", err)
	}
	e := o.Entrances[idx]
	if e.MapID != 0x05 || e.Deleted {
		t.Fatalf("entrance not inserted correctly: %+v", e)
	}
	if e.X != 7 || e.Y != 4 {
		t.Fatalf("snapped grid coordinate = (%d,%d), want (7,4)", e.X, e.Y)
	}
	if e.WorldPixelX() != 112 || e.WorldPixelY() != 64 {
		t.Fatalf("snapped world pixel = (%d,%d), want (112,64)", e.WorldPixelX(), e.WorldPixelY())
	}
}

func TestMoveEntity_ClampsToGridBounds(t *testing.T) {
	e := &Entity{}
	MoveEntity(e, -5, 10000)
	if e.X != 0 || e.Y != localGridMax {
		t.Fatalf("clamped coordinate = (%d,%d), want (0,%d)", e.X, e.Y, localGridMax)
	}
}

func TestInsertSprite_InvalidGameState(t *testing.T) {
	o := newTestOverworld(t, 0x00)
	_, err := o.InsertSprite(9, Sprite{})
	if k, ok := yzerr.KindOf(err); !ok || k != yzerr.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

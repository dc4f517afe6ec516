package overworld

import (
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/scawful/yaze-go/internal/arena"
	"github.com/scawful/yaze-go/internal/gfx"
	"github.com/scawful/yaze-go/internal/rom"
	"github.com/scawful/yaze-go/internal/yzerr"
	"github.com/scawful/yaze-go/internal/yzlog"
)

// BuildDelay and PreloadDelay are the hover-debounce thresholds
// (spec.md §4.7 item 4), expressed as elapsed seconds consulted each
// frame rather than as timers (spec.md §5).
const (
	BuildDelay   = 0.150
	PreloadDelay = 0.400
)

// screenPointerTableAddr is the legacy (vanilla) screen pointer table;
// on v1+ ROMs pointers instead live in expandedScreenPointerTableAddr
// (spec.md §6.1), grounded on overworld_regression_test.cc's mock
// layout (0x7C9C/0x3F51D).
const (
	screenPointerTableAddr         = 0x7C9C
	expandedScreenPointerTableAddr = 0x3F51D
)

// Overworld is the C7 engine: the single owner of area records, the
// three 256x256 tilemap layers, the tile16/tile32 definition tables,
// and every entity collection. It is the heart of the data engine.
type Overworld struct {
	ROM     *rom.ROM
	Version Version

	Palettes *gfx.Engine
	Arena    *arena.Arena
	Log      *yzlog.Logger
	Codec    ScreenCodec

	Areas       [AreaCount]AreaRecord
	Tiles       *MapTiles
	Tile16Defs  []gfx.Tile16
	Tile32Table *Tile32Table
	Sheets      map[int]*gfx.Sheet

	Entrances []Entrance
	Exits     []Exit
	Items     []Item
	Sprites   [3][]Sprite // indexed by game state 0/1/2

	dirtyAreas map[int]bool

	paletteListenerID int

	lastHoveredArea int
	dwellTime       float64
	built           map[int]bool
	preloadQueue    []int
	hasHover        bool
}

// New constructs an Overworld engine wired to a palette engine and
// graphics arena; call Load to populate it from a ROM image.
func New(palettes *gfx.Engine, ar *arena.Arena, log *yzlog.Logger) *Overworld {
	o := &Overworld{
		Palettes:   palettes,
		Arena:      ar,
		Log:        log,
		Codec:      DefaultCodec,
		Tiles:      NewMapTiles(),
		Sheets:     make(map[int]*gfx.Sheet),
		dirtyAreas: make(map[int]bool),
		built:      make(map[int]bool),
	}
	o.lastHoveredArea = -1
	if ar != nil {
		o.paletteListenerID = ar.RegisterPaletteListener(o.onPaletteChanged)
		if palettes != nil {
			// gfx can't import arena (arena already imports gfx for
			// *gfx.Sheet/*gfx.Blockset/*gfx.Bitmap), so the bridge from
			// Engine.SetColor to Arena.NotifyPaletteChanged is wired here,
			// where both concrete types are already in scope.
			palettes.SetNotifier(ar)
		}
	}
	return o
}

// onPaletteChanged invalidates cached bitmaps for any area whose
// palette group was just edited (spec.md §4.7 item 5, cache coherence).
func (o *Overworld) onPaletteChanged(groupName string, _ int) {
	if !gfx.OverworldGroupNames[groupName] {
		return
	}
	for id := range o.built {
		delete(o.built, id)
		o.dirtyAreas[id] = true
	}
}

// Load reads all area records in version-appropriate layout,
// decompresses every area's screen in parallel, fills the three tilemap
// layers from the decoded screens, builds the tile32 table from those
// layers, and populates entity arrays (spec.md §4.7 item 1).
func (o *Overworld) Load(r *rom.ROM) error {
	o.ROM = r
	o.Version = DetectVersion(r)

	if o.Palettes != nil {
		if err := o.Palettes.Load(r); err != nil {
			return err
		}
	}

	areas, err := DecodeAreaRecords(r, o.Version)
	if err != nil {
		return yzerr.Wrap(yzerr.Decode, "Overworld.Load", err)
	}
	o.Areas = areas

	if err := o.loadSheets(r); err != nil {
		return err
	}

	defs, err := gfx.DecodeTile16Defs(r, gfx.Tile16DefAddr, gfx.MaxTile16Defs)
	if err != nil {
		return err
	}
	o.Tile16Defs = defs

	screens, err := o.decompressScreens(r)
	if err != nil {
		return err
	}

	o.Tiles = NewMapTiles()
	for id, screen := range screens {
		world := World(WorldOf(id))
		if world > SpecialWorld {
			continue
		}
		gx, gy := LocalOf(id)%8, LocalOf(id)/8
		grid := decodeScreenGrid(screen)
		o.Tiles.SetAreaGrid(world, gx, gy, grid)
	}

	table, err := BuildTile32Table(o.Tiles)
	if err != nil {
		return err
	}
	o.Tile32Table = table

	if err := o.loadEntities(r); err != nil {
		return yzerr.Wrap(yzerr.Decode, "Overworld.Load", err)
	}

	if o.Log != nil {
		o.Log.Logf(yzlog.ComponentOverworld, yzlog.LevelInfo, "loaded overworld: version=%s areas=%d tile32=%d", o.Version, AreaCount, table.Len())
	}

	return nil
}

// loadSheets decodes every graphics sheet the area-graphics tables can
// reference (spec.md C4) and stores them both on the engine and in the
// shared arena so C11 can serve texture-upload requests.
func (o *Overworld) loadSheets(r *rom.ROM) error {
	for id := 0; id < gfx.MaxSheets; id++ {
		addr := gfx.SheetTableAddr + id*gfx.SheetBytes
		if addr+gfx.SheetBytes > r.Size() {
			break
		}
		data := make([]byte, gfx.SheetBytes)
		for i := 0; i < gfx.SheetBytes; i++ {
			data[i] = r.At(addr + i)
		}
		sheet, err := gfx.DecodeSheet(id, data)
		if err != nil {
			return yzerr.Wrap(yzerr.Decode, "Overworld.loadSheets", err)
		}
		o.Sheets[id] = sheet
		if o.Arena != nil {
			o.Arena.StoreSheet(sheet)
		}
	}
	return nil
}

// decompressScreens decodes all 0xA0 area screens in parallel
// (spec.md §5 item 1): each task reads its own ROM slice and writes
// into its own pre-allocated output buffer; there is no shared mutable
// state until the join, after which the results are copied into the
// engine's tilemap arrays by the caller.
func (o *Overworld) decompressScreens(r *rom.ROM) ([AreaCount][]byte, error) {
	var screens [AreaCount][]byte
	ptrBase := screenPointerTableAddr
	if SupportsExpandedSpace(o.Version) {
		ptrBase = expandedScreenPointerTableAddr
	}

	var g errgroup.Group
	for id := 0; id < AreaCount; id++ {
		id := id
		g.Go(func() error {
			ptr, err := r.ReadWord(ptrBase + id*2)
			if err != nil {
				return yzerr.Wrap(yzerr.Decode, "decompressScreens", err)
			}
			pc := rom.LoRomToPc(uint32(ptr) | 0x0D0000)
			raw := make([]byte, 0, 4096)
			for i := 0; i < 4096 && pc+i < r.Size(); i++ {
				raw = append(raw, r.At(pc+i))
			}
			decoded, err := o.Codec.Decode(raw, 32*32*2)
			if err != nil {
				return yzerr.Wrap(yzerr.Decode, "decompressScreens", err)
			}
			screens[id] = decoded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return screens, err
	}
	return screens, nil
}

// decodeScreenGrid unpacks a flat little-endian tile16-id byte buffer
// into a 32x32 grid.
func decodeScreenGrid(screen []byte) [32][32]uint16 {
	var grid [32][32]uint16
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			i := (y*32 + x) * 2
			if i+1 >= len(screen) {
				continue
			}
			grid[y][x] = uint16(screen[i]) | uint16(screen[i+1])<<8
		}
	}
	return grid
}

// GetTile returns the tile16 id at a grid cell (spec.md §6.4).
func (o *Overworld) GetTile(world World, x, y int) uint16 {
	return o.Tiles.GetTile(world, x, y)
}

// SetTile writes a grid cell and repaints only the affected 16x16
// region of the cached bitmap in place, per spec.md §4.7 item 3 (no
// full rebuild). Indices are clamped, never an error.
func (o *Overworld) SetTile(world World, x, y int, tile16ID uint16) {
	x, y = clampGrid(x), clampGrid(y)
	o.Tiles.SetTile(world, x, y, tile16ID)

	areaID := o.areaIDFor(world, x, y)
	if !o.built[areaID] {
		return
	}
	bitmap, ok := o.Arena.Bitmap(bitmapRef(areaID))
	if !ok {
		return
	}
	localX, localY := x%32, y%32
	var t16 gfx.Tile16
	if int(tile16ID) < len(o.Tile16Defs) {
		t16 = o.Tile16Defs[tile16ID]
	}
	gfx.UpdateAreaBitmapRegion(bitmap, localX, localY, t16, o.sheetsForArea(areaID))
	o.Arena.QueueTextureCommand(arena.CommandUpdate, bitmapRef(areaID), bitmap)
}

func (o *Overworld) areaIDFor(world World, x, y int) int {
	gx, gy := x/32, y/32
	return int(world)*0x40 + gy*8 + gx
}

func bitmapRef(areaID int) string {
	return "area:" + strconv.Itoa(areaID)
}

// sheetsForArea picks the 4 graphics sheets an area's StaticGraphics
// slots resolve to (spec.md §4.7 item 2). Slots beyond the sheets the
// engine has loaded degrade to nil, which the renderer treats as
// transparent (gfx.RenderTile16).
func (o *Overworld) sheetsForArea(areaID int) [4]*gfx.Sheet {
	a := &o.Areas[areaID]
	var sheets [4]*gfx.Sheet
	for i := 0; i < 4; i++ {
		sheets[i] = o.Sheets[int(a.StaticGraphics(i))]
	}
	return sheets
}

// EnsureMapBuilt composes the area's palette, picks its graphics
// sheets, and renders its 256x256 bitmap if it is not already cached
// and not dirty (spec.md §4.7 item 2, §6.4).
func (o *Overworld) EnsureMapBuilt(areaID int) error {
	if areaID < 0 || areaID >= AreaCount {
		return yzerr.Newf(yzerr.InvalidArgument, "Overworld.EnsureMapBuilt", "area %d out of range", areaID)
	}
	if o.built[areaID] && !o.dirtyAreas[areaID] {
		return nil
	}

	a := &o.Areas[areaID]
	sel := gfx.AreaPaletteSelection{
		MainRow: int(a.AreaPalette),
		AuxRow:  int(a.AreaPalette),
	}
	if SupportsCustomBGColors(o.Version) && a.BGColor != nil {
		sel.BGColorOverride = a.BGColor
	}
	palette, err := o.Palettes.ComposeAreaPalette(sel)
	if err != nil {
		return yzerr.Wrap(yzerr.Decode, "Overworld.EnsureMapBuilt", err)
	}

	sheets := o.sheetsForArea(areaID)
	world := World(WorldOf(areaID))
	gx, gy := LocalOf(areaID)%8, LocalOf(areaID)/8
	grid := o.Tiles.AreaGrid(world, gx, gy)

	bitmap := gfx.ComposeAreaBitmap(grid, o.Tile16Defs, sheets, palette)
	o.Arena.StoreBitmap(bitmapRef(areaID), bitmap)
	o.Arena.QueueTextureCommand(arena.CommandCreate, bitmapRef(areaID), bitmap)

	o.built[areaID] = true
	delete(o.dirtyAreas, areaID)
	return nil
}

// HoverArea records the area currently under the pointer, resetting
// the dwell timer when the hovered area changes (spec.md §5
// "a new hover resets the timer").
func (o *Overworld) HoverArea(areaID int) {
	if !o.hasHover || o.lastHoveredArea != areaID {
		o.lastHoveredArea = areaID
		o.dwellTime = 0
		o.hasHover = true
	}
}

// ClickArea builds an area immediately, bypassing the hover dwell
// (spec.md §4.7 item 4, "or immediately on click").
func (o *Overworld) ClickArea(areaID int) error {
	return o.EnsureMapBuilt(areaID)
}

// Tick advances the hover dwell timer and preload queue by one frame.
// There are no timers or async tasks; elapsed is the frame's delta
// time in seconds (spec.md §5).
func (o *Overworld) Tick(elapsed float64) error {
	if !o.hasHover {
		return o.drainOnePreload()
	}

	wasBuildable := o.dwellTime >= BuildDelay
	wasPreloadable := o.dwellTime >= PreloadDelay
	o.dwellTime += elapsed

	if !wasBuildable && o.dwellTime >= BuildDelay {
		if err := o.EnsureMapBuilt(o.lastHoveredArea); err != nil {
			return err
		}
	}
	if !wasPreloadable && o.dwellTime >= PreloadDelay {
		o.enqueueNeighborhood(o.lastHoveredArea)
	}

	return o.drainOnePreload()
}

// enqueueNeighborhood adds the 8-neighborhood of areaID to the bounded
// preload FIFO (spec.md §4.7 item 4), skipping areas already built or
// already queued.
func (o *Overworld) enqueueNeighborhood(areaID int) {
	world := WorldOf(areaID)
	local := LocalOf(areaID)
	gx, gy := local%8, local/8

	queued := make(map[int]bool, len(o.preloadQueue))
	for _, id := range o.preloadQueue {
		queued[id] = true
	}

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := gx+dx, gy+dy
			if nx < 0 || nx >= 8 || ny < 0 || ny >= 8 {
				continue
			}
			nid := world*0x40 + ny*8 + nx
			if o.built[nid] || queued[nid] {
				continue
			}
			o.preloadQueue = append(o.preloadQueue, nid)
			queued[nid] = true
		}
	}
}

// drainOnePreload builds at most one queued area per call, matching
// the "≤ 1 area per frame" rate limit (spec.md §4.7 item 4).
func (o *Overworld) drainOnePreload() error {
	if len(o.preloadQueue) == 0 {
		return nil
	}
	next := o.preloadQueue[0]
	o.preloadQueue = o.preloadQueue[1:]
	if o.built[next] {
		return nil
	}
	return o.EnsureMapBuilt(next)
}

// InsertEntrance inserts into the first deleted slot, returning its
// index as a handle (spec.md §6.4).
func (o *Overworld) InsertEntrance(value Entrance) (int, error) {
	return InsertEntrance(o.Entrances, value)
}

// InsertExit mirrors InsertEntrance for exits.
func (o *Overworld) InsertExit(value Exit) (int, error) {
	return InsertExit(o.Exits, value)
}

// InsertItem mirrors InsertEntrance for items.
func (o *Overworld) InsertItem(value Item) (int, error) {
	return InsertItem(o.Items, value)
}

// InsertSprite mirrors InsertEntrance for the given game state's
// sprite collection.
func (o *Overworld) InsertSprite(gameState int, value Sprite) (int, error) {
	if gameState < 0 || gameState > 2 {
		return -1, yzerr.Newf(yzerr.InvalidArgument, "Overworld.InsertSprite", "game state %d out of range", gameState)
	}
	value.GameState = uint8(gameState)
	return InsertSprite(o.Sprites[gameState], value)
}

// localGridMax is the highest valid map-local tile-grid coordinate: an
// area is a 32x32 tile16 grid (spec.md §3.1), so a pixel position can
// only ever snap into column/row 0..31.
const localGridMax = 31

// MoveEntity snaps a raw pixel position to the entity's map-local tile
// grid (floor division by 16) and clamps it to the map, per spec.md
// §4.7 item 3 and the mouse-entry end-to-end scenario: mouse (120, 72)
// snaps to grid (7, 4), i.e. world pixel (112, 64).
func MoveEntity(e *Entity, pixelX, pixelY int) {
	e.X = snapPixelToGrid(pixelX)
	e.Y = snapPixelToGrid(pixelY)
}

func snapPixelToGrid(px int) uint8 {
	grid := px / 16
	if grid < 0 {
		grid = 0
	}
	if grid > localGridMax {
		grid = localGridMax
	}
	return uint8(grid)
}

// InsertEntranceAtPixel inserts an entrance from a raw mouse-pixel
// position rather than an already-snapped grid coordinate, snapping it
// first via MoveEntity (spec.md's entrance-insert end-to-end scenario).
func (o *Overworld) InsertEntranceAtPixel(mapID, entranceID uint8, pixelX, pixelY int) (int, error) {
	e := Entrance{EntranceID: entranceID, Entity: Entity{MapID: mapID}}
	MoveEntity(&e.Entity, pixelX, pixelY)
	return o.InsertEntrance(e)
}

// ConfigureMultiAreaMap reshapes the parent/sibling relationships for
// areaID to the requested size (spec.md §4.7 "Area-size transitions").
// Illegal transitions (Wide/Tall on non-v3, or a group that would wrap
// past row/column 8) are rejected with Configuration and mutate no
// state.
func (o *Overworld) ConfigureMultiAreaMap(areaID int, size AreaSize) error {
	if areaID < 0 || areaID >= AreaCount {
		return yzerr.Newf(yzerr.InvalidArgument, "Overworld.ConfigureMultiAreaMap", "area %d out of range", areaID)
	}
	if (size == SizeWide || size == SizeTall) && !SupportsAreaEnum(o.Version) {
		return yzerr.Newf(yzerr.Configuration, "Overworld.ConfigureMultiAreaMap", "Wide/Tall require a v3 ROM")
	}

	world := WorldOf(areaID)
	local := LocalOf(areaID)
	gx, gy := local%8, local/8

	siblingOffsets := map[AreaSize][]struct{ dx, dy int }{
		SizeSmall: nil,
		SizeLarge: {{1, 0}, {0, 1}, {1, 1}},
		SizeWide:  {{1, 0}},
		SizeTall:  {{0, 1}},
	}

	offsets := siblingOffsets[size]
	siblings := make([]int, 0, len(offsets))
	for _, off := range offsets {
		nx, ny := gx+off.dx, gy+off.dy
		if nx < 0 || nx >= 8 || ny < 0 || ny >= 8 || world*0x40+ny*8+nx >= AreaCount {
			return yzerr.Newf(yzerr.Configuration, "Overworld.ConfigureMultiAreaMap", "area %d: requested size %v would cross the world boundary", areaID, size)
		}
		siblings = append(siblings, world*0x40+ny*8+nx)
	}

	// Release every previously absorbed sibling of this parent back to
	// self-parent before reassigning (spec.md "Any -> Small: all
	// absorbed areas revert to self-parent").
	for id := 0; id < 0x40; id++ {
		globalID := world*0x40 + id
		if globalID >= AreaCount {
			break
		}
		if globalID != areaID && o.Areas[globalID].Parent == uint8(areaID) {
			o.Areas[globalID].Parent = SelfParent
			o.Areas[globalID].Size = SizeSmall
			o.dirtyAreas[globalID] = true
		}
	}

	o.Areas[areaID].Size = size
	o.Areas[areaID].Parent = SelfParent
	o.dirtyAreas[areaID] = true
	for _, sid := range siblings {
		o.Areas[sid].Parent = uint8(areaID)
		o.Areas[sid].Size = size
		o.dirtyAreas[sid] = true
	}

	if o.Log != nil {
		o.Log.Logf(yzlog.ComponentOverworld, yzlog.LevelInfo, "reconfigured area %d to size %d with %d siblings", areaID, size, len(siblings))
	}
	return nil
}

// Shutdown unregisters this engine's palette listener; call it before
// discarding the Overworld.
func (o *Overworld) Shutdown() {
	if o.Arena != nil {
		o.Arena.UnregisterPaletteListener(o.paletteListenerID)
	}
}

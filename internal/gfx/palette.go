package gfx

import (
	"sync"

	"github.com/scawful/yaze-go/internal/rom"
	"github.com/scawful/yaze-go/internal/yzerr"
)

// Palette is one row of a palette group: a list of colors.
type Palette []Color

// GroupSpec describes the ROM layout of one palette group (spec.md §4.3):
// its base address, how many rows (palettes) it has, how many colors
// per row, and whether the transparent slot is stored explicitly in ROM
// data or only implied.
type GroupSpec struct {
	Name                 string
	BaseAddr             int
	RowCount             int
	ColorsPerRow         int
	ExplicitTransparent  bool
}

// Known palette groups (spec.md §4.3). Base addresses are the engine's
// own ROM constants for this family of tables; strides follow directly
// from ColorsPerRow*2 bytes (15-bit BGR words) per row.
var KnownGroups = []GroupSpec{
	{Name: "ow_main", BaseAddr: 0x0DE6C8, RowCount: 8, ColorsPerRow: 7, ExplicitTransparent: false},
	{Name: "ow_aux", BaseAddr: 0x0DE6C8 + 8*7*2, RowCount: 20, ColorsPerRow: 7, ExplicitTransparent: false},
	{Name: "ow_animated", BaseAddr: 0x0DE6C8 + 28*7*2, RowCount: 14, ColorsPerRow: 7, ExplicitTransparent: false},
	{Name: "hud", BaseAddr: 0x0DD39B, RowCount: 1, ColorsPerRow: 16, ExplicitTransparent: true},
	{Name: "global_sprites", BaseAddr: 0x0DD534, RowCount: 1, ColorsPerRow: 15, ExplicitTransparent: false},
	{Name: "armors", BaseAddr: 0x0DD630, RowCount: 5, ColorsPerRow: 15, ExplicitTransparent: false},
	{Name: "sprites_aux1", BaseAddr: 0x0DD846, RowCount: 12, ColorsPerRow: 15, ExplicitTransparent: false},
	{Name: "sprites_aux2", BaseAddr: 0x0DDA26, RowCount: 11, ColorsPerRow: 15, ExplicitTransparent: false},
	{Name: "sprites_aux3", BaseAddr: 0x0DDBE0, RowCount: 24, ColorsPerRow: 15, ExplicitTransparent: false},
	{Name: "swords", BaseAddr: 0x0DD39B - 16, RowCount: 4, ColorsPerRow: 3, ExplicitTransparent: false},
	{Name: "shields", BaseAddr: 0x0DD3B9, RowCount: 3, ColorsPerRow: 4, ExplicitTransparent: false},
	{Name: "dungeon_main", BaseAddr: 0x0DD734, RowCount: 20, ColorsPerRow: 15, ExplicitTransparent: false},
	{Name: "grass", BaseAddr: 0x0AD4D6, RowCount: 1, ColorsPerRow: 3, ExplicitTransparent: false},
	{Name: "3d_object", BaseAddr: 0x0DD4F0, RowCount: 1, ColorsPerRow: 8, ExplicitTransparent: false},
	{Name: "ow_mini_map", BaseAddr: 0x0ADD08, RowCount: 2, ColorsPerRow: 16, ExplicitTransparent: true},
}

// Group is a loaded palette group: its spec plus one Palette per row.
type Group struct {
	Spec GroupSpec
	Rows []Palette
}

// SubPaletteSlice returns the (offset, length) this group occupies
// within a 16-color SNES sub-palette block, respecting spec.md §4.3's
// row-layout rule: groups without an explicit transparent slot reserve
// slot 0 of the block for it; groups with one (hud, ow_mini_map) start
// at slot 0 themselves.
func (g *Group) SubPaletteSlice() (offset, length int) {
	length = g.Spec.ColorsPerRow
	if !g.Spec.ExplicitTransparent {
		offset = 1
	}
	return offset, length
}

// Palette returns row i, or an error if out of range.
func (g *Group) Palette(i int) (Palette, error) {
	if i < 0 || i >= len(g.Rows) {
		return nil, yzerr.Newf(yzerr.InvalidArgument, "Group.Palette", "row %d out of range (have %d)", i, len(g.Rows))
	}
	return g.Rows[i], nil
}

// Listener is called after a palette group's data has been updated, so
// it can safely re-read the new colors (spec.md §5 ordering guarantee).
type Listener func(groupName string, paletteIndex int)

// PaletteNotifier receives the same notification as a Listener, but as
// an interface rather than a registered closure, so this package can
// hand edits to an owner it doesn't import. *arena.Arena satisfies this
// interface; arena already imports gfx, so gfx notifying arena directly
// would be a cycle -- the caller that constructs both (C7's Overworld)
// wires one to the other via SetNotifier instead.
type PaletteNotifier interface {
	NotifyPaletteChanged(groupName string, paletteIndex int)
}

// Engine owns every palette group decoded from ROM and notifies
// registered listeners whenever a color is edited.
type Engine struct {
	mu        sync.RWMutex
	groups    map[string]*Group
	listeners map[int]Listener
	nextID    int
	notifier  PaletteNotifier
}

// NewEngine constructs an empty, unloaded palette engine.
func NewEngine() *Engine {
	return &Engine{
		groups:    make(map[string]*Group),
		listeners: make(map[int]Listener),
	}
}

// SetNotifier registers the single external notifier SetColor reports
// to, in addition to this engine's own listeners. Passing nil clears it.
func (e *Engine) SetNotifier(n PaletteNotifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifier = n
}

// Load decodes every known palette group from the ROM image.
func (e *Engine) Load(r *rom.ROM) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, spec := range KnownGroups {
		rows := make([]Palette, spec.RowCount)
		for row := 0; row < spec.RowCount; row++ {
			pal := make(Palette, spec.ColorsPerRow)
			for c := 0; c < spec.ColorsPerRow; c++ {
				addr := spec.BaseAddr + (row*spec.ColorsPerRow+c)*2
				word, err := r.ReadWord(addr)
				if err != nil {
					return yzerr.Wrap(yzerr.Decode, "Engine.Load", err)
				}
				pal[c] = DecodeColorWord(word)
			}
			rows[row] = pal
		}
		e.groups[spec.Name] = &Group{Spec: spec, Rows: rows}
	}
	return nil
}

// Group looks up a loaded palette group by name; an unknown name is a
// Configuration error (spec.md §7).
func (e *Engine) Group(name string) (*Group, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	g, ok := e.groups[name]
	if !ok {
		return nil, yzerr.Newf(yzerr.Configuration, "Engine.Group", "unknown palette group %q", name)
	}
	return g, nil
}

// SetColor edits one color and notifies listeners after the buffer has
// been updated, per spec.md §5's ordering guarantee.
func (e *Engine) SetColor(groupName string, paletteIndex, colorIndex int, c Color) error {
	e.mu.Lock()
	g, ok := e.groups[groupName]
	if !ok {
		e.mu.Unlock()
		return yzerr.Newf(yzerr.Configuration, "Engine.SetColor", "unknown palette group %q", groupName)
	}
	if paletteIndex < 0 || paletteIndex >= len(g.Rows) {
		e.mu.Unlock()
		return yzerr.Newf(yzerr.InvalidArgument, "Engine.SetColor", "palette %d out of range", paletteIndex)
	}
	if colorIndex < 0 || colorIndex >= len(g.Rows[paletteIndex]) {
		e.mu.Unlock()
		return yzerr.Newf(yzerr.InvalidArgument, "Engine.SetColor", "color %d out of range", colorIndex)
	}
	g.Rows[paletteIndex][colorIndex] = c
	listeners := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	notifier := e.notifier
	e.mu.Unlock()

	for _, l := range listeners {
		l(groupName, paletteIndex)
	}
	if notifier != nil {
		notifier.NotifyPaletteChanged(groupName, paletteIndex)
	}
	return nil
}

// RegisterListener subscribes fn to palette edits and returns a handle
// usable with Unregister.
func (e *Engine) RegisterListener(fn Listener) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	return id
}

// Unregister removes a previously registered listener.
func (e *Engine) Unregister(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.listeners, id)
}

// OverworldGroupNames are the groups whose edits invalidate cached
// overworld area bitmaps (spec.md §4.3 "Edit notification").
var OverworldGroupNames = map[string]bool{
	"ow_main":     true,
	"ow_animated": true,
	"ow_aux":      true,
	"grass":       true,
}

// AreaPaletteSelection names the rows an area composes its working
// palette from (spec.md §4.3 Compose).
type AreaPaletteSelection struct {
	MainRow          int
	AuxRow           int
	HasSecondaryAux  bool
	SecondaryAuxRow  int
	BGColorOverride  *Color // nil unless the ROM version supports it and the area sets one
}

// ComposeAreaPalette builds the area's 256-entry working palette: main
// palette row placed at sub-palette slot 2, aux row at slot 4, the
// optional secondary aux row at slot 6, and the BG color override (if
// any) replacing global index 0 — the single index the compositor
// treats as transparent (spec.md §3.3).
func (e *Engine) ComposeAreaPalette(sel AreaPaletteSelection) ([256]Color, error) {
	var working [256]Color

	mainGroup, err := e.Group("ow_main")
	if err != nil {
		return working, err
	}
	auxGroup, err := e.Group("ow_aux")
	if err != nil {
		return working, err
	}

	if err := placeRow(&working, mainGroup, sel.MainRow, 2); err != nil {
		return working, err
	}
	if err := placeRow(&working, auxGroup, sel.AuxRow, 4); err != nil {
		return working, err
	}
	if sel.HasSecondaryAux {
		if err := placeRow(&working, auxGroup, sel.SecondaryAuxRow, 6); err != nil {
			return working, err
		}
	}

	if sel.BGColorOverride != nil {
		working[0] = *sel.BGColorOverride
	}
	return working, nil
}

func placeRow(working *[256]Color, g *Group, rowIdx, subPaletteSlot int) error {
	pal, err := g.Palette(rowIdx)
	if err != nil {
		return err
	}
	offset, length := g.SubPaletteSlice()
	base := subPaletteSlot*16 + offset
	for i := 0; i < length && base+i < 256; i++ {
		working[base+i] = pal[i]
	}
	return nil
}

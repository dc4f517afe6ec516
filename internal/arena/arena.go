// Package arena is the process-wide owner of decoded graphics: tile8
// sheets, the blockset atlas, and area bitmaps (spec.md C11). It is the
// one component this engine tolerates as global state, grounded on the
// teacher's devkit service shape: a mutex-guarded owner constructed with
// New and handed to every component that shares it (the package keeps
// no instance of its own), with an integer-handle listener registry
// like yzlog's Subscribe/Unsubscribe sinks.
package arena

import (
	"sync"

	"github.com/scawful/yaze-go/internal/gfx"
)

// CommandKind is the texture-upload action a consumer must perform.
type CommandKind int

const (
	CommandCreate CommandKind = iota
	CommandUpdate
	CommandDestroy
)

// TextureCommand is one enqueued texture-upload request. Commands are
// drained FIFO by the renderer's frame loop (spec.md §5 ordering
// guarantee: "texture commands are enqueued in the order of their
// source edits").
type TextureCommand struct {
	Kind      CommandKind
	BitmapRef string
	Bitmap    *gfx.Bitmap
}

// PaletteListener is notified after a palette group has changed.
type PaletteListener func(groupName string, paletteIndex int)

// SheetListener is notified after a tile8 sheet has been modified by a
// component outside this engine's scope (the pixel editor).
type SheetListener func(sheetID int)

// Arena owns every decoded sheet, the blockset atlas, and area bitmaps,
// and brokers texture-upload and palette/sheet change notifications
// between C3/C4 and C7.
type Arena struct {
	mu sync.Mutex

	sheets    map[int]*gfx.Sheet
	blockset  *gfx.Blockset
	bitmaps   map[string]*gfx.Bitmap
	commands  []TextureCommand

	paletteListeners map[int]PaletteListener
	sheetListeners   map[int]SheetListener
	nextListenerID   int

	shutdown bool
}

// New constructs an empty arena.
func New() *Arena {
	return &Arena{
		sheets:           make(map[int]*gfx.Sheet),
		bitmaps:          make(map[string]*gfx.Bitmap),
		paletteListeners: make(map[int]PaletteListener),
		sheetListeners:   make(map[int]SheetListener),
	}
}

// StoreSheet records a decoded tile8 sheet under its id, replacing any
// sheet already stored there.
func (a *Arena) StoreSheet(s *gfx.Sheet) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sheets[s.ID] = s
}

// Sheet looks up a previously stored sheet by id.
func (a *Arena) Sheet(id int) (*gfx.Sheet, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.sheets[id]
	return s, ok
}

// StoreBlockset records the current blockset atlas.
func (a *Arena) StoreBlockset(b *gfx.Blockset) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.blockset = b
}

// Blockset returns the current blockset atlas, if any.
func (a *Arena) Blockset() *gfx.Blockset {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.blockset
}

// StoreBitmap records a composed area bitmap under a caller-chosen
// reference key (typically the area id as a string).
func (a *Arena) StoreBitmap(ref string, b *gfx.Bitmap) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bitmaps[ref] = b
}

// Bitmap looks up a previously stored bitmap by reference key.
func (a *Arena) Bitmap(ref string) (*gfx.Bitmap, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.bitmaps[ref]
	return b, ok
}

// QueueTextureCommand enqueues a texture-upload request for the
// renderer's frame loop to drain.
func (a *Arena) QueueTextureCommand(kind CommandKind, ref string, bitmap *gfx.Bitmap) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.commands = append(a.commands, TextureCommand{Kind: kind, BitmapRef: ref, Bitmap: bitmap})
}

// DrainTextureCommands returns and clears every pending command, FIFO.
func (a *Arena) DrainTextureCommands() []TextureCommand {
	a.mu.Lock()
	defer a.mu.Unlock()
	cmds := a.commands
	a.commands = nil
	return cmds
}

// RegisterPaletteListener subscribes fn to palette-change notifications
// and returns a handle usable with UnregisterPaletteListener.
func (a *Arena) RegisterPaletteListener(fn PaletteListener) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextListenerID
	a.nextListenerID++
	a.paletteListeners[id] = fn
	return id
}

// UnregisterPaletteListener removes a previously registered listener.
func (a *Arena) UnregisterPaletteListener(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.paletteListeners, id)
}

// NotifyPaletteChanged is called by C3 after a palette group's buffer
// has been updated; it fans out to every registered listener (C7).
func (a *Arena) NotifyPaletteChanged(groupName string, paletteIndex int) {
	a.mu.Lock()
	listeners := make([]PaletteListener, 0, len(a.paletteListeners))
	for _, l := range a.paletteListeners {
		listeners = append(listeners, l)
	}
	a.mu.Unlock()

	for _, l := range listeners {
		l(groupName, paletteIndex)
	}
}

// RegisterSheetListener subscribes fn to sheet-modification notifications.
func (a *Arena) RegisterSheetListener(fn SheetListener) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextListenerID
	a.nextListenerID++
	a.sheetListeners[id] = fn
	return id
}

// UnregisterSheetListener removes a previously registered sheet listener.
func (a *Arena) UnregisterSheetListener(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sheetListeners, id)
}

// NotifySheetModified is called when a tile8 sheet is edited by a
// component outside this engine's scope (the pixel editor).
func (a *Arena) NotifySheetModified(sheetID int) {
	a.mu.Lock()
	listeners := make([]SheetListener, 0, len(a.sheetListeners))
	for _, l := range a.sheetListeners {
		listeners = append(listeners, l)
	}
	a.mu.Unlock()

	for _, l := range listeners {
		l(sheetID)
	}
}

// Shutdown marks the arena inactive; callers must invoke it before the
// renderer is torn down (spec.md C11).
func (a *Arena) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.shutdown = true
	a.commands = nil
}

// IsShutdown reports whether Shutdown has been called.
func (a *Arena) IsShutdown() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.shutdown
}

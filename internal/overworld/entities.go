package overworld

import (
	"github.com/scawful/yaze-go/internal/rom"
	"github.com/scawful/yaze-go/internal/yzerr"
)

// Entity is the common base every entity variant extends (spec.md §9:
// "a tagged variant sharing a common base"). Coordinates are stored
// only as map-local tile units; world-pixel coordinates are derived
// (Open Question 2, resolved in DESIGN.md). Entities are a small
// closed set dispatched by concrete type, not an open-ended hierarchy
// (spec.md §9 "Polymorphism").
type Entity struct {
	MapID   uint8
	X, Y    uint8 // map-local, 16px units
	Deleted bool
}

// WorldPixelX/Y derive the entity's pixel position within its map from
// the map-local tile coordinate (16px snap, per spec.md §4.7 entity
// edits); the map's own offset in the world is not added.
func (e Entity) WorldPixelX() int { return int(e.X) * 16 }
func (e Entity) WorldPixelY() int { return int(e.Y) * 16 }

// Entrance is a doorway/hole into a map.
type Entrance struct {
	Entity
	EntranceID uint8
}

// DoorType identifies the kind of door an Exit's two door slots carry.
type DoorType uint8

// Exit connects two maps, carrying both the map-local grid position and
// the room's internal scroll/camera/player coordinates.
type Exit struct {
	Entity
	RoomID               uint16
	ScrollX, ScrollY     int16
	CameraX, CameraY     int16
	PlayerX, PlayerY     int16
	DoorType1, DoorType2 DoorType
}

// Item is a collectible placed on the overworld.
type Item struct {
	Entity
	ItemID uint8
}

// Sprite is an overworld enemy/NPC, scoped to one of the three game
// states (spec.md §3.2).
type Sprite struct {
	Entity
	GameState uint8 // 0, 1, or 2
	SpriteID  uint8
}

// InsertEntrance repurposes the first deleted slot, or fails with
// SlotsExhausted (spec.md B2). The underlying slice never shrinks or
// grows on delete/insert; it is only ever reused (spec.md §3.4).
func InsertEntrance(slots []Entrance, value Entrance) (int, error) {
	for i := range slots {
		if slots[i].Deleted {
			value.Deleted = false
			slots[i] = value
			return i, nil
		}
	}
	return -1, yzerr.New(yzerr.SlotsExhausted, "InsertEntrance", "no deleted entrance slot available")
}

// InsertExit mirrors InsertEntrance for the exits collection.
func InsertExit(slots []Exit, value Exit) (int, error) {
	for i := range slots {
		if slots[i].Deleted {
			value.Deleted = false
			slots[i] = value
			return i, nil
		}
	}
	return -1, yzerr.New(yzerr.SlotsExhausted, "InsertExit", "no deleted exit slot available")
}

// InsertItem mirrors InsertEntrance for the items collection.
func InsertItem(slots []Item, value Item) (int, error) {
	for i := range slots {
		if slots[i].Deleted {
			value.Deleted = false
			slots[i] = value
			return i, nil
		}
	}
	return -1, yzerr.New(yzerr.SlotsExhausted, "InsertItem", "no deleted item slot available")
}

// InsertSprite mirrors InsertEntrance for the per-game-state sprite collection.
func InsertSprite(slots []Sprite, value Sprite) (int, error) {
	for i := range slots {
		if slots[i].Deleted {
			value.Deleted = false
			slots[i] = value
			return i, nil
		}
	}
	return -1, yzerr.New(yzerr.SlotsExhausted, "InsertSprite", "no deleted sprite slot available")
}

// DeleteEntranceAt marks a slot deleted without shrinking the backing
// array (spec.md §3.4).
func DeleteEntranceAt(slots []Entrance, idx int) error {
	if idx < 0 || idx >= len(slots) {
		return yzerr.Newf(yzerr.InvalidArgument, "DeleteEntranceAt", "index %d out of range", idx)
	}
	slots[idx].Deleted = true
	return nil
}

// DeleteExitAt mirrors DeleteEntranceAt for exits.
func DeleteExitAt(slots []Exit, idx int) error {
	if idx < 0 || idx >= len(slots) {
		return yzerr.Newf(yzerr.InvalidArgument, "DeleteExitAt", "index %d out of range", idx)
	}
	slots[idx].Deleted = true
	return nil
}

// DeleteItemAt mirrors DeleteEntranceAt for items.
func DeleteItemAt(slots []Item, idx int) error {
	if idx < 0 || idx >= len(slots) {
		return yzerr.Newf(yzerr.InvalidArgument, "DeleteItemAt", "index %d out of range", idx)
	}
	slots[idx].Deleted = true
	return nil
}

// DeleteSpriteAt mirrors DeleteEntranceAt for sprites.
func DeleteSpriteAt(slots []Sprite, idx int) error {
	if idx < 0 || idx >= len(slots) {
		return yzerr.Newf(yzerr.InvalidArgument, "DeleteSpriteAt", "index %d out of range", idx)
	}
	slots[idx].Deleted = true
	return nil
}

// Fixed entity array capacities (spec.md §6.1 "fixed-capacity per-world
// arrays"). The exact vanilla/ZCO byte layout for these tables isn't
// present in the reference source this engine was built from, so these
// capacities are the engine's own constant block, sized generously
// enough that ordinary ROM hacks never exhaust them; decoding the
// precise on-disk layout is left for the save/load codec to refine.
const (
	MaxEntrances = 0x81
	MaxExits     = 0x4F
	MaxItems     = 0x310
	MaxSprites   = 0x7F
)

// Entity table addresses (PC offsets). Like the area tables in
// area.go, these are not recovered from a live ROM dump -- the
// filtered original_source this engine was built from doesn't carry
// zelda3/overworld's real entity table addresses -- so this is the
// engine's own constant block, laid out at a fixed record stride per
// collection, parked well clear of the area-record tables in area.go.
// A slot's "deleted" flag is a 0xFF map id sentinel on disk, since the
// vanilla format has no explicit tombstone bit.
const (
	entranceTableAddr   = 0x0F0000
	entranceIDTableAddr = entranceTableAddr + MaxEntrances*3

	exitTableAddr = 0x0F1000 // mapID,x,y,roomID(2),scrollX(2),scrollY(2),cameraX(2),cameraY(2),playerX(2),playerY(2),doorType1,doorType2: 19B/record

	itemTableAddr   = 0x0F3000
	itemIDTableAddr = itemTableAddr + MaxItems*3

	spriteTableAddrBase = 0x0F8000 // 3 game states * MaxSprites * 4B
)

const deletedMapID = 0xFF

// loadEntities decodes the fixed-capacity entity collections from r,
// treating a map id of deletedMapID as an empty, reusable slot (spec.md
// §3.4 "created by insert-into-deleted-slot").
func (o *Overworld) loadEntities(r *rom.ROM) error {
	o.Entrances = make([]Entrance, MaxEntrances)
	for i := range o.Entrances {
		mapID, err := r.ReadByte(entranceTableAddr + i*3)
		if err != nil {
			return err
		}
		x, err := r.ReadByte(entranceTableAddr + i*3 + 1)
		if err != nil {
			return err
		}
		y, err := r.ReadByte(entranceTableAddr + i*3 + 2)
		if err != nil {
			return err
		}
		eid, err := r.ReadByte(entranceIDTableAddr + i)
		if err != nil {
			return err
		}
		o.Entrances[i] = Entrance{
			Entity:     Entity{MapID: mapID, X: x, Y: y, Deleted: mapID == deletedMapID},
			EntranceID: eid,
		}
	}

	o.Exits = make([]Exit, MaxExits)
	for i := range o.Exits {
		base := exitTableAddr + i*19
		mapID, err := r.ReadByte(base)
		if err != nil {
			return err
		}
		x, err := r.ReadByte(base + 1)
		if err != nil {
			return err
		}
		y, err := r.ReadByte(base + 2)
		if err != nil {
			return err
		}
		roomID, err := r.ReadWord(base + 3)
		if err != nil {
			return err
		}
		scrollX, err := r.ReadWord(base + 5)
		if err != nil {
			return err
		}
		scrollY, err := r.ReadWord(base + 7)
		if err != nil {
			return err
		}
		cameraX, err := r.ReadWord(base + 9)
		if err != nil {
			return err
		}
		cameraY, err := r.ReadWord(base + 11)
		if err != nil {
			return err
		}
		playerX, err := r.ReadWord(base + 13)
		if err != nil {
			return err
		}
		playerY, err := r.ReadWord(base + 15)
		if err != nil {
			return err
		}
		door1, err := r.ReadByte(base + 17)
		if err != nil {
			return err
		}
		door2, err := r.ReadByte(base + 18)
		if err != nil {
			return err
		}
		o.Exits[i] = Exit{
			Entity:    Entity{MapID: mapID, X: x, Y: y, Deleted: mapID == deletedMapID},
			RoomID:    roomID,
			ScrollX:   int16(scrollX),
			ScrollY:   int16(scrollY),
			CameraX:   int16(cameraX),
			CameraY:   int16(cameraY),
			PlayerX:   int16(playerX),
			PlayerY:   int16(playerY),
			DoorType1: DoorType(door1),
			DoorType2: DoorType(door2),
		}
	}

	o.Items = make([]Item, MaxItems)
	for i := range o.Items {
		mapID, err := r.ReadByte(itemTableAddr + i*3)
		if err != nil {
			return err
		}
		x, err := r.ReadByte(itemTableAddr + i*3 + 1)
		if err != nil {
			return err
		}
		y, err := r.ReadByte(itemTableAddr + i*3 + 2)
		if err != nil {
			return err
		}
		itemID, err := r.ReadByte(itemIDTableAddr + i)
		if err != nil {
			return err
		}
		o.Items[i] = Item{
			Entity: Entity{MapID: mapID, X: x, Y: y, Deleted: mapID == deletedMapID},
			ItemID: itemID,
		}
	}

	for gs := 0; gs < 3; gs++ {
		o.Sprites[gs] = make([]Sprite, MaxSprites)
		stateBase := spriteTableAddrBase + gs*MaxSprites*4
		for i := range o.Sprites[gs] {
			base := stateBase + i*4
			mapID, err := r.ReadByte(base)
			if err != nil {
				return err
			}
			x, err := r.ReadByte(base + 1)
			if err != nil {
				return err
			}
			y, err := r.ReadByte(base + 2)
			if err != nil {
				return err
			}
			spriteID, err := r.ReadByte(base + 3)
			if err != nil {
				return err
			}
			o.Sprites[gs][i] = Sprite{
				Entity:    Entity{MapID: mapID, X: x, Y: y, Deleted: mapID == deletedMapID},
				GameState: uint8(gs),
				SpriteID:  spriteID,
			}
		}
	}

	return nil
}

// EncodeEntities writes every entity collection back to r in the same
// fixed-record layout loadEntities reads, marking a deleted slot with
// the deletedMapID sentinel so a later load recognizes it as free.
func EncodeEntities(r *rom.ROM, entrances []Entrance, exits []Exit, items []Item, sprites [3][]Sprite) error {
	for i, e := range entrances {
		mapID := e.MapID
		if e.Deleted {
			mapID = deletedMapID
		}
		if err := r.WriteByte(entranceTableAddr+i*3, mapID); err != nil {
			return err
		}
		if err := r.WriteByte(entranceTableAddr+i*3+1, e.X); err != nil {
			return err
		}
		if err := r.WriteByte(entranceTableAddr+i*3+2, e.Y); err != nil {
			return err
		}
		if err := r.WriteByte(entranceIDTableAddr+i, e.EntranceID); err != nil {
			return err
		}
	}

	for i, e := range exits {
		base := exitTableAddr + i*19
		mapID := e.MapID
		if e.Deleted {
			mapID = deletedMapID
		}
		if err := r.WriteByte(base, mapID); err != nil {
			return err
		}
		if err := r.WriteByte(base+1, e.X); err != nil {
			return err
		}
		if err := r.WriteByte(base+2, e.Y); err != nil {
			return err
		}
		if err := r.WriteWord(base+3, e.RoomID); err != nil {
			return err
		}
		if err := r.WriteWord(base+5, uint16(e.ScrollX)); err != nil {
			return err
		}
		if err := r.WriteWord(base+7, uint16(e.ScrollY)); err != nil {
			return err
		}
		if err := r.WriteWord(base+9, uint16(e.CameraX)); err != nil {
			return err
		}
		if err := r.WriteWord(base+11, uint16(e.CameraY)); err != nil {
			return err
		}
		if err := r.WriteWord(base+13, uint16(e.PlayerX)); err != nil {
			return err
		}
		if err := r.WriteWord(base+15, uint16(e.PlayerY)); err != nil {
			return err
		}
		if err := r.WriteByte(base+17, uint8(e.DoorType1)); err != nil {
			return err
		}
		if err := r.WriteByte(base+18, uint8(e.DoorType2)); err != nil {
			return err
		}
	}

	for i, it := range items {
		mapID := it.MapID
		if it.Deleted {
			mapID = deletedMapID
		}
		if err := r.WriteByte(itemTableAddr+i*3, mapID); err != nil {
			return err
		}
		if err := r.WriteByte(itemTableAddr+i*3+1, it.X); err != nil {
			return err
		}
		if err := r.WriteByte(itemTableAddr+i*3+2, it.Y); err != nil {
			return err
		}
		if err := r.WriteByte(itemIDTableAddr+i, it.ItemID); err != nil {
			return err
		}
	}

	for gs := 0; gs < 3; gs++ {
		stateBase := spriteTableAddrBase + gs*MaxSprites*4
		for i, s := range sprites[gs] {
			base := stateBase + i*4
			mapID := s.MapID
			if s.Deleted {
				mapID = deletedMapID
			}
			if err := r.WriteByte(base, mapID); err != nil {
				return err
			}
			if err := r.WriteByte(base+1, s.X); err != nil {
				return err
			}
			if err := r.WriteByte(base+2, s.Y); err != nil {
				return err
			}
			if err := r.WriteByte(base+3, s.SpriteID); err != nil {
				return err
			}
		}
	}

	return nil
}

// LiveEntranceCount returns how many entrance slots are currently live.
func LiveEntranceCount(slots []Entrance) int {
	n := 0
	for _, s := range slots {
		if !s.Deleted {
			n++
		}
	}
	return n
}

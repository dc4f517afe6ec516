// Package rom owns the ROM byte image: raw bytes, an optional 0x200-byte
// copier header, a dirty flag, and LoROM↔PC address conversion. Nothing
// outside this package interprets a byte's meaning; every field is
// looked up by address constants defined by higher layers.
package rom

import (
	"os"

	"github.com/scawful/yaze-go/internal/yzerr"
)

// HeaderSize is the size of a copier header some ROM dumps are prefixed
// with; when present it is stripped so PC offsets line up with the
// published address tables.
const HeaderSize = 0x200

// ROM is the engine's single owner of the loaded image. Every other
// component holds a borrowed reference with a lifetime no longer than
// the ROM's.
type ROM struct {
	Filename string
	Data     []byte
	Header   []byte
	Dirty    bool
}

// New constructs an empty ROM with no backing data.
func New() *ROM {
	return &ROM{Data: make([]byte, 0)}
}

// Load reads a ROM image from disk, stripping a copier header if present.
func Load(path string) (*ROM, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, yzerr.Wrap(yzerr.Io, "rom.Load", err)
	}
	r := &ROM{Filename: path}
	r.LoadBytes(raw)
	return r, nil
}

// LoadBytes replaces the ROM's image with data, splitting off a copier
// header when the payload length indicates one is present (payload size
// not a multiple of the 0x8000 LoROM bank size, but is once the 0x200
// header is removed).
func (r *ROM) LoadBytes(data []byte) {
	if len(data)%0x8000 == HeaderSize {
		r.Header = append([]byte(nil), data[:HeaderSize]...)
		r.Data = append([]byte(nil), data[HeaderSize:]...)
	} else {
		r.Header = nil
		r.Data = append([]byte(nil), data...)
	}
	r.Dirty = false
}

// Save writes the ROM image (header, if any, followed by data) to disk
// and clears the dirty flag on success.
func (r *ROM) Save(path string) error {
	out := make([]byte, 0, len(r.Header)+len(r.Data))
	out = append(out, r.Header...)
	out = append(out, r.Data...)
	if err := os.WriteFile(path, out, 0644); err != nil {
		return yzerr.Wrap(yzerr.Io, "rom.Save", err)
	}
	r.Dirty = false
	return nil
}

// Size returns the length of the headerless data image.
func (r *ROM) Size() int { return len(r.Data) }

// ReadByte reads one byte at a PC offset, bounds-checked.
func (r *ROM) ReadByte(pc int) (uint8, error) {
	if pc < 0 || pc >= len(r.Data) {
		return 0, yzerr.Newf(yzerr.InvalidArgument, "rom.ReadByte", "offset 0x%06X out of range (size 0x%06X)", pc, len(r.Data))
	}
	return r.Data[pc], nil
}

// ReadWord reads a little-endian 16-bit value at a PC offset.
func (r *ROM) ReadWord(pc int) (uint16, error) {
	if pc < 0 || pc+1 >= len(r.Data) {
		return 0, yzerr.Newf(yzerr.InvalidArgument, "rom.ReadWord", "offset 0x%06X out of range (size 0x%06X)", pc, len(r.Data))
	}
	return uint16(r.Data[pc]) | uint16(r.Data[pc+1])<<8, nil
}

// ReadLong reads a little-endian 24-bit value at a PC offset.
func (r *ROM) ReadLong(pc int) (uint32, error) {
	if pc < 0 || pc+2 >= len(r.Data) {
		return 0, yzerr.Newf(yzerr.InvalidArgument, "rom.ReadLong", "offset 0x%06X out of range (size 0x%06X)", pc, len(r.Data))
	}
	return uint32(r.Data[pc]) | uint32(r.Data[pc+1])<<8 | uint32(r.Data[pc+2])<<16, nil
}

// WriteByte writes one byte at a PC offset and marks the ROM dirty.
func (r *ROM) WriteByte(pc int, value uint8) error {
	if pc < 0 || pc >= len(r.Data) {
		return yzerr.Newf(yzerr.InvalidArgument, "rom.WriteByte", "offset 0x%06X out of range (size 0x%06X)", pc, len(r.Data))
	}
	r.Data[pc] = value
	r.Dirty = true
	return nil
}

// WriteWord writes a little-endian 16-bit value at a PC offset.
func (r *ROM) WriteWord(pc int, value uint16) error {
	if pc < 0 || pc+1 >= len(r.Data) {
		return yzerr.Newf(yzerr.InvalidArgument, "rom.WriteWord", "offset 0x%06X out of range (size 0x%06X)", pc, len(r.Data))
	}
	r.Data[pc] = uint8(value)
	r.Data[pc+1] = uint8(value >> 8)
	r.Dirty = true
	return nil
}

// WriteLong writes a little-endian 24-bit value at a PC offset.
func (r *ROM) WriteLong(pc int, value uint32) error {
	if pc < 0 || pc+2 >= len(r.Data) {
		return yzerr.Newf(yzerr.InvalidArgument, "rom.WriteLong", "offset 0x%06X out of range (size 0x%06X)", pc, len(r.Data))
	}
	r.Data[pc] = uint8(value)
	r.Data[pc+1] = uint8(value >> 8)
	r.Data[pc+2] = uint8(value >> 16)
	r.Dirty = true
	return nil
}

// At is the unchecked hot-path accessor (§5: no locks, plain indexed
// reads); callers must have validated pc themselves.
func (r *ROM) At(pc int) uint8 { return r.Data[pc] }

// LoRomToPc converts a 24-bit LoROM SNES address ($BB:AAAA, packed as
// bank<<16|addr) to a PC offset per spec.md §3.1.
func LoRomToPc(snesAddr uint32) int {
	bank := uint8(snesAddr >> 16)
	addr := uint16(snesAddr)
	return int((uint32(bank&0x7F) << 15) | uint32(addr&0x7FFF))
}

// PcToLoRom converts a PC offset to a 24-bit LoROM SNES address, packed
// as bank<<16|addr, the inverse of LoRomToPc.
func PcToLoRom(pc int) uint32 {
	bank := uint8(pc/0x8000) | 0x80
	addr := uint16(pc%0x8000) | 0x8000
	return uint32(bank)<<16 | uint32(addr)
}

// Package hackmanifest is the C10 write-conflict policy oracle: a list
// of named ROM-hack modules, each owning one or more SNES address
// ranges, consulted by the save pipeline before any byte is written.
// It never mutates the ROM itself (spec.md §4.10).
package hackmanifest

import (
	"gopkg.in/yaml.v3"

	"github.com/scawful/yaze-go/internal/yzerr"
)

// Ownership classifies who a range belongs to.
type Ownership string

const (
	OwnershipPatch  Ownership = "patch"
	OwnershipUser   Ownership = "user"
	OwnershipShared Ownership = "shared"
)

// Policy governs how a write-range conflict is handled during save
// (spec.md §4.8 "Write-conflict gate").
type Policy string

const (
	PolicyAllow Policy = "allow"
	PolicyWarn  Policy = "warn"
	PolicyBlock Policy = "block"
)

// SnesRange is an inclusive [Start, End] SNES address range.
type SnesRange struct {
	Start uint32 `yaml:"start"`
	End   uint32 `yaml:"end"`
}

// Contains reports whether addr falls within the range.
func (r SnesRange) Contains(addr uint32) bool { return addr >= r.Start && addr <= r.End }

// Overlaps reports whether r and o share at least one address.
func (r SnesRange) Overlaps(o SnesRange) bool { return r.Start <= o.End && o.Start <= r.End }

// Module is one named ROM-hack module and the ranges it owns.
type Module struct {
	Name      string      `yaml:"name"`
	Ownership Ownership   `yaml:"ownership"`
	Ranges    []SnesRange `yaml:"ranges"`
}

// Manifest is the full list of modules loaded from a project's
// hack-manifest file (spec.md §4.9 "hack-manifest reference").
type Manifest struct {
	Modules []Module `yaml:"modules"`
}

// Parse decodes a YAML-formatted manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, yzerr.Wrap(yzerr.Decode, "hackmanifest.Parse", err)
	}
	return &m, nil
}

// Marshal serializes the manifest back to YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(m)
	if err != nil {
		return nil, yzerr.Wrap(yzerr.Encoding, "Manifest.Marshal", err)
	}
	return out, nil
}

// PcRange is a projected write range expressed in PC offsets, as C8
// computes them before converting to SNES-logical addresses.
type PcRange struct {
	Start, End int
}

// Conflict is one write range that overlaps a manifest-owned range.
type Conflict struct {
	Range      SnesRange
	ModuleName string
	Ownership  Ownership
}

// AnalyzePcWriteRanges converts each PC range to a SNES range (LoROM,
// bank 0x80 offset) and reports every module-owned range it overlaps
// (spec.md §4.10).
func (m *Manifest) AnalyzePcWriteRanges(pcToSnes func(pc int) uint32, ranges []PcRange) []Conflict {
	var conflicts []Conflict
	for _, pr := range ranges {
		snesStart := pcToSnes(pr.Start)
		snesEnd := pcToSnes(pr.End)
		writeRange := SnesRange{Start: snesStart, End: snesEnd}
		for _, mod := range m.Modules {
			for _, owned := range mod.Ranges {
				if writeRange.Overlaps(owned) {
					conflicts = append(conflicts, Conflict{Range: owned, ModuleName: mod.Name, Ownership: mod.Ownership})
				}
			}
		}
	}
	return conflicts
}

// IsAddressOwned reports the owning module and ownership tag for a
// single SNES address, if any module claims it.
func (m *Manifest) IsAddressOwned(snesAddr uint32) (Ownership, string, bool) {
	for _, mod := range m.Modules {
		for _, r := range mod.Ranges {
			if r.Contains(snesAddr) {
				return mod.Ownership, mod.Name, true
			}
		}
	}
	return "", "", false
}

package hackmanifest

import "testing"

func sampleManifest() *Manifest {
	return &Manifest{Modules: []Module{
		{
			Name:      "enemizer",
			Ownership: OwnershipPatch,
			Ranges:    []SnesRange{{Start: 0x0D8000, End: 0x0D9000}},
		},
		{
			Name:      "user-sprites",
			Ownership: OwnershipUser,
			Ranges:    []SnesRange{{Start: 0x1A0000, End: 0x1A1000}},
		},
	}}
}

func identityPcToSnes(pc int) uint32 { return uint32(pc) }

func TestParse_RoundTripsYAML(t *testing.T) {
	m := sampleManifest()
	data, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(back.Modules) != 2 || back.Modules[0].Name != "enemizer" {
		t.Fatalf("round trip mismatch: %+v", back.Modules)
	}
}

func TestAnalyzePcWriteRanges_FindsOverlap(t *testing.T) {
	m := sampleManifest()
	conflicts := m.AnalyzePcWriteRanges(identityPcToSnes, []PcRange{
		{Start: 0x0D8500, End: 0x0D8600},
	})
	if len(conflicts) != 1 || conflicts[0].ModuleName != "enemizer" {
		t.Fatalf("expected 1 conflict with enemizer, got %+v", conflicts)
	}
}

func TestAnalyzePcWriteRanges_NoOverlapIsEmpty(t *testing.T) {
	m := sampleManifest()
	conflicts := m.AnalyzePcWriteRanges(identityPcToSnes, []PcRange{
		{Start: 0x000000, End: 0x000100},
	})
	if len(conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %+v", conflicts)
	}
}

func TestIsAddressOwned(t *testing.T) {
	m := sampleManifest()
	owner, name, ok := m.IsAddressOwned(0x0D8050)
	if !ok || owner != OwnershipPatch || name != "enemizer" {
		t.Fatalf("IsAddressOwned = %v, %q, %v; want patch, enemizer, true", owner, name, ok)
	}
	if _, _, ok := m.IsAddressOwned(0xFFFFFF); ok {
		t.Fatalf("expected unowned address to report false")
	}
}

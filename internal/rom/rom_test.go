package rom

import "testing"

func TestLoadBytes_StripsHeaderWhenPresent(t *testing.T) {
	headered := make([]byte, HeaderSize+0x8000)
	headered[0] = 0xAA
	headered[HeaderSize] = 0xBB

	r := New()
	r.LoadBytes(headered)

	if len(r.Header) != HeaderSize {
		t.Fatalf("expected header stripped, got header len %d", len(r.Header))
	}
	if r.Data[0] != 0xBB {
		t.Fatalf("expected data[0]=0xBB after header strip, got 0x%02X", r.Data[0])
	}
	if r.Dirty {
		t.Fatalf("freshly loaded ROM must not be dirty")
	}
}

func TestLoadBytes_NoHeader(t *testing.T) {
	plain := make([]byte, 0x8000)
	plain[0] = 0xCC

	r := New()
	r.LoadBytes(plain)

	if len(r.Header) != 0 {
		t.Fatalf("expected no header, got len %d", len(r.Header))
	}
	if r.Data[0] != 0xCC {
		t.Fatalf("expected data[0]=0xCC, got 0x%02X", r.Data[0])
	}
}

func TestWriteByte_SetsDirtyAndOutOfRangeErrors(t *testing.T) {
	r := New()
	r.LoadBytes(make([]byte, 0x8000))

	if err := r.WriteByte(0x10, 0x42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Dirty {
		t.Fatalf("expected dirty flag set after write")
	}
	v, _ := r.ReadByte(0x10)
	if v != 0x42 {
		t.Fatalf("expected 0x42, got 0x%02X", v)
	}

	if err := r.WriteByte(len(r.Data), 0x00); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestLoRomToPc(t *testing.T) {
	cases := []struct {
		snes uint32
		pc   int
	}{
		{0x808000, 0x000000},
		{0x00FFFF, 0x007FFF},
		{0x0E0000, 0x070000},
	}
	for _, c := range cases {
		if got := LoRomToPc(c.snes); got != c.pc {
			t.Errorf("LoRomToPc(0x%06X) = 0x%06X, want 0x%06X", c.snes, got, c.pc)
		}
	}
}

func TestLoRomToPc_PcToLoRom_RoundTrip(t *testing.T) {
	for _, pc := range []int{0, 0x8000, 0x123456 & 0x3FFFFF} {
		snes := PcToLoRom(pc)
		back := LoRomToPc(snes)
		if back != pc {
			t.Errorf("round trip mismatch: pc=0x%06X -> snes=0x%06X -> pc=0x%06X", pc, snes, back)
		}
	}
}

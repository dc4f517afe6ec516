package overworld

import "github.com/scawful/yaze-go/internal/yzerr"

// ScreenCodec is the black-box screen compression codec (spec.md §9):
// the core depends on it only through Encode/Decode, never on its
// internal format. A production build wires in the game-native
// LZ-style codec; this package ships an uncompressed passthrough codec
// sufficient for round-tripping tile data during development.
type ScreenCodec interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte, expectedLen int) ([]byte, error)
}

// DefaultCodec is the codec used when none is supplied to Load/Save.
var DefaultCodec ScreenCodec = passthroughCodec{}

// passthroughCodec stores the payload uncompressed, with no length
// prefix: Encode returns a copy of its input and never fails, and Decode
// returns the first expectedLen bytes, or a Decode error when given
// fewer. It round-trips without committing this package to any
// particular compression scheme.
type passthroughCodec struct{}

func (passthroughCodec) Encode(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (passthroughCodec) Decode(data []byte, expectedLen int) ([]byte, error) {
	if len(data) < expectedLen {
		return nil, yzerr.Newf(yzerr.Decode, "passthroughCodec.Decode", "truncated screen: have %d bytes, want %d", len(data), expectedLen)
	}
	out := make([]byte, expectedLen)
	copy(out, data[:expectedLen])
	return out, nil
}

// Package tiling converts Intel tiled framebuffer layouts to linear
// row-major layout.
//
// Intel GPUs store scanout buffers in fixed-size rectangular tiles for
// memory bandwidth reasons. A tiled buffer read linearly is scrambled;
// recovering row-major order requires remapping every pixel through the
// tile geometry. This package implements that remap for the X, Y, and Yf
// tile layouts, plus best-effort detection of the layout from a DRM
// format modifier.
package tiling

import "errors"

// Mode identifies a tile layout.
type Mode int

const (
	// None means the buffer is already linear.
	None Mode = iota
	// X is the Intel X-tiled layout (512-byte × 8-row tiles).
	X
	// Y is the Intel Y-tiled layout (128-byte × 32-row tiles).
	Y
	// Yf is the Intel Yf-tiled layout (same geometry as Y).
	Yf
)

// String returns the layout name as it appears in capture listings.
func (m Mode) String() string {
	switch m {
	case X:
		return "X-tiled"
	case Y:
		return "Y-tiled"
	case Yf:
		return "Yf-tiled"
	default:
		return "Linear"
	}
}

// DRM format modifiers for the Intel tile layouts, as defined by
// drm_fourcc.h: fourcc_mod_code(INTEL, n) with vendor code 0x01.
const (
	ModifierLinear  uint64 = 0
	ModifierXTiled  uint64 = 0x01<<56 | 1
	ModifierYTiled  uint64 = 0x01<<56 | 2
	ModifierYfTiled uint64 = 0x01<<56 | 3
)

// Tile geometry in bytes × rows.
const (
	tileXWidth  = 512
	tileXHeight = 8
	tileYWidth  = 128
	tileYHeight = 32
)

// ErrUnknownMode is returned by Convert when the mode has no tile
// geometry. Mode None is deliberately included: a linear buffer needs no
// conversion and callers are expected to skip the call entirely.
var ErrUnknownMode = errors.New("tiling: unknown tiling mode")

// geometry returns the tile width in bytes and height in rows for a
// convertible mode.
func geometry(m Mode) (tileW, tileH uint32, err error) {
	switch m {
	case X:
		return tileXWidth, tileXHeight, nil
	case Y, Yf:
		return tileYWidth, tileYHeight, nil
	default:
		return 0, 0, ErrUnknownMode
	}
}

// Detect guesses the tile layout of a framebuffer from its DRM format
// modifier and row pitch.
//
// An exact Intel modifier match wins. A zero (linear) modifier means no
// tiling. For any other modifier the result is a heuristic: a pitch that
// is a multiple of the X-tile width suggests X-tiling, otherwise the
// buffer is assumed linear. The heuristic is best-effort and can
// misclassify; callers should treat the result as a default, not a
// guarantee.
func Detect(modifier uint64, pitch uint32) Mode {
	switch modifier {
	case ModifierXTiled:
		return X
	case ModifierYTiled:
		return Y
	case ModifierYfTiled:
		return Yf
	case ModifierLinear:
		return None
	default:
		if pitch%tileXWidth == 0 {
			return X
		}
		return None
	}
}

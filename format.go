package framebuffer

// PixelFormat is a DRM fourcc pixel format code. Captures carry the
// code through untouched; the store never converts between formats.
type PixelFormat uint32

// fourcc builds a format code from its four characters, little-endian
// as in drm_fourcc.h.
func fourcc(a, b, c, d byte) PixelFormat {
	return PixelFormat(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

// Pixel formats seen on scanout buffers.
var (
	FormatXRGB8888 = fourcc('X', 'R', '2', '4')
	FormatARGB8888 = fourcc('A', 'R', '2', '4')
	FormatRGB565   = fourcc('R', 'G', '1', '6')
	FormatXBGR8888 = fourcc('X', 'B', '2', '4')
	FormatABGR8888 = fourcc('A', 'B', '2', '4')
)

// String returns the format name, or "UNKNOWN" for codes outside the
// table.
func (f PixelFormat) String() string {
	switch f {
	case FormatXRGB8888:
		return "XRGB8888"
	case FormatARGB8888:
		return "ARGB8888"
	case FormatRGB565:
		return "RGB565"
	case FormatXBGR8888:
		return "XBGR8888"
	case FormatABGR8888:
		return "ABGR8888"
	default:
		return "UNKNOWN"
	}
}

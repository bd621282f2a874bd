package framebuffer

import (
	"encoding/binary"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/bmp"

	"github.com/carbonvibes/Framebuffer/tiling"
)

// Capture is a metadata snapshot of one history slot, as returned by
// Store.Frames. The pixel buffer itself stays owned by the store; use
// Store.ReadRaw to read its bytes.
type Capture struct {
	// ID uniquely identifies this capture across slot reuse.
	ID uuid.UUID

	// Index is the storage slot the capture occupies.
	Index int

	// DeviceID and BufferID are the opaque identifiers from the
	// originating event, kept for display only.
	DeviceID uint64
	BufferID uint64

	// Width and Height in pixels.
	Width  uint32
	Height uint32

	// Format is the fourcc pixel format code.
	Format PixelFormat

	// Pitch is the source row stride in bytes.
	Pitch uint32

	// BufferSize is the committed pixel buffer size in bytes. Zero for
	// metadata-only captures.
	BufferSize int

	// Tiling is the detected source memory layout.
	Tiling tiling.Mode

	// CapturedAt is when the pipeline run committed the capture.
	CapturedAt time.Time

	// Detiled reports whether a tile-to-linear conversion was applied.
	Detiled bool

	// HasPixelData reports whether the capture holds real bytes rather
	// than metadata alone.
	HasPixelData bool

	// Prefix is a copy of the first bytes of the pixel buffer (at most
	// 64), for listings. Empty for metadata-only captures.
	Prefix []byte
}

// FirstPixelARGB reinterprets the first four captured bytes as a 32-bit
// ARGB value. ok is false when fewer than four bytes were captured.
func (c Capture) FirstPixelARGB() (pixel uint32, ok bool) {
	if len(c.Prefix) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(c.Prefix), true
}

// ToImage wraps linear 4-byte-per-pixel capture data in an image.RGBA.
// The bytes are taken as-is: for ARGB/XRGB captures the channel order
// in the image is technically wrong, but the content is recognizable
// and the export is byte-faithful, which is what matters for
// inspection. Data shorter than width*height*4 yields an image with the
// missing tail black.
func ToImage(data []byte, width, height uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	copy(img.Pix, data)
	return img
}

// SavePNG writes an image to a PNG file.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return png.Encode(f, img)
}

// SaveBMP writes an image to a BMP file.
func SaveBMP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return bmp.Encode(f, img)
}

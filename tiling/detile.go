package tiling

import "errors"

// Destination pixels are always 4 bytes wide. The converter moves bytes;
// it never reinterprets them, so 32-bit formats of any channel order
// come out byte-for-byte intact.
const bytesPerPixel = 4

// ErrNilBuffer is returned by Convert when either buffer is absent.
var ErrNilBuffer = errors.New("tiling: nil source or destination buffer")

// Convert remaps a tiled source buffer into a linear destination buffer.
//
// width and height are in pixels, pitch is the source row stride in
// bytes. The destination is linear with a row stride of width*4 bytes.
// mode must be a convertible layout (X, Y, or Yf); pass nothing for
// linear buffers, there is no conversion to do.
//
// Out-of-range accesses are guarded per byte: a source or destination
// offset past height*pitch or height*width*4 (or past the actual buffer
// length, whichever is smaller) is skipped silently and the destination
// byte keeps its prior value. This makes truncated destinations safe —
// the capture store caps buffers at a fixed size and simply loses the
// tail rows.
//
// The remap is deterministic and must stay bit-exact: raw captures
// written by earlier versions of this tool are re-converted offline with
// the same arithmetic.
func Convert(dst, src []byte, width, height, pitch uint32, mode Mode) error {
	if dst == nil || src == nil {
		return ErrNilBuffer
	}
	tileW, tileH, err := geometry(mode)
	if err != nil {
		return err
	}

	tileSize := tileW * tileH
	tilesPerRow := pitch / tileW

	srcLimit := height * pitch
	if uint32(len(src)) < srcLimit {
		srcLimit = uint32(len(src))
	}
	dstLimit := height * width * bytesPerPixel
	if uint32(len(dst)) < dstLimit {
		dstLimit = uint32(len(dst))
	}

	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			byteX := x * bytesPerPixel

			tileX := byteX / tileW
			tileY := y / tileH
			tileIndex := tileY*tilesPerRow + tileX

			inTileX := byteX & (tileW - 1)
			inTileY := y & (tileH - 1)

			srcOffset := tileIndex*tileSize + inTileY*tileW + inTileX
			dstOffset := y*width*bytesPerPixel + byteX

			for k := uint32(0); k < bytesPerPixel; k++ {
				if srcOffset+k < srcLimit && dstOffset+k < dstLimit {
					dst[dstOffset+k] = src[srcOffset+k]
				}
			}
		}
	}
	return nil
}

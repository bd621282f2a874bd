package framebuffer

import (
	"fmt"
	"io"
)

// WriteReport renders the capture history as a human-readable listing,
// one block per committed capture: identifiers, geometry, format,
// layout, availability, and a short hex prefix of the pixel bytes. It
// never fails on store state; the only errors are the writer's.
func (s *Store) WriteReport(w io.Writer) error {
	frames := s.Frames()

	if _, err := fmt.Fprintf(w, "Framebuffer Pixel Extractor\nCaptured framebuffers: %d\n\n", len(frames)); err != nil {
		return err
	}

	for _, c := range frames {
		if err := writeCapture(w, c); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Usage:\n  fbsnoop replay <dir> --dump framebuffer.raw  # raw pixel data of the newest capture\n  The dumped data is already in linear format (detiled if needed)\n")
	return err
}

func writeCapture(w io.Writer, c Capture) error {
	avail := "NOT AVAILABLE"
	if c.HasPixelData {
		avail = "AVAILABLE (LINEAR)"
	}
	detiled := "NO"
	if c.Detiled {
		detiled = "YES"
	}

	_, err := fmt.Fprintf(w,
		"Capture %d:\n"+
			"  ID: %s\n"+
			"  Timestamp: %d ns\n"+
			"  Device: %#x\n"+
			"  Framebuffer: %#x\n"+
			"  Dimensions: %dx%d\n"+
			"  Format: 0x%08x (%s)\n"+
			"  Pitch: %d bytes/row\n"+
			"  Buffer size: %d bytes\n"+
			"  Tiling: %s\n"+
			"  Detiled: %s\n"+
			"  Pixel data: %s\n",
		c.Index, c.ID, c.CapturedAt.UnixNano(), c.DeviceID, c.BufferID,
		c.Width, c.Height, uint32(c.Format), c.Format, c.Pitch,
		c.BufferSize, c.Tiling, detiled, avail)
	if err != nil {
		return err
	}

	if c.HasPixelData && len(c.Prefix) > 0 {
		if _, err := fmt.Fprintf(w, "  First 64 bytes (hex): %s\n", hexPrefix(c.Prefix)); err != nil {
			return err
		}
		if pixel, ok := c.FirstPixelARGB(); ok {
			if _, err := fmt.Fprintf(w, "  First pixel (ARGB): 0x%08x\n", pixel); err != nil {
				return err
			}
		}
	}
	_, err = fmt.Fprintln(w)
	return err
}

// hexPrefix formats pixel bytes grouped four to a word, sixteen to a
// line, matching the listing layout inspection scripts parse.
func hexPrefix(data []byte) string {
	const indent = "\n                        "
	out := make([]byte, 0, len(data)*3)
	for i, b := range data {
		out = append(out, fmt.Sprintf("%02x", b)...)
		switch {
		case (i+1)%16 == 0 && i+1 < len(data):
			out = append(out, indent...)
		case (i+1)%4 == 0:
			out = append(out, ' ')
		}
	}
	return string(out)
}

package framebuffer

import (
	"strings"
	"testing"
	"time"
)

func TestWriteReport(t *testing.T) {
	at := time.Unix(0, 424242)
	s := NewStore(WithClock(func() time.Time { return at }))
	defer s.Close()

	data := fill(4*4*4, 0)
	data[0], data[1], data[2], data[3] = 0x01, 0x02, 0x03, 0x04
	if err := s.OnBufferCreated(linearEvent(0xbeef, 4, 4, data)); err != nil {
		t.Fatalf("OnBufferCreated() error = %v", err)
	}

	var sb strings.Builder
	if err := s.WriteReport(&sb); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"Captured framebuffers: 1",
		"Capture 0:",
		"Timestamp: 424242 ns",
		"Framebuffer: 0xbeef",
		"Dimensions: 4x4",
		"Format: 0x34325258 (XRGB8888)",
		"Pitch: 16 bytes/row",
		"Buffer size: 64 bytes",
		"Tiling: Linear",
		"Detiled: NO",
		"Pixel data: AVAILABLE (LINEAR)",
		"First 64 bytes (hex): 01020304 ",
		"First pixel (ARGB): 0x04030201",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\nreport:\n%s", want, out)
		}
	}
}

func TestWriteReportMetadataOnly(t *testing.T) {
	s := NewStore()
	defer s.Close()

	ev := linearEvent(1, 4, 4, nil)
	ev.Object = deadBuffer{size: 64}
	if err := s.OnBufferCreated(ev); err != nil {
		t.Fatalf("OnBufferCreated() error = %v", err)
	}

	var sb strings.Builder
	if err := s.WriteReport(&sb); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	out := sb.String()

	if !strings.Contains(out, "Pixel data: NOT AVAILABLE") {
		t.Error("report does not mark the capture as metadata-only")
	}
	if strings.Contains(out, "First 64 bytes") {
		t.Error("report prints a hex prefix for a capture without pixels")
	}
}

func TestWriteReportEmptyStore(t *testing.T) {
	s := NewStore()
	defer s.Close()

	var sb strings.Builder
	if err := s.WriteReport(&sb); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if !strings.Contains(sb.String(), "Captured framebuffers: 0") {
		t.Error("empty-store report missing zero count")
	}
}

func TestHexPrefixLayout(t *testing.T) {
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i)
	}
	got := hexPrefix(data)

	if !strings.HasPrefix(got, "00010203 04050607 ") {
		t.Errorf("hexPrefix() = %q, want 4-byte grouping", got)
	}
	if !strings.Contains(got, "\n") {
		t.Error("hexPrefix() missing line wrap after 16 bytes")
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/carbonvibes/Framebuffer/tiling"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    tiling.Mode
		wantErr bool
	}{
		{"X", tiling.X, false},
		{"x", tiling.X, false},
		{"Y", tiling.Y, false},
		{"Yf", tiling.Yf, false},
		{"YF", tiling.Yf, false},
		{"linear", tiling.None, true},
		{"", tiling.None, true},
	}
	for _, tt := range tests {
		got, err := parseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRunDetile(t *testing.T) {
	const (
		width  = 512
		height = 32
		pitch  = 512
	)
	dir := t.TempDir()

	src := make([]byte, height*pitch)
	marker := []byte{0xca, 0xfe, 0xba, 0xbe}
	copy(src[4608:], marker)
	in := filepath.Join(dir, "in.raw")
	out := filepath.Join(dir, "out.raw")
	if err := os.WriteFile(in, src, 0o644); err != nil {
		t.Fatal(err)
	}

	detileWidth, detileHeight, detilePitch, detileMode = width, height, pitch, "X"
	if err := runDetile(detileCmd, []string{in, out}); err != nil {
		t.Fatalf("runDetile() error = %v", err)
	}

	dst, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(dst) != height*width*4 {
		t.Fatalf("output is %d bytes, want %d", len(dst), height*width*4)
	}
	if got := dst[9*width*4 : 9*width*4+4]; !bytes.Equal(got, marker) {
		t.Errorf("pixel (0,9) = %x, want %x", got, marker)
	}
}

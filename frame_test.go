package framebuffer

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestFirstPixelARGB(t *testing.T) {
	c := Capture{Prefix: []byte{0x44, 0x33, 0x22, 0x11}}
	pixel, ok := c.FirstPixelARGB()
	if !ok {
		t.Fatal("FirstPixelARGB() ok = false")
	}
	if pixel != 0x11223344 {
		t.Errorf("FirstPixelARGB() = %#08x, want 0x11223344", pixel)
	}

	if _, ok := (Capture{Prefix: []byte{1, 2, 3}}).FirstPixelARGB(); ok {
		t.Error("FirstPixelARGB() ok = true with 3 bytes")
	}
}

func TestToImage(t *testing.T) {
	data := fill(2*2*4, 0)
	img := ToImage(data, 2, 2)

	if got := img.Bounds(); got != image.Rect(0, 0, 2, 2) {
		t.Errorf("Bounds() = %v, want (0,0)-(2,2)", got)
	}
	for i := range data {
		if img.Pix[i] != data[i] {
			t.Fatalf("Pix[%d] = %#x, want %#x (export must be byte-faithful)", i, img.Pix[i], data[i])
		}
	}
}

func TestToImageShortData(t *testing.T) {
	// Truncated captures produce an image with a black tail, not a
	// panic.
	img := ToImage(fill(8, 0), 2, 2)
	for i := 8; i < len(img.Pix); i++ {
		if img.Pix[i] != 0 {
			t.Fatalf("Pix[%d] = %#x, want 0", i, img.Pix[i])
		}
	}
}

func TestSavePNGAndBMP(t *testing.T) {
	dir := t.TempDir()
	img := ToImage(fill(4*4*4, 3), 4, 4)

	pngPath := filepath.Join(dir, "cap.png")
	if err := SavePNG(pngPath, img); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}
	bmpPath := filepath.Join(dir, "cap.bmp")
	if err := SaveBMP(bmpPath, img); err != nil {
		t.Fatalf("SaveBMP() error = %v", err)
	}

	for _, p := range []string{pngPath, bmpPath} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("Stat(%s) error = %v", p, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", p)
		}
	}
}

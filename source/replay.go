// Package source feeds buffer-creation events into the capture
// pipeline from descriptor files on disk.
//
// The interception mechanism that observes a live display stack is
// outside this module. Replay is its file-based stand-in: every JSON
// descriptor names the buffer's geometry and, optionally, a raw file
// with its (possibly tiled) content. Dropping descriptors into a
// directory drives the exact same pipeline a live event source would.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	framebuffer "github.com/carbonvibes/Framebuffer"
	"github.com/carbonvibes/Framebuffer/extract"
)

// Replay turns descriptor files into BufferEvents for a Handler.
type Replay struct {
	dir     string
	handler framebuffer.Handler
}

// NewReplay creates a replay source over dir. Raw data files named in
// descriptors are resolved relative to dir.
func NewReplay(dir string, h framebuffer.Handler) *Replay {
	return &Replay{dir: dir, handler: h}
}

// ProcessAll replays every *.json descriptor in the directory in name
// order. Descriptors that fail to parse are skipped with a warning;
// handler errors abort the replay.
func (r *Replay) ProcessAll() error {
	paths, err := filepath.Glob(filepath.Join(r.dir, "*.json"))
	if err != nil {
		return err
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := r.Process(path); err != nil {
			return err
		}
	}
	return nil
}

// Process replays a single descriptor file. The buffer object built
// from the descriptor lives only for the handler call.
func (r *Replay) Process(path string) error {
	ev, err := r.parse(path)
	if err != nil {
		framebuffer.Logger().Warn("skipping bad descriptor", "path", path, "error", err)
		return nil
	}
	defer func() {
		if fb, ok := ev.Object.(*fileBuffer); ok {
			_ = fb.Close()
		}
	}()
	return r.handler(ev)
}

// parse reads a descriptor and builds the event. The descriptor fields
// mirror the framebuffer descriptor of a creation event:
//
//	{
//	  "device": 4096, "buffer": 66,
//	  "width": 640, "height": 480,
//	  "format": "XR24",
//	  "pitch": 2560, "modifier": 0,
//	  "data": "frame0.raw"
//	}
//
// "data" is optional; without it the buffer object is opaque and the
// capture comes out metadata-only.
func (r *Replay) parse(path string) (framebuffer.BufferEvent, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return framebuffer.BufferEvent{}, err
	}
	if !gjson.ValidBytes(raw) {
		return framebuffer.BufferEvent{}, fmt.Errorf("source: %s is not valid JSON", path)
	}
	doc := gjson.ParseBytes(raw)

	width := uint32(doc.Get("width").Uint())
	height := uint32(doc.Get("height").Uint())
	if width == 0 || height == 0 {
		return framebuffer.BufferEvent{}, fmt.Errorf("source: %s has zero dimensions", path)
	}

	ev := framebuffer.BufferEvent{
		DeviceID: doc.Get("device").Uint(),
		BufferID: doc.Get("buffer").Uint(),
		Width:    width,
		Height:   height,
		Format:   parseFormat(doc.Get("format")),
		Pitch:    uint32(doc.Get("pitch").Uint()),
		Modifier: doc.Get("modifier").Uint(),
	}
	if ev.Pitch == 0 {
		ev.Pitch = width * 4
	}

	if data := doc.Get("data"); data.Exists() {
		dataPath := data.String()
		if !filepath.IsAbs(dataPath) {
			dataPath = filepath.Join(r.dir, dataPath)
		}
		buf, err := newFileBuffer(dataPath)
		if err != nil {
			return framebuffer.BufferEvent{}, err
		}
		ev.Object = buf
	} else {
		ev.Object = opaqueObject{size: int(height) * int(ev.Pitch)}
	}
	return ev, nil
}

// parseFormat accepts a fourcc string ("XR24") or a numeric code.
func parseFormat(v gjson.Result) framebuffer.PixelFormat {
	if v.Type == gjson.String {
		s := v.String()
		if len(s) == 4 {
			return framebuffer.PixelFormat(uint32(s[0]) | uint32(s[1])<<8 |
				uint32(s[2])<<16 | uint32(s[3])<<24)
		}
		return 0
	}
	return framebuffer.PixelFormat(v.Uint())
}

// opaqueObject is a buffer object with no readable backing, standing in
// for buffers the interception mechanism saw but could not reach.
type opaqueObject struct{ size int }

func (o opaqueObject) Size() int { return o.size }

// fileBuffer exposes a raw file through the paged access path, reading
// one page at a time the way a page-cache walk would.
type fileBuffer struct {
	f    *os.File
	size int
}

const filePageSize = 4096

func newFileBuffer(path string) (*fileBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileBuffer{f: f, size: int(info.Size())}, nil
}

func (b *fileBuffer) Size() int     { return b.size }
func (b *fileBuffer) PageSize() int { return filePageSize }

// Page reads page i. The release func is a no-op: nothing is pinned,
// but the extract contract wants a scoped release per page.
func (b *fileBuffer) Page(i int) ([]byte, func(), error) {
	offset := int64(i) * filePageSize
	if offset >= int64(b.size) {
		return nil, nil, nil
	}
	page := make([]byte, filePageSize)
	n, err := b.f.ReadAt(page, offset)
	if n == 0 && err != nil {
		return nil, nil, err
	}
	return page[:n], func() {}, nil
}

// Close releases the underlying file.
func (b *fileBuffer) Close() error { return b.f.Close() }

// descriptorExt guards the watcher against reacting to raw data files.
func isDescriptor(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

var _ extract.PagedBuffer = (*fileBuffer)(nil)
var _ extract.Buffer = opaqueObject{}

package framebuffer

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carbonvibes/Framebuffer/extract"
	"github.com/carbonvibes/Framebuffer/tiling"
)

const (
	// DefaultCapacity is the number of history slots a store holds.
	DefaultCapacity = 5

	// MaxCaptureSize caps a single capture's pixel buffer: a 1080p-high
	// ARGB frame at up to 3840 pixels per row. Larger frames are
	// truncated to this size, never rejected.
	MaxCaptureSize = 3840 * 1080 * 4

	// prefixLen is how many leading pixel bytes a Capture snapshot
	// carries for listings.
	prefixLen = 64
)

// Store errors.
var (
	// ErrNoData is returned by ReadRaw when no capture in the history
	// holds pixel data.
	ErrNoData = errors.New("framebuffer: no capture with pixel data")

	// ErrOutOfMemory is returned when a pixel or scratch buffer could
	// not be allocated. The targeted slot is left invalid.
	ErrOutOfMemory = errors.New("framebuffer: pixel buffer allocation failed")

	// ErrNilBufferObject is returned for events that carry no buffer
	// object to read from.
	ErrNilBufferObject = errors.New("framebuffer: event carries no buffer object")
)

// slot is one owned entry of the circular capture history. Its
// pixelData is owned exclusively by the slot and is replaced wholesale
// on each capture into it.
type slot struct {
	id           uuid.UUID
	deviceID     uint64
	bufferID     uint64
	pixelData    []byte
	width        uint32
	height       uint32
	format       PixelFormat
	pitch        uint32
	tiling       tiling.Mode
	capturedAt   time.Time
	detiled      bool
	hasPixelData bool
	valid        bool
}

// release drops the slot's pixel buffer. Called before every reuse and
// on store teardown so a buffer is freed exactly once and never leaks
// across error returns.
func (sl *slot) release() {
	sl.pixelData = nil
	sl.hasPixelData = false
}

func (sl *slot) snapshot(index int) Capture {
	c := Capture{
		ID:           sl.id,
		Index:        index,
		DeviceID:     sl.deviceID,
		BufferID:     sl.bufferID,
		Width:        sl.width,
		Height:       sl.height,
		Format:       sl.format,
		Pitch:        sl.pitch,
		BufferSize:   len(sl.pixelData),
		Tiling:       sl.tiling,
		CapturedAt:   sl.capturedAt,
		Detiled:      sl.detiled,
		HasPixelData: sl.hasPixelData,
	}
	if sl.hasPixelData {
		n := prefixLen
		if n > len(sl.pixelData) {
			n = len(sl.pixelData)
		}
		c.Prefix = make([]byte, n)
		copy(c.Prefix, sl.pixelData)
	}
	return c
}

// StoreOption configures a Store during creation.
type StoreOption func(*storeOptions)

type storeOptions struct {
	capacity   int
	maxCapture int
	extractor  *extract.Extractor
	alloc      func(int) []byte
	clock      func() time.Time
}

func defaultStoreOptions() storeOptions {
	return storeOptions{
		capacity:   DefaultCapacity,
		maxCapture: MaxCaptureSize,
		alloc:      func(n int) []byte { return make([]byte, n) },
		clock:      time.Now,
	}
}

// WithCapacity sets the number of history slots. Values below 1 are
// ignored.
func WithCapacity(n int) StoreOption {
	return func(o *storeOptions) {
		if n >= 1 {
			o.capacity = n
		}
	}
}

// WithMaxCaptureSize sets the per-capture pixel buffer cap in bytes.
func WithMaxCaptureSize(n int) StoreOption {
	return func(o *storeOptions) {
		if n >= 1 {
			o.maxCapture = n
		}
	}
}

// WithExtractor sets a custom buffer extractor. Use this to change the
// backend strategy order or inject a fake for tests.
func WithExtractor(e *extract.Extractor) StoreOption {
	return func(o *storeOptions) {
		if e != nil {
			o.extractor = e
		}
	}
}

// WithAllocator sets the pixel buffer allocator. An allocator returning
// nil signals allocation failure; the pipeline surfaces that as
// ErrOutOfMemory. Mainly for tests.
func WithAllocator(alloc func(int) []byte) StoreOption {
	return func(o *storeOptions) {
		if alloc != nil {
			o.alloc = alloc
		}
	}
}

// WithClock sets the timestamp source. Mainly for tests.
func WithClock(clock func() time.Time) StoreOption {
	return func(o *storeOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// Store is a fixed-capacity circular history of captured frames. It
// owns every slot's pixel memory; a single mutex serializes all
// mutation and all reads, including the full tiling conversion of a
// pipeline run. Construct with NewStore and thread the handle through —
// no package-level singleton.
type Store struct {
	mu    sync.Mutex
	slots []slot
	count int
	next  int

	maxCapture int
	extractor  *extract.Extractor
	alloc      func(int) []byte
	clock      func() time.Time
}

// NewStore creates an empty capture store.
func NewStore(opts ...StoreOption) *Store {
	o := defaultStoreOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.extractor == nil {
		o.extractor = extract.NewExtractor()
	}
	return &Store{
		slots:      make([]slot, o.capacity),
		maxCapture: o.maxCapture,
		extractor:  o.extractor,
		alloc:      o.alloc,
		clock:      o.clock,
	}
}

// Capacity returns the number of history slots.
func (s *Store) Capacity() int { return len(s.slots) }

// Count returns how many slots hold a committed capture.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// OnBufferCreated runs the capture pipeline for one buffer-creation
// event: it claims the next circular slot, reads the buffer object's
// raw bytes, converts tiled layouts to linear, and commits the result.
// The whole run holds the store lock, so it is atomic with respect to
// other pipeline runs and to reads.
//
// An unreadable buffer object is not an error: the capture is committed
// as a metadata-only record. ErrOutOfMemory leaves the slot invalid and
// the cursor unmoved.
func (s *Store) OnBufferCreated(ev BufferEvent) error {
	if ev.Object == nil {
		return ErrNilBufferObject
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sl := &s.slots[s.next]
	sl.release()
	*sl = slot{
		id:         uuid.New(),
		deviceID:   ev.DeviceID,
		bufferID:   ev.BufferID,
		width:      ev.Width,
		height:     ev.Height,
		format:     ev.Format,
		pitch:      ev.Pitch,
		tiling:     tiling.Detect(ev.Modifier, ev.Pitch),
		capturedAt: s.clock(),
	}

	size := int(ev.Height) * int(ev.Width) * 4
	if size > s.maxCapture {
		Logger().Warn("capture truncated",
			"requested", size, "cap", s.maxCapture,
			"width", ev.Width, "height", ev.Height)
		size = s.maxCapture
	}
	buf := s.alloc(size)
	if buf == nil {
		return ErrOutOfMemory
	}

	copied, ok := s.fill(sl, ev, buf)
	if !ok {
		return ErrOutOfMemory
	}

	if copied > 0 {
		sl.pixelData = buf
		sl.hasPixelData = true
		Logger().Info("captured framebuffer",
			"id", sl.id, "width", sl.width, "height", sl.height,
			"format", sl.format.String(), "tiling", sl.tiling.String(),
			"detiled", sl.detiled, "bytes", len(buf))
	} else {
		Logger().Info("captured framebuffer metadata only",
			"id", sl.id, "width", sl.width, "height", sl.height,
			"format", sl.format.String())
	}
	sl.valid = true

	s.next = (s.next + 1) % len(s.slots)
	if s.count < len(s.slots) {
		s.count++
	}
	return nil
}

// fill extracts the event's pixel bytes into buf, going through a
// scratch buffer plus the layout converter when the source is tiled.
// It returns the number of usable linear bytes in buf; ok is false only
// on scratch allocation failure. A failed conversion after a successful
// extraction demotes the capture to metadata-only rather than exposing
// still-tiled bytes as linear.
func (s *Store) fill(sl *slot, ev BufferEvent, buf []byte) (copied int, ok bool) {
	if sl.tiling == tiling.None {
		n, err := s.extractor.Extract(ev.Object, buf)
		if err != nil {
			Logger().Debug("extraction yielded no data", "buffer", ev.BufferID, "error", err)
			return 0, true
		}
		return n, true
	}

	scratch := s.alloc(int(ev.Height) * int(ev.Pitch))
	if scratch == nil {
		return 0, false
	}
	n, err := s.extractor.Extract(ev.Object, scratch)
	if err != nil || n == 0 {
		Logger().Debug("extraction yielded no data", "buffer", ev.BufferID, "error", err)
		return 0, true
	}
	if cerr := tiling.Convert(buf, scratch, ev.Width, ev.Height, ev.Pitch, sl.tiling); cerr != nil {
		Logger().Warn("detile failed, keeping metadata only",
			"buffer", ev.BufferID, "tiling", sl.tiling.String(), "error", cerr)
		return 0, true
	}
	sl.detiled = true
	return n, true
}

// Frames returns metadata snapshots of every committed capture in
// insertion order, oldest retained first. The snapshots carry a copied
// prefix of the pixel bytes; the buffers themselves never leave the
// store.
func (s *Store) Frames() []Capture {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if s.count == len(s.slots) {
		start = s.next
	}
	out := make([]Capture, 0, s.count)
	for i := 0; i < s.count; i++ {
		idx := (start + i) % len(s.slots)
		if !s.slots[idx].valid {
			continue
		}
		out = append(out, s.slots[idx].snapshot(idx))
	}
	return out
}

// ReadRaw copies up to length bytes starting at offset from the most
// recently committed capture that has pixel data, scanning the history
// newest first. An offset at or past the buffer size returns an empty
// result and no error, end-of-data style. ErrNoData means no capture
// holds pixels at all.
func (s *Store) ReadRaw(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var target *slot
	for i := 1; i <= s.count; i++ {
		idx := (s.next - i + len(s.slots)) % len(s.slots)
		if s.slots[idx].valid && s.slots[idx].hasPixelData {
			target = &s.slots[idx]
			break
		}
	}
	if target == nil {
		return nil, ErrNoData
	}
	if offset >= len(target.pixelData) {
		return nil, nil
	}
	if rem := len(target.pixelData) - offset; length > rem {
		length = rem
	}
	out := make([]byte, length)
	copy(out, target.pixelData[offset:])
	return out, nil
}

// Close releases every slot's pixel buffer and empties the history.
// The store may be reused afterwards, but captures made before Close
// are gone.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.slots {
		s.slots[i].release()
		s.slots[i].valid = false
	}
	s.count = 0
	s.next = 0
}

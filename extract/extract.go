// Package extract copies raw bytes out of opaque graphics buffer
// objects.
//
// A buffer object is a handle to graphics memory; how its bytes can be
// reached depends on how the driver backed it. This package models each
// access path as a Backend strategy and tries them in a fixed priority
// order until one produces data. Callers that get ErrNoData back are
// expected to keep the capture as a metadata-only record — an unreadable
// buffer is a normal outcome, not a failure.
package extract

import (
	"errors"
	"sync"
)

// Common extraction errors.
var (
	// ErrNoData is returned when no backend could read any bytes out of
	// the buffer object. It is recoverable: the buffer existed, its
	// content just was not reachable from the CPU.
	ErrNoData = errors.New("extract: no backend could read the buffer object")

	// ErrUnsupported is returned by a backend when the buffer object
	// does not expose the access path that backend needs. The extractor
	// moves on to the next backend.
	ErrUnsupported = errors.New("extract: buffer object not supported by backend")
)

// Buffer is an opaque graphics buffer object. Concrete buffers
// additionally implement PagedBuffer or ExternalBuffer depending on how
// their memory can be reached.
type Buffer interface {
	// Size returns the total size of the backing memory in bytes.
	Size() int
}

// PagedBuffer is a buffer object whose backing memory is reachable one
// page at a time, the way shmem-backed objects expose their page cache
// mapping.
type PagedBuffer interface {
	Buffer

	// PageSize returns the page granularity in bytes.
	PageSize() int

	// Page maps page index i for reading. The returned release func
	// must be called as soon as the copy of that page is done; the
	// mapping must not outlive it. A nil data slice with a nil error
	// means the page is not resident and should be skipped.
	Page(i int) (data []byte, release func(), err error)
}

// ExternalBuffer is a buffer object backed by an externally imported
// memory region (a dma-buf style import) that can be mapped as a whole.
type ExternalBuffer interface {
	Buffer

	// MapExternal maps the region for reading. The caller must Unmap
	// the returned region when done.
	MapExternal() (Region, error)
}

// Region is a mapped external memory region.
type Region interface {
	// Bytes returns the mapped bytes.
	Bytes() []byte

	// IsIO reports whether the region is I/O memory rather than
	// ordinary CPU-addressable memory. I/O memory is copied through
	// the slower chunked path.
	IsIO() bool

	// Unmap releases the mapping. The slice from Bytes is invalid
	// afterwards.
	Unmap()
}

// Backend is one strategy for getting bytes out of a buffer object.
type Backend interface {
	// Name returns the backend identifier (e.g. "paged", "extmem").
	Name() string

	// TryExtract copies up to len(dst) bytes from the buffer object
	// into dst and returns the number of bytes copied. A return of
	// (0, ErrUnsupported) or (0, ErrNoData) sends the extractor on to
	// the next backend.
	TryExtract(buf Buffer, dst []byte) (int, error)
}

// registry holds registered backends by name. Selection order comes
// from backendPriority, not registration order, so init order across
// files cannot change which strategy runs first.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]Backend)
	// Priority order for extraction (first listed is tried first).
	// Paged beats extmem: shmem-backed objects are the common case and
	// page copies avoid mapping the whole buffer.
	backendPriority = []string{BackendPaged, BackendExternal}
)

// Register registers a backend under its name. This is typically called
// from init funcs in backend files. Registering an existing name
// replaces the previous backend, which is useful for testing.
func Register(b Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[b.Name()] = b
}

// Backends returns the registered backends in priority order. Backends
// with names outside the priority list are appended after it.
func Backends() []Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Backend, 0, len(registry))
	seen := make(map[string]bool, len(registry))
	for _, name := range backendPriority {
		if b, ok := registry[name]; ok {
			out = append(out, b)
			seen[name] = true
		}
	}
	for name, b := range registry {
		if !seen[name] {
			out = append(out, b)
		}
	}
	return out
}

// Extractor tries an ordered list of backends against a buffer object.
// The zero value is not usable; construct with NewExtractor.
//
// Extractors are stateless and safe for concurrent use with disjoint
// destination buffers.
type Extractor struct {
	backends []Backend
}

// NewExtractor returns an extractor over the given backends, tried in
// argument order. With no arguments it uses the registered defaults:
// paged-memory first, external-memory-map second.
func NewExtractor(backends ...Backend) *Extractor {
	if len(backends) == 0 {
		backends = Backends()
	}
	return &Extractor{backends: backends}
}

// Extract copies up to len(dst) bytes of the buffer object's content
// into dst. Backends are tried in priority order; the first one that
// yields more than zero bytes wins. Returns ErrNoData when every
// backend came up empty.
func (e *Extractor) Extract(buf Buffer, dst []byte) (int, error) {
	if buf == nil || len(dst) == 0 {
		return 0, ErrNoData
	}
	for _, b := range e.backends {
		n, err := b.TryExtract(buf, dst)
		if n > 0 {
			logger().Debug("extracted buffer bytes",
				"backend", b.Name(), "bytes", n, "size", buf.Size())
			return n, nil
		}
		if err != nil && !errors.Is(err, ErrUnsupported) && !errors.Is(err, ErrNoData) {
			logger().Warn("extraction backend failed",
				"backend", b.Name(), "error", err)
		}
	}
	return 0, ErrNoData
}

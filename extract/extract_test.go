package extract

import (
	"bytes"
	"errors"
	"testing"
)

// memPagedBuffer exposes an in-memory byte slice through the paged
// access path. Pages listed in absent are reported non-resident.
type memPagedBuffer struct {
	data     []byte
	pageSize int
	absent   map[int]bool
	released int
	mapped   int
}

func (b *memPagedBuffer) Size() int     { return len(b.data) }
func (b *memPagedBuffer) PageSize() int { return b.pageSize }

func (b *memPagedBuffer) Page(i int) ([]byte, func(), error) {
	if b.absent[i] {
		return nil, nil, nil
	}
	start := i * b.pageSize
	if start >= len(b.data) {
		return nil, nil, nil
	}
	end := start + b.pageSize
	if end > len(b.data) {
		end = len(b.data)
	}
	b.mapped++
	return b.data[start:end], func() { b.released++ }, nil
}

// memExternalBuffer exposes an in-memory byte slice as an importable
// region.
type memExternalBuffer struct {
	data     []byte
	io       bool
	mapErr   error
	unmapped int
}

func (b *memExternalBuffer) Size() int { return len(b.data) }

func (b *memExternalBuffer) MapExternal() (Region, error) {
	if b.mapErr != nil {
		return nil, b.mapErr
	}
	return &memRegion{buf: b}, nil
}

type memRegion struct {
	buf *memExternalBuffer
}

func (r *memRegion) Bytes() []byte { return r.buf.data }
func (r *memRegion) IsIO() bool    { return r.buf.io }
func (r *memRegion) Unmap()        { r.buf.unmapped++ }

// opaqueBuffer exposes no access path at all.
type opaqueBuffer struct{ size int }

func (b opaqueBuffer) Size() int { return b.size }

func pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*31 + 7)
	}
	return data
}

func TestBackendsPriorityOrder(t *testing.T) {
	backends := Backends()
	if len(backends) < 2 {
		t.Fatalf("Backends() returned %d backends, want at least 2", len(backends))
	}
	if backends[0].Name() != BackendPaged {
		t.Errorf("backends[0] = %q, want %q", backends[0].Name(), BackendPaged)
	}
	if backends[1].Name() != BackendExternal {
		t.Errorf("backends[1] = %q, want %q", backends[1].Name(), BackendExternal)
	}
}

func TestExtractPaged(t *testing.T) {
	buf := &memPagedBuffer{data: pattern(1000), pageSize: 256}
	dst := make([]byte, 1000)

	n, err := NewExtractor().Extract(buf, dst)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if n != 1000 {
		t.Errorf("Extract() = %d bytes, want 1000", n)
	}
	if !bytes.Equal(dst, buf.data) {
		t.Error("Extract() copied wrong bytes")
	}
	if buf.released != buf.mapped {
		t.Errorf("released %d pages, mapped %d; every page mapping must be released", buf.released, buf.mapped)
	}
}

func TestExtractPagedStopsWhenDstFull(t *testing.T) {
	buf := &memPagedBuffer{data: pattern(4096), pageSize: 512}
	dst := make([]byte, 700)

	n, err := NewExtractor().Extract(buf, dst)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if n != 700 {
		t.Errorf("Extract() = %d bytes, want 700", n)
	}
	if !bytes.Equal(dst, buf.data[:700]) {
		t.Error("Extract() copied wrong prefix")
	}
	// 700 bytes at 512-byte pages = 2 page mappings.
	if buf.mapped != 2 {
		t.Errorf("mapped %d pages, want 2", buf.mapped)
	}
}

func TestExtractPagedSkipsAbsentPages(t *testing.T) {
	buf := &memPagedBuffer{
		data:     pattern(1024),
		pageSize: 256,
		absent:   map[int]bool{1: true},
	}
	dst := make([]byte, 1024)

	n, err := NewExtractor().Extract(buf, dst)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	// Three resident pages of four.
	if n != 768 {
		t.Errorf("Extract() = %d bytes, want 768", n)
	}
}

func TestExtractExternal(t *testing.T) {
	buf := &memExternalBuffer{data: pattern(512)}
	dst := make([]byte, 512)

	n, err := NewExtractor().Extract(buf, dst)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if n != 512 {
		t.Errorf("Extract() = %d bytes, want 512", n)
	}
	if !bytes.Equal(dst, buf.data) {
		t.Error("Extract() copied wrong bytes")
	}
	if buf.unmapped != 1 {
		t.Errorf("region unmapped %d times, want 1", buf.unmapped)
	}
}

func TestExtractExternalIOPath(t *testing.T) {
	buf := &memExternalBuffer{data: pattern(777), io: true}
	dst := make([]byte, 1024)

	n, err := NewExtractor().Extract(buf, dst)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if n != 777 {
		t.Errorf("Extract() = %d bytes, want 777", n)
	}
	if !bytes.Equal(dst[:777], buf.data) {
		t.Error("I/O copy path produced wrong bytes")
	}
}

func TestExtractExternalTruncatesToDst(t *testing.T) {
	buf := &memExternalBuffer{data: pattern(2048)}
	dst := make([]byte, 100)

	n, err := NewExtractor().Extract(buf, dst)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if n != 100 {
		t.Errorf("Extract() = %d bytes, want 100", n)
	}
}

func TestExtractNoBackendApplies(t *testing.T) {
	dst := make([]byte, 64)
	_, err := NewExtractor().Extract(opaqueBuffer{size: 64}, dst)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("Extract() error = %v, want ErrNoData", err)
	}
}

func TestExtractNilBuffer(t *testing.T) {
	dst := make([]byte, 64)
	if _, err := NewExtractor().Extract(nil, dst); !errors.Is(err, ErrNoData) {
		t.Errorf("Extract(nil) error = %v, want ErrNoData", err)
	}
}

func TestExtractFallsThroughToExternal(t *testing.T) {
	// A buffer that is both paged and external, but with every page
	// non-resident: the paged backend yields nothing and the extractor
	// must fall through to the external mapping.
	buf := &fallthroughBuffer{
		memPagedBuffer:    memPagedBuffer{data: pattern(512), pageSize: 256, absent: map[int]bool{0: true, 1: true}},
		memExternalBuffer: memExternalBuffer{data: pattern(512)},
	}
	dst := make([]byte, 512)

	n, err := NewExtractor().Extract(buf, dst)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if n != 512 {
		t.Errorf("Extract() = %d bytes, want 512", n)
	}
	if buf.memExternalBuffer.unmapped != 1 {
		t.Error("external backend did not run after paged backend came up empty")
	}
}

type fallthroughBuffer struct {
	memPagedBuffer
	memExternalBuffer
}

func (b *fallthroughBuffer) Size() int { return len(b.memPagedBuffer.data) }

func (b *fallthroughBuffer) PageSize() int { return b.memPagedBuffer.PageSize() }

func (b *fallthroughBuffer) Page(i int) ([]byte, func(), error) {
	return b.memPagedBuffer.Page(i)
}

func (b *fallthroughBuffer) MapExternal() (Region, error) {
	return b.memExternalBuffer.MapExternal()
}

func TestCopyIO(t *testing.T) {
	for _, size := range []int{0, 1, 7, 8, 9, 64, 1000} {
		src := pattern(size)
		dst := make([]byte, size)
		copyIO(dst, src)
		if !bytes.Equal(dst, src) {
			t.Errorf("copyIO() wrong for size %d", size)
		}
	}
}

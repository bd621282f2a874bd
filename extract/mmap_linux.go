//go:build linux

package extract

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DMABuf wraps an exported dma-buf (or any mmap-able) file descriptor
// as an ExternalBuffer, letting the external-memory backend read
// buffers that were imported into the display stack from another
// device.
//
// The caller keeps ownership of the fd and must keep it open for the
// lifetime of the DMABuf.
type DMABuf struct {
	fd   int
	size int
}

// NewDMABuf returns a DMABuf over fd with the given size in bytes.
func NewDMABuf(fd, size int) (*DMABuf, error) {
	if fd < 0 {
		return nil, fmt.Errorf("extract: invalid dma-buf fd %d", fd)
	}
	if size <= 0 {
		return nil, fmt.Errorf("extract: invalid dma-buf size %d", size)
	}
	return &DMABuf{fd: fd, size: size}, nil
}

// Size returns the size of the backing memory in bytes.
func (d *DMABuf) Size() int { return d.size }

// MapExternal mmaps the dma-buf read-only. The mapping is released by
// Region.Unmap.
func (d *DMABuf) MapExternal() (Region, error) {
	data, err := unix.Mmap(d.fd, 0, d.size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("extract: mmap dma-buf fd %d: %w", d.fd, err)
	}
	return &mmapRegion{data: data}, nil
}

// mmapRegion is a CPU-addressable mapping produced by unix.Mmap.
type mmapRegion struct {
	data []byte
}

func (r *mmapRegion) Bytes() []byte { return r.data }

// IsIO reports false: mmap gives ordinary cacheable CPU access.
func (r *mmapRegion) IsIO() bool { return false }

func (r *mmapRegion) Unmap() {
	if r.data == nil {
		return
	}
	if err := unix.Munmap(r.data); err != nil {
		logger().Warn("munmap failed", "error", err)
	}
	r.data = nil
}

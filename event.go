package framebuffer

import "github.com/carbonvibes/Framebuffer/extract"

// BufferEvent describes one buffer-creation event observed in the
// display stack. The interception mechanism that produces these events
// lives outside this module; anything that can fill in a descriptor can
// feed the pipeline (see the source package for a file-based one).
type BufferEvent struct {
	// DeviceID and BufferID identify the originating device and buffer
	// object. They are opaque reference values kept only for display;
	// they mean nothing once the originating object is gone.
	DeviceID uint64
	BufferID uint64

	// Width and Height are the buffer dimensions in pixels.
	Width  uint32
	Height uint32

	// Format is the fourcc pixel format code.
	Format PixelFormat

	// Pitch is the source row stride in bytes, in the buffer's native
	// (possibly tiled) layout.
	Pitch uint32

	// Modifier is the DRM format modifier describing the memory
	// layout. Zero means linear.
	Modifier uint64

	// Object is the backing buffer object to read pixel bytes from.
	// May expose any of the extract access paths, or none.
	Object extract.Buffer
}

// Handler consumes buffer-creation events. Store.OnBufferCreated is
// the canonical implementation.
type Handler func(BufferEvent) error

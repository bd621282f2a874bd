// Package framebuffer captures the pixel content of graphics buffers
// as they are created in a running display stack.
//
// # Overview
//
// Every buffer-creation event carries a descriptor (dimensions, fourcc
// format, pitch, tiling modifier) and an opaque buffer object. The
// pipeline copies the raw bytes out of the object, converts vendor
// tiled layouts to linear row-major order, and commits the result into
// a fixed-capacity circular history that can be listed and read back.
//
// # Quick Start
//
//	store := framebuffer.NewStore()
//	defer store.Close()
//
//	// Feed buffer-creation events from whatever observes the display
//	// stack; source.Replay is a file-based stand-in.
//	_ = store.OnBufferCreated(ev)
//
//	// Human-readable listing of the capture history.
//	store.WriteReport(os.Stdout)
//
//	// Raw bytes of the newest capture that has pixel data.
//	data, _ := store.ReadRaw(0, 4096)
//
// # Architecture
//
// The module is organized into:
//   - Root package: capture store, pipeline, event boundary, report
//   - tiling: tile-to-linear layout conversion and layout detection
//   - extract: backend strategies for reading opaque buffer objects
//   - source: file/directory replay event source
//   - cmd/fbsnoop: CLI for replaying, listing, dumping, and detiling
//
// # Concurrency
//
// One mutex serializes every store mutation and read, including the
// full tiling conversion of a pipeline run. Capture events are rare
// relative to conversion cost, so the simple lock wins over a faster
// scheme that would complicate the ownership rules.
//
// # Limits
//
// A capture's pixel buffer is capped at MaxCaptureSize (1080p ARGB at
// ultrawide pitch); larger frames are truncated, never rejected. The
// history holds DefaultCapacity frames and reuses slots circularly.
package framebuffer

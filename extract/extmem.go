package extract

// BackendExternal is the name of the external-memory-map backend.
const BackendExternal = "extmem"

// externalBackend copies buffers backed by an externally imported
// memory region by mapping the whole region at once. Tried after the
// paged backend.
type externalBackend struct{}

func init() {
	Register(externalBackend{})
}

// Name returns the backend identifier.
func (externalBackend) Name() string { return BackendExternal }

// TryExtract maps the region, copies min(regionSize, len(dst)) bytes,
// and unmaps. I/O memory goes through the chunked copy path instead of
// a plain copy.
func (externalBackend) TryExtract(buf Buffer, dst []byte) (int, error) {
	eb, ok := buf.(ExternalBuffer)
	if !ok {
		return 0, ErrUnsupported
	}
	region, err := eb.MapExternal()
	if err != nil {
		return 0, err
	}
	defer region.Unmap()

	src := region.Bytes()
	toCopy := len(src)
	if toCopy > len(dst) {
		toCopy = len(dst)
	}
	if toCopy == 0 {
		return 0, ErrNoData
	}

	if region.IsIO() {
		copyIO(dst[:toCopy], src[:toCopy])
	} else {
		copy(dst, src[:toCopy])
	}
	return toCopy, nil
}

// copyIO copies I/O memory in small fixed-size chunks rather than one
// bulk copy, keeping individual accesses narrow the way memcpy_fromio
// does.
func copyIO(dst, src []byte) {
	const chunk = 8
	i := 0
	for ; i+chunk <= len(src); i += chunk {
		copy(dst[i:i+chunk], src[i:i+chunk])
	}
	for ; i < len(src); i++ {
		dst[i] = src[i]
	}
}

package extract

// BackendPaged is the name of the page-indexed memory backend.
const BackendPaged = "paged"

// pagedBackend copies buffers that expose a page-indexed mapping. This
// is the highest-priority strategy: shmem-backed objects are the common
// case and page copies need no whole-buffer mapping.
type pagedBackend struct{}

func init() {
	Register(pagedBackend{})
}

// Name returns the backend identifier.
func (pagedBackend) Name() string { return BackendPaged }

// TryExtract copies page-sized chunks sequentially until dst is full or
// the pages run out. Each page mapping is scoped to the copy of that
// page: the release func runs before the next page is touched.
// Non-resident pages are skipped.
func (pagedBackend) TryExtract(buf Buffer, dst []byte) (int, error) {
	pb, ok := buf.(PagedBuffer)
	if !ok {
		return 0, ErrUnsupported
	}
	pageSize := pb.PageSize()
	if pageSize <= 0 {
		return 0, ErrUnsupported
	}

	numPages := (pb.Size() + pageSize - 1) / pageSize
	copied := 0
	for i := 0; copied < len(dst) && i < numPages; i++ {
		data, release, err := pb.Page(i)
		if err != nil {
			if release != nil {
				release()
			}
			return copied, err
		}
		if data == nil {
			continue
		}
		toCopy := pageSize
		if toCopy > len(data) {
			toCopy = len(data)
		}
		if rem := len(dst) - copied; toCopy > rem {
			toCopy = rem
		}
		copy(dst[copied:copied+toCopy], data[:toCopy])
		copied += toCopy
		if release != nil {
			release()
		}
	}
	if copied == 0 {
		return 0, ErrNoData
	}
	return copied, nil
}

package mem

const (
	// PageShift is equal to log2(PageSize). This constant is used when
	// we need to convert a physical address to a page number (shift right by PageShift)
	// and vice-versa.
	PageShift = 12

	// PageSize defines the size of a page in the 32-bit two-level paging
	// scheme.
	PageSize = Size(1 << PageShift)

	// LargeFrameSize is the granularity handed out by the physical frame
	// pool.
	LargeFrameSize = 2 * Mb
)

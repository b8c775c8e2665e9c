package alloc

import (
	"unsafe"

	"github.com/vmroots/dynroot/internal/value"
)

// ChunkBytes and ChunkAlign are the allocator's tuning constants (equal
// here). ChunkBytes must not exceed ChunkAlign and ChunkAlign must be a
// power of two, so a chunk's base address can be recovered from any slot
// address inside it by masking; both properties are enforced below at
// compile time, the same way
// Pam-La/jmt_for_mac/internal/jmt/layout_assert.go pins down Node's size
// with a pair of zero-or-negative-length array declarations.
const (
	ChunkBytes = 1024
	ChunkAlign = 1024
)

// chunkHeader is the fixed portion of a Chunk. Every field is a plain
// integer — never a Go pointer or slice — because chunkHeader is always
// overlaid (via unsafe.Pointer) onto raw memory obtained from
// internal/sysalloc, which the Go garbage collector does not scan. Storing
// a real *chunkHeader there instead of a uintptr would be unsound: the GC
// has no idea that memory exists, let alone that it should treat a field
// inside it as a root. The runtime's own off-heap allocator
// (runtime.fixalloc) uses the identical uintptr-not-pointer trick for this
// reason; see its "chunk uintptr" field.
type chunkHeader struct {
	next      uintptr // next chunk in the allocator's list, or 0
	freeHead  uintptr // first free slot in this chunk, or 0
	highWater uint32  // slots [0, highWater) have been handed out at least once
	_         uint32  // padding
}

const (
	headerSize = unsafe.Sizeof(chunkHeader{})
	slotSize   = unsafe.Sizeof(value.Value{})
	slotAlign  = unsafe.Alignof(value.Value{})

	// slotsOffset is round_up(sizeof(header), alignof(Slot)), computed once
	// since Go has no built-in trailing-objects helper to derive it for us.
	slotsOffset = (headerSize + slotAlign - 1) &^ (slotAlign - 1)

	// SlotsPerChunk is how many slots fit after the header within one chunk.
	SlotsPerChunk = (ChunkBytes - slotsOffset) / slotSize
)

// Compile-time layout assertions. Each array length must be non-negative;
// a violated invariant makes one of them negative, which is a compile
// error rather than a runtime surprise.
var (
	_ [ChunkAlign - ChunkBytes]byte                             // ChunkBytes <= ChunkAlign
	_ [1 - (ChunkAlign & (ChunkAlign - 1))]byte                 // ChunkAlign is a power of two
	_ [ChunkBytes - (slotsOffset + SlotsPerChunk*slotSize)]byte // slot array fits within the chunk
)

// Package alloc implements dynroot's dynamic-lifetime root allocator: a
// linked list of fixed-size, alignment-constrained Chunks containing
// packed Slots, an intrusive per-chunk free list encoded directly in slot
// payload storage, and the Handle smart object that owns a single slot.
//
// This is the core the rest of a scripting-VM's garbage collector builds
// on: Allocate hands the VM a Handle it can use as a root for as long as
// it needs to, independent of any single operation's stack frame, and
// Allocator.MarkRoots lets the collector visit every slot that has ever
// been live so it can treat them as GC roots.
//
// The payload stored in each slot is internal/value.Value, a fixed-width
// tagged value standing in for the VM's real encoded-value format — see
// that package's doc comment for why the allocator needs a concrete
// native-pointer tag rather than treating payloads as fully opaque bytes.
//
// # Single-threaded
//
// Every exported type here is confined to one goroutine. The chunk list
// and the free lists threaded through slot storage are mutated without
// locks; concurrent Allocate/Handle.Release calls, or a Handle.Release
// racing MarkRoots, are data races. This mirrors a VM that only ever
// touches its own heap from the thread running its bytecode, not an
// oversight.
package alloc

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/vmroots/dynroot/internal/sysalloc"
	"github.com/vmroots/dynroot/internal/value"
)

// Allocator owns a singly linked list of Chunks and routes Allocate calls
// to them. The zero value is an empty allocator ready for use; New returns
// one.
type Allocator struct {
	chunksHead uintptr // head of the chunk list, or 0 if empty

	chunkCount int   // number of chunks ever created (monotonic, for trace output)
	allocCount int64 // total successful Allocate calls
	freeCount  int64 // total slot releases observed via handleState.onRelease
	growCount  int64 // total new chunks created
}

// New returns an empty Allocator with no chunks. The first Allocate call
// lazily creates the first chunk.
func New() *Allocator {
	return &Allocator{}
}

// Allocate stores v in a freshly allocated slot and returns a Handle
// owning it. This never fails from the caller's perspective: a
// chunk-allocation failure aborts the process rather than returning an
// error, since this allocator sits beneath the VM's entire root set.
func (a *Allocator) Allocate(v value.Value) Handle {
	var slot uintptr
	if a.chunksHead != 0 {
		slot = chunkTryAllocate(a.chunksHead)
	}
	if slot == 0 {
		slot = a.allocateSlow()
	}
	writeValue(slot, v)
	a.allocCount++
	st := &handleState{slot: slot, onRelease: a.noteFree}
	runtime.SetFinalizer(st, finalizeHandleState)
	return Handle{state: st}
}

// AllocateDefault allocates a slot holding value.Default(), the default
// payload for callers that want a root reserved before they have a real
// value ready to store in it.
func (a *Allocator) AllocateDefault() Handle {
	return a.Allocate(value.Default())
}

// allocateSlow runs when the head chunk is full: walk the remaining
// chunks for one with room, splicing it to the front of the list on
// success; failing that, grow by one chunk.
func (a *Allocator) allocateSlow() uintptr {
	var prev uintptr
	cursor := a.chunksHead
	for cursor != 0 {
		h := chunkFromAddr(cursor)
		if slot := chunkTryAllocate(cursor); slot != 0 {
			if prev != 0 {
				prevHeader := chunkFromAddr(prev)
				prevHeader.next = h.next
				h.next = a.chunksHead
				a.chunksHead = cursor
				trace("move-to-front chunk=0x%x", cursor)
			}
			return slot
		}
		prev = cursor
		cursor = h.next
	}
	return a.grow()
}

// grow allocates a new, aligned chunk, links it at the head of the list,
// and returns the first slot from it. Aligned-allocation failure is
// fatal: this allocator sits beneath the VM's entire root set, so a
// partial failure here would leave the VM unable to retain any further
// roots.
func (a *Allocator) grow() uintptr {
	mem, err := sysalloc.AlignedAlloc(ChunkBytes, ChunkAlign)
	if err != nil {
		panic(fmt.Errorf("alloc: %w: %w", ErrAllocFailed, err))
	}
	initChunk(mem, a.chunksHead)
	a.chunksHead = mem
	a.chunkCount++
	a.growCount++
	trace("grew chunk=0x%x count=%d", mem, a.chunkCount)

	slot := chunkTryAllocate(mem)
	if slot == 0 {
		// A freshly initialized chunk always has room; reaching here
		// means initChunk or chunkTryAllocate is broken, not a
		// resource-exhaustion case.
		panic("alloc: freshly allocated chunk had no room")
	}
	return slot
}

func (a *Allocator) noteFree() {
	a.freeCount++
}

// MarkRoots visits, for every chunk in the list, slots[0..highWater) and
// calls acceptor.Accept on each. Free slots are included — the acceptor
// distinguishes them via Value.IsNativePointer.
func (a *Allocator) MarkRoots(acceptor Acceptor) {
	cursor := a.chunksHead
	for cursor != 0 {
		h := chunkFromAddr(cursor)
		chunkLiveSlots(cursor, func(slot uintptr) {
			acceptor.Accept((*value.Value)(unsafe.Pointer(slot)))
		})
		cursor = h.next
	}
}

// Close destroys the allocator: every chunk's backing memory is returned
// to the OS. Outstanding handles are not tracked — calling Close while
// handles obtained from this allocator are still valid is a program
// error; their later Release calls would operate on freed memory. Close
// itself does not attempt to detect that.
func (a *Allocator) Close() {
	cursor := a.chunksHead
	a.chunksHead = 0
	for cursor != 0 {
		h := chunkFromAddr(cursor)
		next := h.next
		sysalloc.Free(cursor, ChunkBytes)
		cursor = next
	}
}

// Stats is a diagnostic snapshot of allocator state, additive
// instrumentation in the style of hive/alloc/fastalloc.go's
// allocatorStats — never consulted on the hot allocate/free path, and not
// a substitute for per-handle ownership tracking, which this allocator
// does not attempt.
type Stats struct {
	Chunks         int
	HighWaterTotal uint64
	LiveApprox     uint64
	AllocCalls     int64
	FreeCalls      int64
	GrowCalls      int64
}

// Stats walks the chunk list to compute a point-in-time snapshot. O(chunks
// + total free-list length); intended for tests and introspection, not
// hot paths.
func (a *Allocator) Stats() Stats {
	s := Stats{
		AllocCalls: a.allocCount,
		FreeCalls:  a.freeCount,
		GrowCalls:  a.growCount,
	}
	cursor := a.chunksHead
	for cursor != 0 {
		h := chunkFromAddr(cursor)
		s.Chunks++
		s.HighWaterTotal += uint64(h.highWater)
		live := uint64(h.highWater) - freeListLength(cursor)
		s.LiveApprox += live
		cursor = h.next
	}
	return s
}

// freeListLength walks a chunk's free list end to end, verifying it stays
// within the chunk and terminates; used only by Stats and tests, never
// the allocation hot path.
func freeListLength(chunkAddr uintptr) uint64 {
	h := chunkFromAddr(chunkAddr)
	var n uint64
	seen := make(map[uintptr]bool)
	cursor := h.freeHead
	for cursor != 0 {
		if seen[cursor] {
			panic("alloc: cyclic free list detected")
		}
		seen[cursor] = true
		if !chunkContains(chunkAddr, cursor) {
			panic(ErrNotContained)
		}
		n++
		cursor = value.DecodeNativePointer(readValue(cursor))
	}
	return n
}

package alloc

import (
	"unsafe"

	"github.com/vmroots/dynroot/internal/value"
)

// chunkFromAddr overlays a chunkHeader onto raw memory at addr. addr must
// be the base of a block previously initialized by initChunk.
func chunkFromAddr(addr uintptr) *chunkHeader {
	return (*chunkHeader)(unsafe.Pointer(addr))
}

// slotsBase returns the address of slots[0] within the chunk at chunkAddr.
func slotsBase(chunkAddr uintptr) uintptr {
	return chunkAddr + slotsOffset
}

// slotAddrAt returns the address of slots[index] within the chunk at chunkAddr.
func slotAddrAt(chunkAddr uintptr, index uint32) uintptr {
	return slotsBase(chunkAddr) + uintptr(index)*slotSize
}

// readValue reads the Value stored at a slot address.
func readValue(slot uintptr) value.Value {
	return *(*value.Value)(unsafe.Pointer(slot))
}

// writeValue writes v into the slot at the given address.
func writeValue(slot uintptr, v value.Value) {
	*(*value.Value)(unsafe.Pointer(slot)) = v
}

// initChunk initializes raw, freshly obtained memory at mem as an empty
// chunk linked in front of next (0 for none).
func initChunk(mem, next uintptr) {
	h := chunkFromAddr(mem)
	h.next = next
	h.freeHead = 0
	h.highWater = 0
}

// chunkTryAllocate prefers the free list, then the high-water mark, else
// reports full (0). The returned slot's payload is uninitialized; the
// caller must write it.
func chunkTryAllocate(chunkAddr uintptr) uintptr {
	h := chunkFromAddr(chunkAddr)
	if h.freeHead != 0 {
		slot := h.freeHead
		link := readValue(slot)
		h.freeHead = value.DecodeNativePointer(link)
		return slot
	}
	if uintptr(h.highWater) < SlotsPerChunk {
		slot := slotAddrAt(chunkAddr, h.highWater)
		h.highWater++
		return slot
	}
	return 0
}

// chunkFree returns slot to chunkAddr's free list. Precondition:
// chunkContains(chunkAddr, slot).
func chunkFree(chunkAddr, slot uintptr) {
	if debugAlloc && !chunkContains(chunkAddr, slot) {
		panic(ErrNotContained)
	}
	h := chunkFromAddr(chunkAddr)
	writeValue(slot, value.EncodeNativePointer(h.freeHead))
	h.freeHead = slot
}

// chunkContains reports whether slot is a valid slot address inside chunkAddr.
func chunkContains(chunkAddr, slot uintptr) bool {
	base := slotsBase(chunkAddr)
	end := base + SlotsPerChunk*slotSize
	if slot < base || slot >= end {
		return false
	}
	return (slot-base)%slotSize == 0
}

// chunkLiveSlots visits slots[0..highWater) in index order, free slots
// included.
func chunkLiveSlots(chunkAddr uintptr, fn func(slot uintptr)) {
	h := chunkFromAddr(chunkAddr)
	base := slotsBase(chunkAddr)
	for i := uint32(0); i < h.highWater; i++ {
		fn(base + uintptr(i)*slotSize)
	}
}

// chunkForSlot recovers a slot's owning chunk: masking a slot's address
// down to ChunkAlign yields its chunk's base address. This is the
// operation Handle.Release depends on to free its slot without needing a
// back-reference to the Allocator or even to the chunk it came from.
func chunkForSlot(slot uintptr) uintptr {
	chunkAddr := slot &^ (ChunkAlign - 1)
	if debugAlloc && !chunkContains(chunkAddr, slot) {
		panic(ErrNotContained)
	}
	return chunkAddr
}

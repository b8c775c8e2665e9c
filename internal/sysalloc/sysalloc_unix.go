//go:build unix

package sysalloc

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// AlignedAlloc returns size bytes of anonymous, zero-filled memory aligned
// to align. align must be a power of two; size must be a multiple of
// align (the allocator always asks for exactly alloc.ChunkBytes, which it
// also uses as the alignment).
//
// mmap always returns page-aligned memory, and alloc.ChunkAlign (1024)
// divides the page size on every platform unix.Mmap runs on, so the
// mapping mmap hands back already satisfies the requested alignment — no
// over-allocate-and-trim dance is needed here, unlike the fallback
// implementation.
func AlignedAlloc(size, align uintptr) (uintptr, error) {
	mustPowerOfTwo(align)
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, ErrAllocFailed
	}
	addr := uintptr(unsafe.Pointer(&data[0]))
	if addr%align != 0 {
		_ = unix.Munmap(data)
		return 0, ErrAllocFailed
	}
	return addr, nil
}

// Free releases size bytes previously returned by AlignedAlloc(size, _).
func Free(addr, size uintptr) {
	if addr == 0 {
		return
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
	_ = unix.Munmap(data)
}

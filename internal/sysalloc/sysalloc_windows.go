//go:build windows

package sysalloc

import (
	"golang.org/x/sys/windows"
)

// AlignedAlloc returns size bytes of committed, zero-filled virtual memory
// aligned to align. VirtualAlloc's allocation granularity (64KB) and page
// size (4KB) are both multiples of alloc.ChunkAlign (1024), so — as on
// unix — the address VirtualAlloc returns already satisfies the request.
func AlignedAlloc(size, align uintptr) (uintptr, error) {
	mustPowerOfTwo(align)
	addr, err := windows.VirtualAlloc(0, size, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return 0, ErrAllocFailed
	}
	if addr%align != 0 {
		_ = windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
		return 0, ErrAllocFailed
	}
	return addr, nil
}

// Free releases memory previously returned by AlignedAlloc. VirtualFree
// with MEM_RELEASE requires size 0 — it always frees the whole region
// reserved by the matching VirtualAlloc call.
func Free(addr, _ uintptr) {
	if addr == 0 {
		return
	}
	_ = windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
}

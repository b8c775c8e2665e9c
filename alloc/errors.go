package alloc

import "errors"

var (
	// ErrAllocFailed indicates the OS-level aligned-allocation primitive
	// could not satisfy a chunk request. This is the only recoverable-
	// looking error in the package, and it is not actually recoverable:
	// the allocator sits beneath the VM's entire root set, so Allocate
	// aborts fatally rather than returning it (see Allocator.grow). It is
	// exported only so tests can assert on the cause of that abort
	// without parsing a panic message.
	ErrAllocFailed = errors.New("alloc: chunk allocation failed")

	// ErrInvalidHandle is the assertion failure backing Handle.Get/Borrow/
	// BorrowMut when called on an invalid Handle. Only surfaced as a
	// panic, gated by debugAlloc — see handle.go.
	ErrInvalidHandle = errors.New("alloc: use of invalid handle")

	// ErrNotContained backs the debug assertion in chunkForSlot: the chunk
	// recovered by masking a slot address did not actually contain that
	// slot, meaning the address was never a slot this allocator produced.
	ErrNotContained = errors.New("alloc: recovered chunk does not contain slot")
)

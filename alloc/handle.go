package alloc

import (
	"runtime"
	"unsafe"

	"github.com/vmroots/dynroot/internal/value"
)

// noCopy makes a containing struct non-copyable under `go vet -copylocks`
// — the same technique sync.WaitGroup and strings.Builder use to get a
// statically checkable "this value has a single owner" guarantee. Go has
// no deleted copy constructor, so this stands in for prohibiting copies
// of a move-only owner.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// handleState is the heap-allocated portion of a Handle. Splitting it out
// from Handle itself is what lets a dropped-without-Release Handle still
// get cleaned up: runtime.SetFinalizer needs a pointer to a heap object,
// and Handle is a small value type passed and returned by value (the
// whole point of embedding noCopy in it), so the finalizer is attached
// here instead, the same way os.File attaches its finalizer to the
// *file wrapped inside the os.File value.
type handleState struct {
	slot      uintptr
	onRelease func()
}

// Handle is a move-only owner of a single Slot. The zero Handle is
// invalid. Construct one via Allocator.Allocate or
// Allocator.AllocateDefault.
type Handle struct {
	_     noCopy
	state *handleState
}

// Valid reports whether h owns a slot.
func (h *Handle) Valid() bool {
	return h.state != nil && h.state.slot != 0
}

// Get returns the decoded payload. Panics (when debugAlloc is enabled) if
// h is invalid; non-debug builds simply dereference slot 0 instead, which
// is not a contract callers should rely on.
func (h *Handle) Get() value.Value {
	h.assertValid()
	return readValue(h.state.slot)
}

// Borrow returns a reference to the slot's payload, valid for h's
// lifetime.
func (h *Handle) Borrow() *value.Value {
	h.assertValid()
	return (*value.Value)(unsafe.Pointer(h.state.slot))
}

// BorrowMut is Borrow's mutable-reference counterpart. Go has no const/
// non-const reference distinction, so both return the same *value.Value;
// the two names are kept to mirror how a VM would consume a read-only
// handle versus one it intends to mutate through.
func (h *Handle) BorrowMut() *value.Value {
	return h.Borrow()
}

func (h *Handle) assertValid() {
	if debugAlloc && !h.Valid() {
		panic(ErrInvalidHandle)
	}
}

// Take transfers ownership of h's slot to the returned Handle, leaving h
// invalid — Go has no move semantics of its own, so ownership transfer is
// always an explicit call like this one, analogous to how *os.File or
// *sql.Rows are reassigned by explicit transfer rather than copied.
func (h *Handle) Take() Handle {
	moved := Handle{state: h.state}
	h.state = nil
	return moved
}

// Release frees h's slot: a valid handle computes its owning chunk by
// alignment arithmetic (chunkForSlot) and pushes the slot onto that
// chunk's free list. Release on an already-invalid Handle is a no-op.
// Calling Release is the caller's responsibility — Go has no
// deterministic destructors — the finalizer wired up in Allocate is a
// leak-mitigation backstop only, not something correct code should rely
// on for timing (see releaseState).
func (h *Handle) Release() {
	if h.state == nil {
		return
	}
	releaseState(h.state)
	runtime.SetFinalizer(h.state, nil)
	h.state = nil
}

func releaseState(st *handleState) {
	if st.slot == 0 {
		return
	}
	chunkAddr := chunkForSlot(st.slot)
	chunkFree(chunkAddr, st.slot)
	if st.onRelease != nil {
		st.onRelease()
	}
	st.slot = 0
}

// finalizeHandleState is the finalizer attached to every handleState. It
// only fires if a Handle was dropped without a Release call; that is
// always a caller bug (a leaked slot would otherwise live until the
// allocator itself is destroyed), so it traces rather than silently
// succeeding.
func finalizeHandleState(st *handleState) {
	if st.slot == 0 {
		return
	}
	trace("finalizer released handle slot=0x%x without explicit Release", st.slot)
	releaseState(st)
}

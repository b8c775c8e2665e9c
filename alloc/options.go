package alloc

import (
	"fmt"
	"os"
)

// debugAlloc gates expensive invariant assertions (chunk-containment
// checks, free-list corruption checks) that are too costly for a release
// build's hot allocate/free path. Compile-time toggle, mirroring
// hive/alloc/fastalloc.go's debugAlloc constant — flip to true locally
// when chasing a free-list bug, never in committed code.
const debugAlloc = false

// traceEnabled gates verbose stderr tracing of chunk creation, move-to-
// front promotion, and finalizer-driven slot releases, controlled at runtime by an
// environment variable rather than a rebuild — the same split
// hive/alloc/fastalloc.go draws between its compile-time debugAlloc and
// its runtime-switched logAlloc (HIVE_LOG_ALLOC).
var traceEnabled = os.Getenv("DYNROOT_TRACE_ALLOC") != ""

func trace(format string, args ...any) {
	if !traceEnabled {
		return
	}
	fmt.Fprintf(os.Stderr, "dynroot/alloc: "+format+"\n", args...)
}

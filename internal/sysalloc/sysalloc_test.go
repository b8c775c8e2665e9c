package sysalloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func Test_AlignedAlloc_Alignment(t *testing.T) {
	const size = 1024
	const align = 1024
	addr, err := AlignedAlloc(size, align)
	require.NoError(t, err)
	require.NotZero(t, addr)
	require.Zero(t, addr%align, "address must be aligned to %d", align)
	defer Free(addr, size)

	// The memory must be writable for its full length.
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	for i := range data {
		data[i] = 0xAB
	}
	for i := range data {
		require.Equal(t, byte(0xAB), data[i])
	}
}

func Test_AlignedAlloc_MultipleChunksIndependent(t *testing.T) {
	const size = 1024
	const align = 1024
	a, err := AlignedAlloc(size, align)
	require.NoError(t, err)
	defer Free(a, size)
	b, err := AlignedAlloc(size, align)
	require.NoError(t, err)
	defer Free(b, size)

	require.NotEqual(t, a, b)

	da := unsafe.Slice((*byte)(unsafe.Pointer(a)), size)
	db := unsafe.Slice((*byte)(unsafe.Pointer(b)), size)
	da[0] = 1
	db[0] = 2
	require.EqualValues(t, 1, da[0])
	require.EqualValues(t, 2, db[0])
}

func Test_MustPowerOfTwo_Panics(t *testing.T) {
	require.Panics(t, func() { mustPowerOfTwo(0) })
	require.Panics(t, func() { mustPowerOfTwo(3) })
	require.NotPanics(t, func() { mustPowerOfTwo(1024) })
}

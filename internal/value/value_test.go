package value

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func Test_Layout(t *testing.T) {
	require.EqualValues(t, 16, unsafe.Sizeof(Value{}))
	require.EqualValues(t, 8, unsafe.Alignof(Value{}))
}

func Test_NativePointerRoundTrip(t *testing.T) {
	for _, p := range []uintptr{0, 1, 0xdeadbeef, ^uintptr(0)} {
		v := EncodeNativePointer(p)
		require.True(t, v.IsNativePointer())
		require.Equal(t, p, DecodeNativePointer(v))
	}
}

func Test_DecodeNativePointer_WrongKindPanics(t *testing.T) {
	require.Panics(t, func() {
		DecodeNativePointer(Number(1))
	})
}

func Test_BoolRoundTrip(t *testing.T) {
	require.True(t, Bool(true).Bool())
	require.False(t, Bool(false).Bool())
	require.False(t, Bool(true).IsNativePointer())
}

func Test_NumberRoundTrip(t *testing.T) {
	for _, f := range []float64{0, 1, -1, 3.14159, 1e300} {
		require.Equal(t, f, Number(f).Number())
	}
}

func Test_ObjectRoundTrip(t *testing.T) {
	require.EqualValues(t, 42, Object(42).Object())
}

func Test_Default(t *testing.T) {
	require.Equal(t, KindUndefined, Default().Kind())
	require.False(t, Default().IsNativePointer())
}

func Test_WrongKindAccessorsPanic(t *testing.T) {
	require.Panics(t, func() { Bool(true).Number() })
	require.Panics(t, func() { Number(1).Bool() })
	require.Panics(t, func() { Default().Object() })
}

func Test_String(t *testing.T) {
	require.Equal(t, "undefined", Default().String())
	require.Equal(t, "null", Null().String())
	require.Contains(t, Bool(true).String(), "true")
	require.Contains(t, Number(2).String(), "2")
	require.Contains(t, Object(7).String(), "7")
	require.Contains(t, EncodeNativePointer(0x10).String(), "10")
}

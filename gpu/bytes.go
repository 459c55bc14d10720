package gpu

import "unsafe"

// AsByteSlice views a value as its raw in-memory bytes, e.g. for
// uploading a uniform struct into a gpu buffer.
func AsByteSlice[T any](value *T) []byte {
	var zeroT T

	n := unsafe.Sizeof(zeroT)
	ptr := (*byte)(unsafe.Pointer(value))

	return unsafe.Slice(ptr, n)
}

package lockfree

import (
	"math/bits"
	_ "runtime"
	"unsafe"
)

// CheapRandN returns a uniform pseudo-random number in [0, n) using the
// runtime's per-P generator, so concurrent callers never contend.
//
//go:linkname CheapRandN runtime.fastrandn
//go:nosplit
func CheapRandN(n uint32) uint32

//go:linkname rtHash32 runtime.memhash32
//go:noescape
func rtHash32(ptr unsafe.Pointer, seed uint) uint

//go:linkname rtHash64 runtime.memhash64
//go:noescape
func rtHash64(ptr unsafe.Pointer, seed uint) uint

// HashUint scatters v with the runtime's memory hash.
func HashUint(v uint, seed uint) uint {
	if bits.UintSize == 32 {
		return rtHash32(unsafe.Pointer(&v), seed)
	}
	return rtHash64(unsafe.Pointer(&v), seed)
}

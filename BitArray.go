package lockfree

import "math/bits"

// MakeBitArray returns a BitArray holding at least size bits, all clear.
func MakeBitArray(size int) BitArray {
	return BitArray{bits: make([]uint, (size+bits.UintSize-1)/bits.UintSize)}
}

type BitArray struct {
	bits []uint
}

func (u BitArray) Len() int {
	return len(u.bits) * bits.UintSize
}

func (u BitArray) Get(i int) bool {
	return (u.bits[i/bits.UintSize]>>(i%bits.UintSize))&1 == 1
}

func (u BitArray) Up(i int) {
	u.bits[i/bits.UintSize] |= 1 << (i % bits.UintSize)
}

// UpChecked sets bit i and reports whether it was already set.
func (u BitArray) UpChecked(i int) bool {
	old := u.bits[i/bits.UintSize]
	u.bits[i/bits.UintSize] = old | 1<<(i%bits.UintSize)
	return (old>>(i%bits.UintSize))&1 == 1
}

func (u BitArray) Down(i int) {
	u.bits[i/bits.UintSize] &^= 1 << (i % bits.UintSize)
}

package lockfree

import "sync/atomic"

// pair is one immutable snapshot of a TaggedPtr. Snapshots are never
// mutated after publication, so a CAS on the box pointer observes both
// halves at once.
type pair[T any] struct {
	ptr *T
	tag uint64
}

// TaggedPtr is an atomic (pointer, tag) pair. The tag exists to defeat ABA:
// by convention the caller never lowers it and increments it on every
// CompareAndSet that replaces the pointer half, except a Treiber-stack push,
// which keeps the tag (the matching pop increments it). Either way an old
// (pointer, tag) combination can never reappear and a stale CAS can never
// succeed.
//
// The zero TaggedPtr is unusable; publish an initial pair with Store first.
type TaggedPtr[T any] struct {
	v atomic.Pointer[pair[T]]
}

// Store publishes both halves at once. It is an initialisation write: the
// caller must own the TaggedPtr exclusively (fresh object, or a pool node
// that no other goroutine can reach).
func (u *TaggedPtr[T]) Store(p *T, tag uint64) {
	u.v.Store(&pair[T]{p, tag})
}

// StorePtr replaces the pointer half keeping the current tag. Owner-only,
// like Store.
func (u *TaggedPtr[T]) StorePtr(p *T) {
	u.v.Store(&pair[T]{p, u.v.Load().tag})
}

func (u *TaggedPtr[T]) Load() (*T, uint64) {
	t := u.v.Load()
	return t.ptr, t.tag
}

func (u *TaggedPtr[T]) LoadPtr() *T {
	return u.v.Load().ptr
}

func (u *TaggedPtr[T]) LoadTag() uint64 {
	return u.v.Load().tag
}

// CompareAndSet atomically replaces the pair iff both halves match the
// expected values. Tags are monotonic wherever the pointer half changes, so
// matching halves imply the same snapshot and this has exactly the
// semantics of a double-word CAS.
func (u *TaggedPtr[T]) CompareAndSet(oldPtr *T, oldTag uint64, newPtr *T, newTag uint64) bool {
	t := u.v.Load()
	if t.ptr != oldPtr || t.tag != oldTag {
		return false
	}
	return u.v.CompareAndSwap(t, &pair[T]{newPtr, newTag})
}

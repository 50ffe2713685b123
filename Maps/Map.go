package Maps

import "cmp"

// OrderedMap is the point-operation surface of the map variants in this
// package. Put reports (and returns) a replaced value; Remove reports (and
// returns) the removed one. ForEach visits in strictly ascending key order
// and stops early when f returns false.
type OrderedMap[K cmp.Ordered, V any] interface {
	Put(K, V) (V, bool)
	Get(K) (V, bool)
	HasKey(K) bool
	Remove(K) (V, bool)
	ForEach(f func(K, V) bool)
	Size() uint
}

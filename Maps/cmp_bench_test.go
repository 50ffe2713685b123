package Maps

import (
	"sync"
	"testing"

	"github.com/alphadose/haxmap"
	"github.com/cornelk/hashmap"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/google/btree"
	"github.com/petar/GoLLRB/llrb"
	"github.com/puzpuzpuz/xsync/v3"
)

// Single-threaded baselines: the ordered structures the ecosystem reaches
// for when no concurrency is involved. The list map pays for lock freedom
// with O(n) walks; these show how much.
const orderedN = 1 << 10

func BenchmarkOrderedSortedListMap(b *testing.B) {
	for i := 0; i < b.N; i++ {
		m := MakeSortedListMap[int, int]()
		for j := 0; j < orderedN; j++ {
			m.Put(j, j)
		}
		for j := 0; j < orderedN; j++ {
			if v, ok := m.Get(j); !ok || v != j {
				b.Fatal("bad value")
			}
		}
	}
}

func BenchmarkOrderedBTree(b *testing.B) {
	for i := 0; i < b.N; i++ {
		tr := btree.NewG[int](2, func(a, b int) bool { return a < b })
		for j := 0; j < orderedN; j++ {
			tr.ReplaceOrInsert(j)
		}
		for j := 0; j < orderedN; j++ {
			if v, ok := tr.Get(j); !ok || v != j {
				b.Fatal("bad value")
			}
		}
	}
}

func BenchmarkOrderedTreeMap(b *testing.B) {
	for i := 0; i < b.N; i++ {
		m := treemap.NewWithIntComparator()
		for j := 0; j < orderedN; j++ {
			m.Put(j, j)
		}
		for j := 0; j < orderedN; j++ {
			if v, ok := m.Get(j); !ok || v != j {
				b.Fatal("bad value")
			}
		}
	}
}

func BenchmarkOrderedLLRB(b *testing.B) {
	for i := 0; i < b.N; i++ {
		tr := llrb.New()
		for j := 0; j < orderedN; j++ {
			tr.ReplaceOrInsert(llrb.Int(j))
		}
		for j := 0; j < orderedN; j++ {
			if got := tr.Get(llrb.Int(j)); got == nil || int(got.(llrb.Int)) != j {
				b.Fatal("bad value")
			}
		}
	}
}

// Concurrent baselines: unordered lock-free maps. They win on point ops and
// cannot do an ordered traversal at all, which is the trade this package
// makes.
const (
	concIter = 1 << 3
	concN    = 1 << 9
)

func concBody(b *testing.B, put func(int, int), get func(int) (int, bool), del func(int)) {
	wg := sync.WaitGroup{}
	for k := 0; k < concIter; k++ {
		wg.Add(1)
		go func(l, h int) {
			defer wg.Done()
			for j := l; j < h; j++ {
				put(j, j)
			}
			for j := l; j < h; j++ {
				if v, ok := get(j); !ok || v != j {
					b.Error("bad value")
				}
			}
			for j := l; j < h; j++ {
				del(j)
			}
		}(k*concN, (k+1)*concN)
	}
	wg.Wait()
}

func BenchmarkConcSortedListMap(b *testing.B) {
	for i := 0; i < b.N; i++ {
		m := MakeSortedListMap[int, int]()
		concBody(b,
			func(k, v int) { m.Put(k, v) },
			func(k int) (int, bool) { return m.Get(k) },
			func(k int) { m.Remove(k) })
	}
}

func BenchmarkConcHaxMap(b *testing.B) {
	for i := 0; i < b.N; i++ {
		m := haxmap.New[int, int]()
		concBody(b,
			func(k, v int) { m.Set(k, v) },
			func(k int) (int, bool) { return m.Get(k) },
			func(k int) { m.Del(k) })
	}
}

func BenchmarkConcHashMap(b *testing.B) {
	for i := 0; i < b.N; i++ {
		m := hashmap.New[int, int]()
		concBody(b,
			func(k, v int) { m.Set(k, v) },
			func(k int) (int, bool) { return m.Get(k) },
			func(k int) { m.Del(k) })
	}
}

func BenchmarkConcXSyncMap(b *testing.B) {
	for i := 0; i < b.N; i++ {
		m := xsync.NewMapOf[int, int]()
		concBody(b,
			func(k, v int) { m.Store(k, v) },
			func(k int) (int, bool) { return m.Load(k) },
			func(k int) { m.Delete(k) })
	}
}

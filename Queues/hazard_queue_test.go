package Queues

import (
	"testing"

	"pgregory.net/rapid"
)

func TestHazardQueue_FIFO(t *testing.T)  { testFIFO(t, MakeHazardQueue[int]()) }
func TestHazardQueue_Empty(t *testing.T) { testEmptyPop(t, MakeHazardQueue[int]()) }
func TestHazardQueue_Smoke(t *testing.T) { testSmoke(t, MakeHazardQueue[uint64]()) }
func TestHazardQueue_Conservation(t *testing.T) {
	testConservation(t, MakeHazardQueue[int]())
}

func TestHazardQueuePooled_FIFO(t *testing.T)  { testFIFO(t, MakeHazardQueuePooled[int]()) }
func TestHazardQueuePooled_Empty(t *testing.T) { testEmptyPop(t, MakeHazardQueuePooled[int]()) }
func TestHazardQueuePooled_Smoke(t *testing.T) { testSmoke(t, MakeHazardQueuePooled[uint64]()) }
func TestHazardQueuePooled_Conservation(t *testing.T) {
	testConservation(t, MakeHazardQueuePooled[int]())
}

// The hazard variant takes non-trivially-copyable values; the tagged one
// cannot.
func TestHazardQueue_ReferenceValues(t *testing.T) {
	q := MakeHazardQueue[[]string]()
	q.Push([]string{"a", "b"})
	q.Push(nil)
	if v, ok := q.TryPop(); !ok || len(v) != 2 || v[0] != "a" {
		t.Fatalf("slice payload damaged: %v %v", v, ok)
	}
	if v, ok := q.TryPop(); !ok || v != nil {
		t.Fatalf("nil payload damaged: %v %v", v, ok)
	}
}

func TestHazardQueue_Model(t *testing.T) {
	makers := map[string]func() Queue[int]{
		"heap":   func() Queue[int] { return MakeHazardQueue[int]() },
		"pooled": func() Queue[int] { return MakeHazardQueuePooled[int]() },
		"tagged": func() Queue[int] { return MakeTaggedQueue[int]() },
	}
	for name, mk := range makers {
		t.Run(name, func(t *testing.T) {
			rapid.Check(t, func(t *rapid.T) {
				q := mk()
				var model []int
				ops := rapid.IntRange(1, 256).Draw(t, "ops")
				for i := 0; i < ops; i++ {
					if rapid.Bool().Draw(t, "push") {
						v := rapid.Int().Draw(t, "v")
						q.Push(v)
						model = append(model, v)
					} else {
						v, ok := q.TryPop()
						if len(model) == 0 {
							if ok {
								t.Fatalf("popped %d from an empty queue", v)
							}
						} else {
							if !ok {
								t.Fatal("failed to pop from a non-empty queue")
							}
							if v != model[0] {
								t.Fatalf("popped %d, model says %d", v, model[0])
							}
							model = model[1:]
						}
					}
				}
				if q.Empty() != (len(model) == 0) {
					t.Fatalf("emptiness disagrees with model (%d left)", len(model))
				}
			})
		})
	}
}

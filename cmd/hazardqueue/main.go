// Two goroutines hammer one HazardQueue: each loop pushes a counter and
// immediately pops one back. The per-goroutine final values must sum to
// numThreads*numLoops.
package main

import (
	"fmt"
	"sync"

	"github.com/g-m-twostay/go-lockfree/Queues"
)

const (
	numThreads = 2
	numLoops   = 10_000_000
)

func main() {
	q := Queues.MakeHazardQueuePooled[uint64]()
	start := make(chan struct{})
	last := make([]uint64, numThreads)
	wg := &sync.WaitGroup{}
	wg.Add(numThreads)
	for i := 0; i < numThreads; i++ {
		go func(id int) {
			defer wg.Done()
			<-start
			var e uint64
			for n := 0; n < numLoops; n++ {
				e++
				q.Push(e)
				ok := false
				for e, ok = q.TryPop(); !ok; e, ok = q.TryPop() {
					fmt.Println("???")
				}
			}
			last[id] = e
		}(i)
	}
	close(start)
	wg.Wait()
	var sum uint64
	for i, e := range last {
		fmt.Printf("Thread %d: last dequeued = %d\n", i, e)
		sum += e
	}
	fmt.Println("Sum:", sum)
	if sum == numThreads*numLoops {
		fmt.Println("OK!")
	}
}

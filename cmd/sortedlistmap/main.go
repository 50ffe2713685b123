// Single-threaded walkthrough of the sorted-list map operations.
package main

import (
	"fmt"

	"github.com/g-m-twostay/go-lockfree/Maps"
)

func show(m *Maps.SortedListMap[int, string]) {
	m.ForEach(func(k int, v string) bool {
		fmt.Printf("%d:%s, ", k, v)
		return true
	})
	fmt.Println()
}

func main() {
	m := Maps.MakeSortedListMap[int, string]()

	m.Put(7, "foo")
	m.Put(3, "bar")
	m.Put(5, "baz")

	show(m)

	out, ok := m.Get(5)
	fmt.Printf("%t:%s\n", ok, out)
	out, ok = m.Get(6)
	fmt.Printf("%t:%s\n", ok, out)

	show(m)

	out, ok = m.Put(3, "hoge")
	fmt.Printf("%t:%s\n", ok, out)
	out, ok = m.Put(4, "fuga")
	fmt.Printf("%t:%s\n", ok, out)

	show(m)

	out, ok = m.Remove(5)
	fmt.Printf("%t:%s\n", ok, out)
	out, ok = m.Remove(6)
	fmt.Printf("%t:%s\n", ok, out)

	show(m)
}

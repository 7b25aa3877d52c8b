// Package convert turns host data into inspect values.
//
// FromGo walks arbitrary Go values with reflection. Pointers, maps and slices
// that are reached more than once map to the same inspect composite, so cyclic
// Go graphs stay cyclic and render as [Circular]:
//
//	type node struct {
//	    Name string
//	    Next *node
//	}
//	n := &node{Name: "a"}
//	n.Next = n
//	inspect.Inspect(convert.FromGo(n)) // { Name: 'a', Next: [Circular] }
//
// FromJSON parses a JSON document, keeping object keys in document order.
package convert

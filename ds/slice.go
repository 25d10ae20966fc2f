package ds

import (
	"iter"
	"slices"
)

// use make(Slice[T], len, cap) or Slice[T]{} to make instances of this
type Slice[T any] []T

func (s *Slice[T]) Push(items ...T) {
	*s = append(*s, items...)
}

// PopFront removes and returns the first item, keeping the order of the rest.
func (s *Slice[T]) PopFront() T {
	item := (*s)[0]

	var zero T
	(*s)[0] = zero
	*s = (*s)[1:]

	return item
}

// RemoveAt removes the item at index, keeping the order of the rest.
func (s *Slice[T]) RemoveAt(index int) T {
	item := (*s)[index]
	*s = slices.Delete(*s, index, index+1)
	return item
}

// Partition keeps the items for which keep returns true, in order, and
// returns the others, in order.
func (s *Slice[T]) Partition(keep func(T) bool) (dropped Slice[T]) {
	kept := (*s)[:0]
	for _, item := range *s {
		if keep(item) {
			kept = append(kept, item)
		} else {
			dropped = append(dropped, item)
		}
	}

	// don't hold on to references past the new length
	clear((*s)[len(kept):])
	*s = kept

	return dropped
}

// Clear empties the slice and returns what it held.
func (s *Slice[T]) Clear() (items Slice[T]) {
	items = *s
	*s = nil
	return items
}

func (s *Slice[T]) Clone() []T {
	return slices.Clone(*s)
}

func (s *Slice[T]) IsEmpty() bool {
	return len(*s) == 0
}

func (s *Slice[T]) Len() int {
	return len(*s)
}

func (s *Slice[T]) Forwards() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < len(*s); i++ {
			if !yield(i, (*s)[i]) {
				return
			}
		}
	}
}

// Index returns the position of item in s or -1.
func Index[T comparable](s Slice[T], item T) int {
	return slices.Index(s, item)
}

// Package ring provides a fixed-capacity FIFO buffer for display windows.
package ring

// Buffer keeps at most Cap() items. Index 0 is always the oldest retained
// item; pushing onto a full buffer evicts it.
type Buffer[T any] struct {
	items []T
	head  int
	n     int
}

// New returns an empty buffer. A capacity below 1 is raised to 1.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

func (b *Buffer[T]) Push(v T) {
	c := len(b.items)
	if b.n < c {
		b.items[(b.head+b.n)%c] = v
		b.n++
		return
	}
	b.items[b.head] = v
	b.head = (b.head + 1) % c
}

func (b *Buffer[T]) Len() int { return b.n }
func (b *Buffer[T]) Cap() int { return len(b.items) }
func (b *Buffer[T]) Full() bool {
	return b.n == len(b.items)
}

// At returns the i-th oldest item. It panics when i is out of range, like a
// slice index.
func (b *Buffer[T]) At(i int) T {
	if i < 0 || i >= b.n {
		panic("ring: index out of range")
	}
	return b.items[(b.head+i)%len(b.items)]
}

// Last returns the newest item and false when empty.
func (b *Buffer[T]) Last() (T, bool) {
	var zero T
	if b.n == 0 {
		return zero, false
	}
	return b.At(b.n - 1), true
}

// Values copies the contents oldest-first into a new slice.
func (b *Buffer[T]) Values() []T {
	out := make([]T, b.n)
	for i := range out {
		out[i] = b.items[(b.head+i)%len(b.items)]
	}
	return out
}

// AppendTo appends the contents oldest-first to dst, letting hot paths reuse
// a scratch slice.
func (b *Buffer[T]) AppendTo(dst []T) []T {
	for i := 0; i < b.n; i++ {
		dst = append(dst, b.items[(b.head+i)%len(b.items)])
	}
	return dst
}

func (b *Buffer[T]) Reset() {
	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.head, b.n = 0, 0
}

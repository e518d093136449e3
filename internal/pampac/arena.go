package pampac

import (
	"fmt"

	"fortio.org/safecast"
)

// arena stores nodes addressed by 1-based uint32 handles; 0 means "none".
type arena[T any] struct {
	data []T
}

func newArena[T any](capHint int) *arena[T] {
	return &arena[T]{data: make([]T, 0, capHint)}
}

func (a *arena[T]) allocate(value T) uint32 {
	a.data = append(a.data, value)
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("arena overflow: %w", err))
	}
	return n
}

func (a *arena[T]) get(id uint32) *T {
	if id == 0 || int(id) > len(a.data) {
		return nil
	}
	return &a.data[id-1]
}

func (a *arena[T]) len() int {
	return len(a.data)
}

// truncate drops every node allocated after the first n.
func (a *arena[T]) truncate(n int) {
	if n < 0 || n >= len(a.data) {
		return
	}
	clear(a.data[n:])
	a.data = a.data[:n]
}

// Package stack implements the focus-ordered ring of windows held by a
// workspace.
//
// A Stack is a zipper: the elements above the focus, the focused element
// and the elements below it. The full order is Up..., Focus, Down...
// Up is stored top to bottom, so Up[len(Up)-1] sits directly above the
// focus and Down[0] directly below it.
package stack

// Direction selects which neighbour an operation moves towards.
type Direction int

const (
	// Forward moves down the stack (towards the end of the order).
	Forward Direction = iota
	// Backward moves up the stack (towards the head of the order).
	Backward
)

// Stack is a focus-aware ordered set. The zero value is an empty stack.
type Stack[T comparable] struct {
	up       []T
	focus    T
	hasFocus bool
	down     []T
}

// FromSlice builds a stack with the given order, focusing order[focus].
// An out of range focus index focuses the head.
func FromSlice[T comparable](order []T, focus int) Stack[T] {
	var s Stack[T]
	if len(order) == 0 {
		return s
	}
	if focus < 0 || focus >= len(order) {
		focus = 0
	}
	s.up = append([]T(nil), order[:focus]...)
	s.focus = order[focus]
	s.hasFocus = true
	s.down = append([]T(nil), order[focus+1:]...)
	return s
}

// Len returns the number of elements.
func (s *Stack[T]) Len() int {
	if !s.hasFocus {
		return 0
	}
	return len(s.up) + 1 + len(s.down)
}

// Empty reports whether the stack has no elements.
func (s *Stack[T]) Empty() bool {
	return !s.hasFocus
}

// Focused returns the focused element.
func (s *Stack[T]) Focused() (T, bool) {
	return s.focus, s.hasFocus
}

// Order returns a copy of the elements from head to tail.
func (s *Stack[T]) Order() []T {
	if !s.hasFocus {
		return nil
	}
	out := make([]T, 0, s.Len())
	out = append(out, s.up...)
	out = append(out, s.focus)
	return append(out, s.down...)
}

// FocusIndex returns the position of the focused element in Order, or -1.
func (s *Stack[T]) FocusIndex() int {
	if !s.hasFocus {
		return -1
	}
	return len(s.up)
}

// Contains reports whether v is a member.
func (s *Stack[T]) Contains(v T) bool {
	return s.indexOf(v) >= 0
}

// Insert adds v directly above the current focus and focuses it. Inserting
// an existing member only moves the focus to it.
func (s *Stack[T]) Insert(v T) {
	if s.Contains(v) {
		s.Focus(v)
		return
	}
	if s.hasFocus {
		s.down = append([]T{s.focus}, s.down...)
	}
	s.focus = v
	s.hasFocus = true
}

// Remove deletes v if present. When v was focused, the element directly
// below takes focus, then the one directly above; removing the last element
// leaves the stack empty. Reports whether v was a member.
func (s *Stack[T]) Remove(v T) bool {
	if !s.hasFocus {
		return false
	}
	if s.focus == v {
		var zero T
		switch {
		case len(s.down) > 0:
			s.focus = s.down[0]
			s.down = s.down[1:]
		case len(s.up) > 0:
			s.focus = s.up[len(s.up)-1]
			s.up = s.up[:len(s.up)-1]
		default:
			s.focus = zero
			s.hasFocus = false
		}
		return true
	}
	if i := index(s.up, v); i >= 0 {
		s.up = append(s.up[:i:i], s.up[i+1:]...)
		return true
	}
	if i := index(s.down, v); i >= 0 {
		s.down = append(s.down[:i:i], s.down[i+1:]...)
		return true
	}
	return false
}

// Focus moves the focus to v, keeping the order. Reports whether v was found.
func (s *Stack[T]) Focus(v T) bool {
	i := s.indexOf(v)
	if i < 0 {
		return false
	}
	*s = FromSlice(s.Order(), i)
	return true
}

// FocusNext moves the focus one element down, wrapping to the head.
func (s *Stack[T]) FocusNext() {
	s.FocusStep(Forward, true)
}

// FocusPrevious moves the focus one element up, wrapping to the tail.
func (s *Stack[T]) FocusPrevious() {
	s.FocusStep(Backward, true)
}

// FocusStep moves the focus one element in dir. Without wrap the focus
// stays put at either end.
func (s *Stack[T]) FocusStep(dir Direction, wrap bool) {
	if j, ok := s.neighbour(dir, wrap); ok {
		*s = FromSlice(s.Order(), j)
	}
}

// SwapFocused exchanges the focused element with its neighbour in the given
// direction, wrapping at either end. The same element stays focused.
func (s *Stack[T]) SwapFocused(dir Direction) {
	s.SwapStep(dir, true)
}

// SwapStep is SwapFocused with optional wrapping. Without wrap the
// focused element does not move past either end.
func (s *Stack[T]) SwapStep(dir Direction, wrap bool) {
	j, ok := s.neighbour(dir, wrap)
	if !ok {
		return
	}
	order := s.Order()
	i := s.FocusIndex()
	order[i], order[j] = order[j], order[i]
	*s = FromSlice(order, j)
}

// SwapHead exchanges the focused element with the head of the stack. When
// the head is already focused it is swapped with the element below it.
func (s *Stack[T]) SwapHead() {
	n := s.Len()
	if n < 2 {
		return
	}
	order := s.Order()
	i := s.FocusIndex()
	j := 0
	if i == 0 {
		j = 1
	}
	order[i], order[j] = order[j], order[i]
	*s = FromSlice(order, j)
}

// Rotate shifts every element one position in the given direction,
// cyclically. The focus stays on the same element.
func (s *Stack[T]) Rotate(dir Direction) {
	n := s.Len()
	if n < 2 {
		return
	}
	order := s.Order()
	focused := s.focus
	rotated := make([]T, n)
	for i, v := range order {
		rotated[wrap(i+step(dir), n)] = v
	}
	*s = FromSlice(rotated, index(rotated, focused))
}

// neighbour returns the index next to the focus in dir.
func (s *Stack[T]) neighbour(dir Direction, wrapAround bool) (int, bool) {
	n := s.Len()
	if n < 2 {
		return 0, false
	}
	j := s.FocusIndex() + step(dir)
	if j < 0 || j >= n {
		if !wrapAround {
			return 0, false
		}
		j = wrap(j, n)
	}
	return j, true
}

func (s *Stack[T]) indexOf(v T) int {
	if !s.hasFocus {
		return -1
	}
	if i := index(s.up, v); i >= 0 {
		return i
	}
	if s.focus == v {
		return len(s.up)
	}
	if i := index(s.down, v); i >= 0 {
		return len(s.up) + 1 + i
	}
	return -1
}

func index[T comparable](xs []T, v T) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}

func step(dir Direction) int {
	if dir == Backward {
		return -1
	}
	return 1
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

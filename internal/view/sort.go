// Package view computes derived, presentation-order views over entity
// collections: a single-key sort with a three-state direction cycle.
package view

import "sort"

type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

// SortState tracks the active sort key and direction. Reselecting the same
// key advances the cycle unsorted -> ascending -> descending -> unsorted;
// selecting a different key resets to ascending on that key.
type SortState struct {
	Key string
	Dir Direction
}

// Toggle advances the state for a key selection.
func (s *SortState) Toggle(key string) {
	if s.Key != key {
		s.Key = key
		s.Dir = Ascending
		return
	}
	switch s.Dir {
	case Unsorted:
		s.Dir = Ascending
	case Ascending:
		s.Dir = Descending
	case Descending:
		s.Dir = Unsorted
		s.Key = ""
	}
}

// Apply returns a sorted copy of items. The sort is stable so ties keep
// their input order; Unsorted returns the input order unchanged.
func Apply[T any](items []T, dir Direction, less func(a, b T) bool) []T {
	out := make([]T, len(items))
	copy(out, items)
	switch dir {
	case Ascending:
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	case Descending:
		sort.SliceStable(out, func(i, j int) bool { return less(out[j], out[i]) })
	}
	return out
}

// Sort applies state to items using a map of named comparators. An unknown
// key leaves the input order unchanged.
func Sort[T any](items []T, state SortState, lessByKey map[string]func(a, b T) bool) []T {
	if state.Dir == Unsorted {
		return Apply(items, Unsorted, nil)
	}
	less, ok := lessByKey[state.Key]
	if !ok {
		return Apply(items, Unsorted, nil)
	}
	return Apply(items, state.Dir, less)
}

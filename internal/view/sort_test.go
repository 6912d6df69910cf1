package view

import (
	"reflect"
	"testing"
)

func TestToggleCycle(t *testing.T) {
	var s SortState
	s.Toggle("title")
	if s.Key != "title" || s.Dir != Ascending {
		t.Fatalf("after first toggle: %+v", s)
	}
	s.Toggle("title")
	if s.Dir != Descending {
		t.Fatalf("after second toggle: %+v", s)
	}
	s.Toggle("title")
	if s.Dir != Unsorted || s.Key != "" {
		t.Fatalf("after third toggle: %+v", s)
	}
	s.Toggle("title")
	if s.Key != "title" || s.Dir != Ascending {
		t.Fatalf("cycle did not restart: %+v", s)
	}
}

func TestToggleNewKeyResets(t *testing.T) {
	var s SortState
	s.Toggle("title")
	s.Toggle("title") // descending
	s.Toggle("status")
	if s.Key != "status" || s.Dir != Ascending {
		t.Fatalf("new key did not reset to ascending: %+v", s)
	}
}

type row struct {
	Name string
	Seq  int
}

func TestApplyStableTies(t *testing.T) {
	rows := []row{
		{"b", 1}, {"a", 2}, {"b", 3}, {"a", 4},
	}
	byName := func(x, y row) bool { return x.Name < y.Name }

	asc := Apply(rows, Ascending, byName)
	wantAsc := []row{{"a", 2}, {"a", 4}, {"b", 1}, {"b", 3}}
	if !reflect.DeepEqual(asc, wantAsc) {
		t.Fatalf("ascending = %v", asc)
	}

	desc := Apply(rows, Descending, byName)
	// Ties keep input order in both directions.
	wantDesc := []row{{"b", 1}, {"b", 3}, {"a", 2}, {"a", 4}}
	if !reflect.DeepEqual(desc, wantDesc) {
		t.Fatalf("descending = %v", desc)
	}

	unsorted := Apply(rows, Unsorted, byName)
	if !reflect.DeepEqual(unsorted, rows) {
		t.Fatalf("unsorted = %v", unsorted)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	rows := []row{{"c", 1}, {"a", 2}, {"b", 3}}
	orig := make([]row, len(rows))
	copy(orig, rows)
	Apply(rows, Ascending, func(x, y row) bool { return x.Name < y.Name })
	if !reflect.DeepEqual(rows, orig) {
		t.Fatalf("input mutated: %v", rows)
	}
}

func TestSortByKey(t *testing.T) {
	rows := []row{{"b", 2}, {"a", 1}, {"c", 3}}
	lessByKey := map[string]func(a, b row) bool{
		"name": func(x, y row) bool { return x.Name < y.Name },
		"seq":  func(x, y row) bool { return x.Seq < y.Seq },
	}

	got := Sort(rows, SortState{Key: "name", Dir: Ascending}, lessByKey)
	if got[0].Name != "a" || got[2].Name != "c" {
		t.Fatalf("sorted by name = %v", got)
	}

	// Unknown key and Unsorted both preserve input order.
	if got := Sort(rows, SortState{Key: "nope", Dir: Ascending}, lessByKey); !reflect.DeepEqual(got, rows) {
		t.Fatalf("unknown key = %v", got)
	}
	if got := Sort(rows, SortState{}, lessByKey); !reflect.DeepEqual(got, rows) {
		t.Fatalf("unsorted state = %v", got)
	}
}

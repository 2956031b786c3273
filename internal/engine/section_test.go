package engine

import "testing"

func TestSectionStackPushPrevious(t *testing.T) {
	s := NewSectionStack()
	s.Push(".text")
	s.Push(".data")
	prev, err := s.Previous()
	if err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if prev != ".text" {
		t.Errorf("Previous() = %q, want .text", prev)
	}
	if s.Current() != ".text" {
		t.Errorf("Current() = %q, want .text", s.Current())
	}
}

func TestSectionStackPreviousWithoutPriorIsError(t *testing.T) {
	s := NewSectionStack()
	if _, err := s.Previous(); err == nil {
		t.Fatal("expected error for .previous with no prior section")
	}
}

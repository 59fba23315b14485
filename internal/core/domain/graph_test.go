package domain_test

import (
	"errors"
	"slices"
	"testing"

	"go.trai.ch/tasker/internal/core/domain"
	"go.trai.ch/zerr"
)

func names(ss ...string) []domain.InternedString {
	out := make([]domain.InternedString, len(ss))
	for i, s := range ss {
		out[i] = domain.NewInternedString(s)
	}
	return out
}

func TestGraph_Validate_Cycle(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(domain.NewInternedString("A"), names("B")...)
	g.AddNode(domain.NewInternedString("B"), names("A")...)

	err := g.Validate()
	if err == nil {
		t.Fatal("expected error for cycle, got nil")
	}
	if !errors.Is(err, domain.ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}

	// Verify error is of correct type
	zErr, ok := err.(*zerr.Error)
	if !ok {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	cycle, ok := zErr.Metadata()["cycle"].(string)
	if !ok {
		t.Fatalf("expected cycle metadata, got %v", zErr.Metadata())
	}
	if cycle != "A -> B -> A" {
		t.Errorf("expected cycle 'A -> B -> A', got %q", cycle)
	}
}

func TestGraph_Validate_SelfLoop(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(domain.NewInternedString("a:{a}"), names("a:{a}")...)

	if err := g.Validate(); !errors.Is(err, domain.ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}

func TestGraph_Walk_Order(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(domain.NewInternedString("test"), names("a", "b", "c")...)
	g.AddNode(domain.NewInternedString("a"), names("b")...)
	g.AddNode(domain.NewInternedString("b"))
	g.AddNode(domain.NewInternedString("c"), names("b")...)

	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var order []string
	for name := range g.Walk() {
		order = append(order, name.String())
	}

	want := []string{"b", "a", "c", "test"}
	if !slices.Equal(order, want) {
		t.Errorf("expected order %v, got %v", want, order)
	}
	if g.TaskCount() != 4 {
		t.Errorf("expected 4 nodes, got %d", g.TaskCount())
	}
}

func TestGraph_Validate_UnknownPredecessorIsLeaf(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(domain.NewInternedString("x"), names("missing")...)

	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var order []string
	for name := range g.Walk() {
		order = append(order, name.String())
	}
	if !slices.Equal(order, []string{"missing", "x"}) {
		t.Errorf("unexpected order %v", order)
	}
}

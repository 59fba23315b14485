package domain_test

import (
	"encoding/json"
	"testing"

	"go.trai.ch/tasker/internal/core/domain"
)

func TestInternedString(t *testing.T) {
	a := domain.NewInternedString("a:1")
	b := domain.NewInternedString("a:1")

	if a != b {
		t.Errorf("expected identical keys to intern to the same handle")
	}
	if a.String() != "a:1" {
		t.Errorf("expected %q, got %q", "a:1", a.String())
	}

	var zero domain.InternedString
	if zero.String() != "" {
		t.Errorf("expected zero value to render empty, got %q", zero.String())
	}
}

func TestInternedString_JSON(t *testing.T) {
	type status struct {
		Key domain.InternedString `json:"key"`
	}

	data, err := json.Marshal(status{Key: domain.NewInternedString("test")})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"key":"test"}` {
		t.Errorf("unexpected JSON %s", data)
	}

	var out status
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out.Key != domain.NewInternedString("test") {
		t.Errorf("expected round-tripped key to equal the interned original")
	}
}

func TestNewInternedStrings(t *testing.T) {
	got := domain.NewInternedStrings([]string{"b", "c", "b"})

	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0] != got[2] {
		t.Errorf("expected duplicate names to share a handle")
	}
	if len(domain.NewInternedStrings(nil)) != 0 {
		t.Errorf("expected empty result for nil input")
	}
}

package api

import (
	"sort"
	"strings"
	"testing"
)

func TestNewResponseID_Prefix(t *testing.T) {
	id := NewResponseID()
	if !strings.HasPrefix(id, "resp_bridge_") {
		t.Errorf("response ID %q does not have resp_bridge_ prefix", id)
	}
}

func TestNewResponseID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewResponseID()
		if seen[id] {
			t.Fatalf("duplicate response ID %q", id)
		}
		seen[id] = true
	}
}

func TestNewResponseID_Monotonic(t *testing.T) {
	ids := make([]string, 0, 50)
	for range 50 {
		ids = append(ids, NewResponseID())
	}
	if !sort.StringsAreSorted(ids) {
		t.Error("sequentially generated response IDs are not sorted")
	}
}

func TestNewIndexedCallID_CarriesIndex(t *testing.T) {
	id := NewIndexedCallID(3)
	if !strings.HasPrefix(id, "call_") {
		t.Errorf("call ID %q does not have call_ prefix", id)
	}
	if !strings.HasSuffix(id, "_3") {
		t.Errorf("call ID %q does not carry index suffix", id)
	}
}

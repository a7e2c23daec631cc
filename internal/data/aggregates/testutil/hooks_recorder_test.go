package testutil

import (
	"testing"
	"time"
)

func TestHooksRecorder_CapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("Taxonomy.CreateTerm", "success", 10*time.Millisecond)
	h.ObserveOperation("Taxonomy.CreateTerm", "validation", time.Millisecond)
	h.ObserveOperation("Taxonomy.DeleteTerm", "success", time.Millisecond)
	h.IncConflict("Taxonomy.CreateTerm")
	h.IncRetry("Taxonomy.CreateTerm")

	got := h.Statuses("Taxonomy.CreateTerm")
	if len(got) != 2 || got[0] != "success" || got[1] != "validation" {
		t.Fatalf("unexpected statuses: %+v", got)
	}
	if len(h.Conflicts) != 1 || h.Conflicts[0] != "Taxonomy.CreateTerm" {
		t.Fatalf("unexpected conflicts: %+v", h.Conflicts)
	}
	if len(h.Retries) != 1 || h.Retries[0] != "Taxonomy.CreateTerm" {
		t.Fatalf("unexpected retries: %+v", h.Retries)
	}
}

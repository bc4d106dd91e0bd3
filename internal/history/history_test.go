package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/netpulse/netpulse/internal/domain"
)

func result(id string, seq int) domain.ProbeResult {
	return domain.ProbeResult{
		TargetID:  domain.TargetID(id),
		Outcome:   domain.OutcomeSuccess,
		Message:   fmt.Sprintf("seq-%d", seq),
		CheckedAt: time.Date(2026, 8, 1, 0, 0, seq, 0, time.UTC),
	}
}

func TestStore_NeverExceedsCapacity(t *testing.T) {
	s := New(5)
	for i := 0; i < 37; i++ {
		s.Append(result("T1", i))
		if got := s.Len("T1"); got > 5 {
			t.Fatalf("after %d appends length %d exceeds capacity", i+1, got)
		}
	}
	if got := s.Len("T1"); got != 5 {
		t.Fatalf("want full window of 5, got %d", got)
	}
}

func TestStore_OldestEvictedFirst(t *testing.T) {
	s := New(3)
	for i := 0; i < 5; i++ {
		s.Append(result("T1", i))
	}
	got := s.Query("T1", 0)
	// seq 0 and 1 evicted; newest first
	want := []string{"seq-4", "seq-3", "seq-2"}
	if len(got) != len(want) {
		t.Fatalf("want %d results, got %d", len(want), len(got))
	}
	for i, msg := range want {
		if got[i].Message != msg {
			t.Fatalf("at %d want %s got %s", i, msg, got[i].Message)
		}
	}
}

func TestStore_QueryLimitAndUnknown(t *testing.T) {
	s := New(10)
	for i := 0; i < 6; i++ {
		s.Append(result("T1", i))
	}

	got := s.Query("T1", 2)
	if len(got) != 2 || got[0].Message != "seq-5" || got[1].Message != "seq-4" {
		t.Fatalf("limit query wrong: %+v", got)
	}

	if got := s.Query("never-seen", 10); len(got) != 0 {
		t.Fatalf("unknown target should be empty, got %+v", got)
	}
}

func TestStore_TargetsAreIndependent(t *testing.T) {
	s := New(2)
	s.Append(result("A", 1))
	s.Append(result("B", 1))
	s.Append(result("B", 2))
	s.Append(result("B", 3))

	if got := s.Len("A"); got != 1 {
		t.Fatalf("A should hold 1, got %d", got)
	}
	if got := s.Query("B", 0); len(got) != 2 || got[0].Message != "seq-3" {
		t.Fatalf("B window wrong: %+v", got)
	}
}

func TestStore_Drop(t *testing.T) {
	s := New(4)
	s.Append(result("T1", 1))
	s.Drop("T1")
	if got := s.Query("T1", 0); len(got) != 0 {
		t.Fatalf("dropped target still has history: %+v", got)
	}
	// dropping again is harmless
	s.Drop("T1")
}

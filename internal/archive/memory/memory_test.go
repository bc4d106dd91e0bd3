package memory

import (
	"context"
	"testing"
	"time"

	"github.com/netpulse/netpulse/internal/domain"
)

func TestStore_AppendAndAll(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < 3; i++ {
		err := s.Append(ctx, domain.ProbeResult{
			TargetID:  domain.TargetID("T1"),
			Outcome:   domain.OutcomeSuccess,
			LatencyMS: float64(i),
			CheckedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("want 3 results, got %d", len(all))
	}
	if all[0].LatencyMS != 0 || all[2].LatencyMS != 2 {
		t.Fatalf("order should be append order: %+v", all)
	}

	// returned slice is a copy
	all[0].LatencyMS = 99
	if s.All()[0].LatencyMS == 99 {
		t.Fatalf("All must return a copy")
	}
}

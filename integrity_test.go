package civicpulse

import (
	"testing"
	"time"
)

func TestIntegrityHashDeterministic(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)

	a := IntegrityHash("report-1", "fp-1", at)
	b := IntegrityHash("report-1", "fp-1", at)

	if a != b {
		t.Fatalf("same inputs produced different hashes")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64-char hex digest, got %d chars", len(a))
	}
}

func TestVoteStampDistinguishesVoters(t *testing.T) {
	at := time.Now()

	// Two voters on the same report at the same instant.
	if VoteStamp("report-1", "fp-a", at) == VoteStamp("report-1", "fp-b", at) {
		t.Fatalf("stamps for different fingerprints collided")
	}

	// One voter on two reports at the same instant.
	if VoteStamp("report-1", "fp-a", at) == VoteStamp("report-2", "fp-a", at) {
		t.Fatalf("stamps for different reports collided")
	}
}

func TestStampVariesWithTime(t *testing.T) {
	at := time.Now()

	if ReportStamp("pothole on Main St", at) == ReportStamp("pothole on Main St", at.Add(time.Nanosecond)) {
		t.Fatalf("stamps at different instants should differ")
	}
}

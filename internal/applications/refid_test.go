package applications

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestFormatRefID(t *testing.T) {
	at := time.Date(2025, 12, 28, 10, 30, 0, 0, time.UTC)

	got := FormatRefID(at, 7)
	if got != "PATTA-20251228-0007" {
		t.Fatalf("expected PATTA-20251228-0007, got %s", got)
	}

	// Padding is a minimum width, large sequences keep all digits.
	got = FormatRefID(at, 123456)
	if got != "PATTA-20251228-123456" {
		t.Fatalf("expected PATTA-20251228-123456, got %s", got)
	}
}

func TestFormatRefIDUsesUTCDate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2025, 12, 29, 1, 0, 0, 0, ist) // still Dec 28 in UTC

	got := FormatRefID(at, 1)
	if got != "PATTA-20251228-0001" {
		t.Fatalf("expected UTC date in ref id, got %s", got)
	}
}

func TestValidRefID(t *testing.T) {
	valid := []string{"PATTA-20251228-0001", "PATTA-20240101-123456"}
	for _, s := range valid {
		if !ValidRefID(s) {
			t.Errorf("expected %s to be valid", s)
		}
	}

	invalid := []string{"", "PATTA-2025-0001", "patta-20251228-0001", "PATTA-20251228-001", "APP-20251228-0001"}
	for _, s := range invalid {
		if ValidRefID(s) {
			t.Errorf("expected %s to be invalid", s)
		}
	}
}

func TestNextRefSeqConcurrentUniqueness(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	const workers = 50
	seqs := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := repo.NextRefSeq(ctx)
			if err != nil {
				t.Errorf("next ref seq: %v", err)
				return
			}
			seqs <- seq
		}()
	}
	wg.Wait()
	close(seqs)

	seen := make(map[int64]bool, workers)
	for seq := range seqs {
		if seen[seq] {
			t.Fatalf("duplicate sequence value %d", seq)
		}
		seen[seq] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d unique sequences, got %d", workers, len(seen))
	}
}

func TestDaysPendingClampsToZero(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	app := Application{SubmittedAt: now.AddDate(0, 0, -3)}
	if got := app.DaysPending(now); got != 3 {
		t.Fatalf("expected 3 days pending, got %d", got)
	}

	// Clock skew can put the submission in the future.
	app = Application{SubmittedAt: now.Add(2 * time.Hour)}
	if got := app.DaysPending(now); got != 0 {
		t.Fatalf("expected 0 days pending for future submission, got %d", got)
	}
}

package testfixtures

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}

	nowFn := clock.NowFunc()
	if got := clock.Advance(90 * time.Minute); !got.Equal(nowFn()) {
		t.Fatalf("NowFunc out of step: %v vs %v", got, nowFn())
	}

	var nilClock *Clock
	if nilClock.NowFunc() == nil {
		t.Fatal("nil clock should fall back to time.Now")
	}
}

func TestSequence(t *testing.T) {
	seq := NewSequence("toast")
	if first, second := seq.Next(), seq.Next(); first != "toast-1" || second != "toast-2" {
		t.Fatalf("unexpected identifiers %q %q", first, second)
	}
	if got := NewSequence("").Next(); got != "id-1" {
		t.Fatalf("expected default prefix, got %q", got)
	}
}

package exam_test

import (
	"testing"

	"github.com/edustack/examsim/internal/exam"
)

func TestTimerCountsDownMonotonically(t *testing.T) {
	tm := exam.NewTimer(1, nil, nil) // 60s
	prev := tm.Remaining()
	if prev != 60 {
		t.Fatalf("want 60s at start, got %d", prev)
	}
	for i := 0; i < 70; i++ {
		tm.Tick()
		if tm.Remaining() > prev {
			t.Fatalf("remaining increased: %d -> %d", prev, tm.Remaining())
		}
		prev = tm.Remaining()
	}
	if tm.Remaining() != 0 {
		t.Fatalf("remaining should bottom out at 0, got %d", tm.Remaining())
	}
}

func TestTimerWarningFiresExactlyOnce(t *testing.T) {
	warnings := 0
	tm := exam.NewTimer(6, func() { warnings++ }, nil) // 360s, warning at 300
	for i := 0; i < 360; i++ {
		tm.Tick()
	}
	if warnings != 1 {
		t.Fatalf("want exactly 1 warning, got %d", warnings)
	}
	if !tm.Warned() {
		t.Fatalf("warned flag not set")
	}
}

func TestTimerWarningNeverFiresOnShortExam(t *testing.T) {
	warnings := 0
	tm := exam.NewTimer(1, func() { warnings++ }, nil)
	for i := 0; i < 120; i++ {
		tm.Tick()
	}
	if warnings != 0 {
		t.Fatalf("1-minute exam can never reach the 5-minute mark from above; got %d warnings", warnings)
	}
}

func TestTimerNoWarningWhenDurationEqualsWarnMark(t *testing.T) {
	// The warn mark is only reachable from above; an exam starting exactly at
	// the mark (5 minutes at the default) counts straight down to expiry.
	warnings := 0
	tm := exam.NewTimer(5, func() { warnings++ }, nil) // 300s == default mark
	for i := 0; i < 300; i++ {
		tm.Tick()
	}
	if warnings != 0 || tm.Warned() {
		t.Fatalf("exam starting at the warn mark warned %d times", warnings)
	}
	if !tm.Expired() {
		t.Fatalf("timer should have expired")
	}
}

func TestTimerExpiryFiresOnceAndStops(t *testing.T) {
	expiries := 0
	tm := exam.NewTimer(1, nil, func() { expiries++ })
	for i := 0; i < 200; i++ {
		tm.Tick()
	}
	if expiries != 1 {
		t.Fatalf("want exactly 1 expiry, got %d", expiries)
	}
	if !tm.Expired() {
		t.Fatalf("expired flag not set")
	}
	if tm.Remaining() != 0 {
		t.Fatalf("remaining after expiry = %d, want 0", tm.Remaining())
	}
}

func TestTimerCustomWarnAt(t *testing.T) {
	warnings := 0
	tm := exam.NewTimer(1, func() { warnings++ }, nil)
	tm.SetWarnAt(30)
	for i := 0; i < 60; i++ {
		tm.Tick()
	}
	if warnings != 1 {
		t.Fatalf("want 1 warning at the 30s mark, got %d", warnings)
	}
}

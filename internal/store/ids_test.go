// ABOUTME: Tests for per-day id allocation
// ABOUTME: Verifies the max+1 scan and prefix isolation
package store

import (
	"fmt"
	"testing"
	"time"
)

func TestAllocateIDFirstOfDay(t *testing.T) {
	day := time.Now().Format("2006_01_02")
	got := allocateID("dec", nil)
	want := fmt.Sprintf("dec_%s_001", day)
	if got != want {
		t.Errorf("allocateID() = %q, want %q", got, want)
	}
}

func TestAllocateIDMaxPlusOne(t *testing.T) {
	day := time.Now().Format("2006_01_02")
	existing := []string{
		fmt.Sprintf("dec_%s_001", day),
		fmt.Sprintf("dec_%s_007", day),
		fmt.Sprintf("dec_%s_003", day),
	}
	got := allocateID("dec", existing)
	want := fmt.Sprintf("dec_%s_008", day)
	if got != want {
		t.Errorf("allocateID() = %q, want %q", got, want)
	}
}

func TestAllocateIDIgnoresOtherDaysAndPrefixes(t *testing.T) {
	day := time.Now().Format("2006_01_02")
	existing := []string{
		"dec_2020_01_01_099",
		fmt.Sprintf("inbox_%s_005", day),
		"dec_habcdef123456",
		"garbage",
	}
	got := allocateID("dec", existing)
	want := fmt.Sprintf("dec_%s_001", day)
	if got != want {
		t.Errorf("allocateID() = %q, want %q", got, want)
	}
}

func TestAllocateIDSequence(t *testing.T) {
	var ids []string
	for i := 0; i < 12; i++ {
		ids = append(ids, allocateID("inbox", ids))
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id allocated: %s", id)
		}
		seen[id] = true
	}
	day := time.Now().Format("2006_01_02")
	if want := fmt.Sprintf("inbox_%s_012", day); ids[11] != want {
		t.Errorf("12th id = %q, want %q", ids[11], want)
	}
}

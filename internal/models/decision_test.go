// ABOUTME: Tests for DecisionRecord enums and derived ids
// ABOUTME: Verifies enum validation and id stability
package models

import (
	"strings"
	"testing"
)

func TestValidDecisionStatus(t *testing.T) {
	tests := []struct {
		status DecisionStatus
		want   bool
	}{
		{DecisionCandidate, true},
		{DecisionFinal, true},
		{DecisionSuperseded, true},
		{"", false},
		{"approved", false},
	}

	for _, tt := range tests {
		if got := ValidDecisionStatus(tt.status); got != tt.want {
			t.Errorf("ValidDecisionStatus(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestValidConfidence(t *testing.T) {
	tests := []struct {
		c    Confidence
		want bool
	}{
		{"", true},
		{ConfidenceLow, true},
		{ConfidenceMedium, true},
		{ConfidenceHigh, true},
		{"certain", false},
	}

	for _, tt := range tests {
		if got := ValidConfidence(tt.c); got != tt.want {
			t.Errorf("ValidConfidence(%q) = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestDerivedDecisionID(t *testing.T) {
	a := DerivedDecisionID("2026-08-30T10:00:00", "bathroom.floor", "tile", "white hex")
	b := DerivedDecisionID("2026-08-30T10:00:00", "bathroom.floor", "tile", "white hex")
	if a != b {
		t.Errorf("same content hashed to different ids: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "dec_h") {
		t.Errorf("id = %q, want dec_h prefix", a)
	}

	c := DerivedDecisionID("2026-08-30T10:00:00", "bathroom.floor", "tile", "grey hex")
	if a == c {
		t.Error("different text hashed to the same id")
	}

	// Field boundaries matter: shifting content between fields must not collide.
	d := DerivedDecisionID("2026-08-30T10:00:00", "bathroom.floortile", "", "white hex")
	if a == d {
		t.Error("shifted field content hashed to the same id")
	}
}

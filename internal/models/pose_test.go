package models

import "testing"

// TestVisibleLandmarks verifies that landmarks at or below the visibility
// floor are dropped.
func TestVisibleLandmarks(t *testing.T) {
	lm := VisibleLandmarks(map[string]RawLandmark{
		"nose":       {X: 0.5, Y: 0.1, Visibility: 0.9},
		"left_knee":  {X: 0.4, Y: 0.7, Visibility: 0.5},
		"right_knee": {X: 0.6, Y: 0.7, Visibility: 0.51},
	})

	if len(lm) != 2 {
		t.Fatalf("got %d landmarks, want 2", len(lm))
	}
	if _, ok := lm["left_knee"]; ok {
		t.Error("left_knee at the floor should be dropped")
	}
	if p := lm["nose"]; p.X != 0.5 || p.Y != 0.1 {
		t.Errorf("nose = %+v, want {0.5 0.1}", p)
	}
}

// TestIndexedLandmarks verifies positional lists map to joint names and
// extra entries are ignored.
func TestIndexedLandmarks(t *testing.T) {
	raw := make([]RawLandmark, 35)
	for i := range raw {
		raw[i] = RawLandmark{X: float64(i), Y: 1, Visibility: 1}
	}
	raw[11].Visibility = 0.2

	lm := IndexedLandmarks(raw)
	if len(lm) != 32 {
		t.Fatalf("got %d landmarks, want 32", len(lm))
	}
	if _, ok := lm["left_shoulder"]; ok {
		t.Error("left_shoulder is not visible and should be dropped")
	}
	if p := lm["right_foot_index"]; p.X != 32 {
		t.Errorf("right_foot_index.X = %v, want 32", p.X)
	}
}

// TestIsKnownJoint covers both ends of the joint list and an unknown name.
func TestIsKnownJoint(t *testing.T) {
	for name, want := range map[string]bool{
		"nose":             true,
		"right_foot_index": true,
		"left_toe":         false,
		"":                 false,
	} {
		if got := IsKnownJoint(name); got != want {
			t.Errorf("IsKnownJoint(%q) = %v, want %v", name, got, want)
		}
	}
}

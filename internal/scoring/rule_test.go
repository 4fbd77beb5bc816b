package scoring

import (
	"math"
	"strings"
	"testing"

	"github.com/claude/posecoach/internal/models"
)

const tolerance = 1e-9

var elbowRule = models.PostureRule{
	Joint1: "left_shoulder", Joint2: "left_elbow", Joint3: "left_wrist",
	MinAngle: 160, MaxAngle: 180, Description: "Left arm should be fully extended", Weight: 2,
}

// TestScoreAngle covers the inclusive bounds and the linear falloff.
func TestScoreAngle(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  float64
	}{
		{"lower bound", 160, 1},
		{"upper bound", 180, 1},
		{"inside", 170, 1},
		{"10 below", 150, 1 - 10.0/90},
		{"45 below", 115, 0.5},
		{"exactly 90 below", 70, 0},
		{"100 below floors", 60, 0},
		{"above", 190, 1 - 10.0/90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreAngle(tt.angle, elbowRule).Score
			if math.Abs(got-tt.want) > tolerance {
				t.Errorf("scoreAngle(%v) = %v, want %v", tt.angle, got, tt.want)
			}
		})
	}
}

// TestScoreAngleMessages verifies the direction and magnitude in feedback.
func TestScoreAngleMessages(t *testing.T) {
	low := scoreAngle(150, elbowRule)
	if low.Visual != "✗ Left arm should be fully extended - increase angle by 10.0° (current: 150.0°)" {
		t.Errorf("below visual = %q", low.Visual)
	}
	if low.Spoken != "Increase the angle. Left arm should be fully extended" {
		t.Errorf("below spoken = %q", low.Spoken)
	}

	rule := elbowRule
	rule.MaxAngle = 170
	high := scoreAngle(175.3, rule)
	if high.Visual != "✗ Left arm should be fully extended - decrease angle by 5.3° (current: 175.3°)" {
		t.Errorf("above visual = %q", high.Visual)
	}
	if !strings.HasPrefix(high.Spoken, "Decrease the angle.") {
		t.Errorf("above spoken = %q", high.Spoken)
	}

	ok := scoreAngle(165, elbowRule)
	if ok.Visual != "✓ Left arm should be fully extended (angle: 165.0°)" {
		t.Errorf("in-range visual = %q", ok.Visual)
	}
	if ok.Spoken != "Good! Left arm should be fully extended" {
		t.Errorf("in-range spoken = %q", ok.Spoken)
	}
}

// TestEvaluateRuleStraightArm measures a real straight arm from landmarks.
func TestEvaluateRuleStraightArm(t *testing.T) {
	lm := models.Landmarks{
		"left_shoulder": {X: 0.2, Y: 0.5},
		"left_elbow":    {X: 0.4, Y: 0.5},
		"left_wrist":    {X: 0.6, Y: 0.5},
	}
	res := EvaluateRule(lm, elbowRule)
	if !res.Evaluated {
		t.Fatal("Evaluated = false, want true")
	}
	if math.Abs(res.Angle-180) > 1e-4 {
		t.Errorf("angle = %v, want 180", res.Angle)
	}
	if res.Score < 0.9999 {
		t.Errorf("score = %v, want 1", res.Score)
	}
}

// TestEvaluateRuleBentArm verifies a right angle scores against the lower bound.
func TestEvaluateRuleBentArm(t *testing.T) {
	lm := models.Landmarks{
		"left_shoulder": {X: 0.4, Y: 0.2},
		"left_elbow":    {X: 0.4, Y: 0.5},
		"left_wrist":    {X: 0.7, Y: 0.5},
	}
	res := EvaluateRule(lm, elbowRule)
	if math.Abs(res.Angle-90) > 1e-4 {
		t.Fatalf("angle = %v, want 90", res.Angle)
	}
	if want := 1 - 70.0/90; math.Abs(res.Score-want) > 1e-4 {
		t.Errorf("score = %v, want %v", res.Score, want)
	}
}

// TestEvaluateRuleMissingJoint verifies an invisible joint scores 0.
func TestEvaluateRuleMissingJoint(t *testing.T) {
	lm := models.Landmarks{
		"left_shoulder": {X: 0.2, Y: 0.5},
		"left_elbow":    {X: 0.4, Y: 0.5},
	}
	res := EvaluateRule(lm, elbowRule)
	if res.Score != 0 || res.Evaluated {
		t.Errorf("score = %v, evaluated = %v, want 0 and false", res.Score, res.Evaluated)
	}
	if res.Visual != "Cannot evaluate: Left arm should be fully extended (landmarks not visible)" {
		t.Errorf("visual = %q", res.Visual)
	}
	if res.Spoken != "Position yourself so I can see you better" {
		t.Errorf("spoken = %q", res.Spoken)
	}
}

// TestEvaluateRuleCoincidentJoints verifies overlapping joints score 0
// instead of producing NaN.
func TestEvaluateRuleCoincidentJoints(t *testing.T) {
	lm := models.Landmarks{
		"left_shoulder": {X: 0.4, Y: 0.5},
		"left_elbow":    {X: 0.4, Y: 0.5},
		"left_wrist":    {X: 0.6, Y: 0.5},
	}
	res := EvaluateRule(lm, elbowRule)
	if res.Score != 0 || res.Evaluated {
		t.Errorf("score = %v, evaluated = %v, want 0 and false", res.Score, res.Evaluated)
	}
	if !strings.Contains(res.Visual, "joints overlap") {
		t.Errorf("visual = %q", res.Visual)
	}
}

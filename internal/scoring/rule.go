// Package scoring grades landmark snapshots against exercise rules.
package scoring

import (
	"errors"
	"fmt"

	"github.com/claude/posecoach/internal/geometry"
	"github.com/claude/posecoach/internal/models"
)

// DeviationSpan is the angular error, in degrees, at which a rule's score
// reaches zero.
const DeviationSpan = 90.0

const repositionPrompt = "Position yourself so I can see you better"

// RuleResult is the outcome of checking one rule against one frame.
type RuleResult struct {
	Score  float64
	Visual string
	Spoken string
	// Angle is the measured angle; meaningful only when Evaluated is true.
	Angle     float64
	Evaluated bool
}

// EvaluateRule measures the rule's angle in lm and scores it. A rule whose
// joints are missing or coincide scores 0 with a reposition prompt.
func EvaluateRule(lm models.Landmarks, rule models.PostureRule) RuleResult {
	p1, ok1 := lm[rule.Joint1]
	p2, ok2 := lm[rule.Joint2]
	p3, ok3 := lm[rule.Joint3]
	if !ok1 || !ok2 || !ok3 {
		return RuleResult{
			Visual: fmt.Sprintf("Cannot evaluate: %s (landmarks not visible)", rule.Description),
			Spoken: repositionPrompt,
		}
	}

	angle, err := geometry.AngleAtVertex(p1, p2, p3)
	if errors.Is(err, geometry.ErrDegenerate) {
		return RuleResult{
			Visual: fmt.Sprintf("Cannot evaluate: %s (joints overlap)", rule.Description),
			Spoken: repositionPrompt,
		}
	}

	return scoreAngle(angle, rule)
}

// scoreAngle grades a measured angle against the rule's inclusive range.
func scoreAngle(angle float64, rule models.PostureRule) RuleResult {
	res := RuleResult{Angle: angle, Evaluated: true}
	switch {
	case angle < rule.MinAngle:
		d := rule.MinAngle - angle
		res.Score = deviationScore(d)
		res.Visual = fmt.Sprintf("✗ %s - increase angle by %.1f° (current: %.1f°)", rule.Description, d, angle)
		res.Spoken = "Increase the angle. " + rule.Description
	case angle > rule.MaxAngle:
		d := angle - rule.MaxAngle
		res.Score = deviationScore(d)
		res.Visual = fmt.Sprintf("✗ %s - decrease angle by %.1f° (current: %.1f°)", rule.Description, d, angle)
		res.Spoken = "Decrease the angle. " + rule.Description
	default:
		res.Score = 1
		res.Visual = fmt.Sprintf("✓ %s (angle: %.1f°)", rule.Description, angle)
		res.Spoken = "Good! " + rule.Description
	}
	return res
}

func deviationScore(distance float64) float64 {
	return max(0, 1-distance/DeviationSpan)
}

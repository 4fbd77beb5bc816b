package scoring

import (
	"strings"

	"github.com/claude/posecoach/internal/catalog"
	"github.com/claude/posecoach/internal/models"
)

const (
	// SpokenScoreCutoff and SpokenWeightFloor select which failing rules are
	// worth saying out loud.
	SpokenScoreCutoff = 0.8
	SpokenWeightFloor = 1.5
	// MaxSpokenCorrections caps how many corrections one spoken line carries.
	MaxSpokenCorrections = 2
)

// EvaluatePosture scores every rule of an exercise against lm and combines
// them into a weighted verdict. exercise is the catalog key and only names
// the result; rules may be empty.
func EvaluatePosture(lm models.Landmarks, exercise string, rules []models.PostureRule, threshold float64) models.PostureScore {
	if len(lm) == 0 {
		return models.PostureScore{
			IndividualScores: []float64{},
			FeedbackMessages: []string{"No pose detected"},
			ExerciseName:     exercise,
			AudioFeedback:    "Please position yourself in front of the camera",
		}
	}
	if len(rules) == 0 {
		return models.PostureScore{
			IndividualScores: []float64{},
			FeedbackMessages: []string{"No rules defined for this exercise"},
			ExerciseName:     exercise,
			AudioFeedback:    "Exercise configuration not found",
		}
	}

	scores := make([]float64, len(rules))
	messages := make([]string, len(rules))
	var corrections []string
	var weighted, total float64

	for i, rule := range rules {
		res := EvaluateRule(lm, rule)
		scores[i] = res.Score
		messages[i] = res.Visual
		weighted += res.Score * rule.Weight
		total += rule.Weight

		if res.Score < SpokenScoreCutoff && rule.Weight >= SpokenWeightFloor {
			corrections = append(corrections, res.Spoken)
		}
	}

	overall := 0.0
	if total > 0 {
		overall = weighted / total
	}
	correct := overall >= threshold

	spoken := catalog.SpokenName(exercise)
	var audio string
	switch {
	case correct:
		audio = "Excellent! You're performing the " + spoken + " correctly."
	case len(corrections) > 0:
		audio = strings.Join(corrections[:min(len(corrections), MaxSpokenCorrections)], " ")
	default:
		audio = "Keep adjusting your posture for the " + spoken
	}

	return models.PostureScore{
		OverallScore:     overall,
		IndividualScores: scores,
		FeedbackMessages: messages,
		IsCorrect:        correct,
		ExerciseName:     exercise,
		AudioFeedback:    audio,
	}
}

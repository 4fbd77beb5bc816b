package models

// PostureScore is the per-frame verdict for one exercise.
// Every field is always serialized; empty collections encode as [].
type PostureScore struct {
	OverallScore float64 `json:"overall_score"`
	// IndividualScores is indexed by rule position in the exercise.
	IndividualScores []float64 `json:"individual_scores"`
	FeedbackMessages []string  `json:"feedback_messages"`
	IsCorrect        bool      `json:"is_correct"`
	ExerciseName     string    `json:"exercise_name"`
	// AudioFeedback is the spoken-style candidate for this frame, before throttling.
	AudioFeedback string `json:"audio_feedback"`
}

// FrameResult is what a session returns for one processed frame.
type FrameResult struct {
	PostureScore
	// SpokenFeedback is set only on frames where the cooldown allowed speech.
	SpokenFeedback *string `json:"spoken_feedback"`
}

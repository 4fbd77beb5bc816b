// Package session tracks per-stream posture state: the chosen exercise,
// recent scores and the spoken-feedback cooldown.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/claude/posecoach/internal/catalog"
	"github.com/claude/posecoach/internal/metrics"
	"github.com/claude/posecoach/internal/models"
	"github.com/claude/posecoach/internal/scoring"
)

const (
	DefaultThreshold   = 0.8
	DefaultMaxCooldown = 300
)

var (
	// ErrUnknownExercise is returned when an exercise name is not in the
	// current catalog. The session is left unchanged.
	ErrUnknownExercise = errors.New("unknown exercise")
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
	ErrSessionAttached = errors.New("session already has a stream")
)

// RegistrySource provides the catalog currently in effect.
type RegistrySource interface {
	Registry() *catalog.Registry
}

// Settings are the per-session tunables.
type Settings struct {
	CorrectPoseThreshold float64 `json:"correct_pose_threshold"`
	MaxFeedbackCooldown  int     `json:"max_feedback_cooldown"`
}

// DefaultSettings returns the stock threshold and cooldown.
func DefaultSettings() Settings {
	return Settings{CorrectPoseThreshold: DefaultThreshold, MaxFeedbackCooldown: DefaultMaxCooldown}
}

// Stats is a point-in-time view of a session.
type Stats struct {
	ID                   string    `json:"session_id"`
	CurrentExercise      string    `json:"current_exercise"`
	DisplayName          string    `json:"display_name"`
	PoseHistory          []float64 `json:"pose_history"`
	FeedbackCooldown     int       `json:"feedback_cooldown"`
	CorrectPoseThreshold float64   `json:"correct_pose_threshold"`
	MaxFeedbackCooldown  int       `json:"max_feedback_cooldown"`
	FramesProcessed      int       `json:"frames_processed"`
	AverageScore         float64   `json:"average_score"`
	CreatedAt            time.Time `json:"created_at"`
}

// Session is the state of one analysis stream. Its methods are safe to call
// from multiple goroutines, but frames are processed one at a time.
type Session struct {
	id      string
	source  RegistrySource
	metrics *metrics.Metrics
	created time.Time

	mu       sync.Mutex
	exercise string
	history  History
	cooldown int
	settings Settings
	frames   int
}

// New creates a session on exercise. The name is normalized but not checked
// against the catalog; an unknown exercise scores as having no rules.
func New(id string, source RegistrySource, exercise string, settings Settings, m *metrics.Metrics) *Session {
	return &Session{
		id:       id,
		source:   source,
		metrics:  m,
		created:  time.Now().UTC(),
		exercise: catalog.NormalizeName(exercise),
		settings: settings,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Exercise returns the current exercise key.
func (s *Session) Exercise() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exercise
}

// ProcessFrame scores one landmark snapshot, records it in the history and
// decides whether the frame's spoken feedback is released.
func (s *Session) ProcessFrame(lm models.Landmarks) models.FrameResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, _ := s.source.Registry().Rules(s.exercise)
	score := scoring.EvaluatePosture(lm, s.exercise, rules, s.settings.CorrectPoseThreshold)

	s.history.Push(score.OverallScore)
	s.frames++
	if s.cooldown > 0 {
		s.cooldown--
	}

	res := models.FrameResult{PostureScore: score}
	if s.cooldown == 0 && (!score.IsCorrect || score.OverallScore == 1.0) {
		spoken := score.AudioFeedback
		res.SpokenFeedback = &spoken
		s.cooldown = s.settings.MaxFeedbackCooldown
	}

	s.metrics.ObserveFrame(s.exercise, score.OverallScore, score.IsCorrect, res.SpokenFeedback != nil)
	return res
}

// ChangeExercise switches to another catalog exercise, clearing the history
// and cooldown. On ErrUnknownExercise nothing changes.
func (s *Session) ChangeExercise(name string) (string, error) {
	key := catalog.NormalizeName(name)
	if !s.source.Registry().Has(key) {
		return "", fmt.Errorf("%w: %q", ErrUnknownExercise, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.exercise = key
	s.history.Reset()
	s.cooldown = 0
	return key, nil
}

// UpdateSettings applies the given values. A threshold outside [0, 1] or a
// negative cooldown is ignored. The effective settings are returned.
func (s *Session) UpdateSettings(threshold *float64, cooldown *int) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if threshold != nil && *threshold >= 0 && *threshold <= 1 {
		s.settings.CorrectPoseThreshold = *threshold
	}
	if cooldown != nil && *cooldown >= 0 {
		s.settings.MaxFeedbackCooldown = *cooldown
	}
	return s.settings
}

// Settings returns the current settings.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Stats returns a snapshot of the session.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		ID:                   s.id,
		CurrentExercise:      s.exercise,
		DisplayName:          catalog.DisplayName(s.exercise),
		PoseHistory:          s.history.Values(),
		FeedbackCooldown:     s.cooldown,
		CorrectPoseThreshold: s.settings.CorrectPoseThreshold,
		MaxFeedbackCooldown:  s.settings.MaxFeedbackCooldown,
		FramesProcessed:      s.frames,
		AverageScore:         s.history.Mean(),
		CreatedAt:            s.created,
	}
}

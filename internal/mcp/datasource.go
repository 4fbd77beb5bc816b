package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/posecoach/internal/catalog"
	"github.com/claude/posecoach/internal/models"
	"github.com/claude/posecoach/internal/scoring"
	"github.com/claude/posecoach/internal/session"
)

// ErrExerciseNotFound is returned when a catalog lookup misses.
var ErrExerciseNotFound = errors.New("exercise not found")

// ScoreRequest asks for a stateless evaluation of one frame.
type ScoreRequest struct {
	Exercise  string                        `json:"exercise"`
	Landmarks map[string]models.RawLandmark `json:"landmarks"`
	Threshold *float64                      `json:"threshold,omitempty"`
}

// DataSource abstracts the catalog and scorer for MCP tools. Both Local
// (catalog file on disk) and HTTPClient (remote via REST API) satisfy this
// interface.
type DataSource interface {
	ListExercises(ctx context.Context) ([]catalog.Exercise, error)
	GetExercise(ctx context.Context, name string) (*catalog.Exercise, error)
	Score(ctx context.Context, req ScoreRequest) (*models.PostureScore, error)
}

// Local serves MCP requests from an in-process catalog.
type Local struct {
	src session.RegistrySource
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal creates a DataSource over src, typically a *catalog.Store.
func NewLocal(src session.RegistrySource) *Local {
	return &Local{src: src}
}

func (l *Local) ListExercises(_ context.Context) ([]catalog.Exercise, error) {
	return l.src.Registry().Exercises(), nil
}

func (l *Local) GetExercise(_ context.Context, name string) (*catalog.Exercise, error) {
	rules, ok := l.src.Registry().Rules(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrExerciseNotFound, name)
	}
	key := catalog.NormalizeName(name)
	return &catalog.Exercise{Name: key, DisplayName: catalog.DisplayName(key), Rules: rules}, nil
}

func (l *Local) Score(ctx context.Context, req ScoreRequest) (*models.PostureScore, error) {
	ex, err := l.GetExercise(ctx, req.Exercise)
	if err != nil {
		return nil, err
	}
	threshold := session.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	score := scoring.EvaluatePosture(models.VisibleLandmarks(req.Landmarks), ex.Name, ex.Rules, threshold)
	return &score, nil
}

// Package geometry computes joint angles from 2-D landmark positions.
package geometry

import (
	"errors"
	"math"

	"github.com/claude/posecoach/internal/models"
)

// ErrDegenerate is returned when two of the three points coincide, leaving
// the angle undefined.
var ErrDegenerate = errors.New("degenerate angle: coincident points")

// AngleAtVertex returns the angle in degrees, in [0, 180], formed at p2 by
// the segments p2→p1 and p2→p3.
func AngleAtVertex(p1, p2, p3 models.Point) (float64, error) {
	v1x, v1y := p1.X-p2.X, p1.Y-p2.Y
	v2x, v2y := p3.X-p2.X, p3.Y-p2.Y

	n1 := math.Hypot(v1x, v1y)
	n2 := math.Hypot(v2x, v2y)
	if n1 == 0 || n2 == 0 {
		return 0, ErrDegenerate
	}

	cos := (v1x*v2x + v1y*v2y) / (n1 * n2)
	// Clamp floating-point drift outside acos's domain.
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi, nil
}

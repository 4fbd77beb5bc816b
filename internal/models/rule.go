package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// DefaultRuleWeight applies when a rule does not state its weight.
const DefaultRuleWeight = 1.0

// PostureRule constrains the angle formed at Joint2 by Joint1 and Joint3.
type PostureRule struct {
	Joint1      string  `json:"joint1"`
	Joint2      string  `json:"joint2"`
	Joint3      string  `json:"joint3"`
	MinAngle    float64 `json:"min_angle"`
	MaxAngle    float64 `json:"max_angle"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// Joints returns the rule's joint names; the middle one is the vertex.
func (r PostureRule) Joints() [3]string {
	return [3]string{r.Joint1, r.Joint2, r.Joint3}
}

// Validate checks that the rule can be evaluated and written back to a catalog.
func (r PostureRule) Validate() error {
	seen := make(map[string]bool, 3)
	for _, j := range r.Joints() {
		if j == "" {
			return errors.New("empty joint name")
		}
		if strings.ContainsAny(j, ",|\n") {
			return fmt.Errorf("joint name %q contains a reserved character", j)
		}
		if seen[j] {
			return fmt.Errorf("joint %q repeated", j)
		}
		seen[j] = true
	}
	if !finite(r.MinAngle) || !finite(r.MaxAngle) {
		return errors.New("angle bounds must be finite")
	}
	if r.MinAngle > r.MaxAngle {
		return fmt.Errorf("min angle %g exceeds max angle %g", r.MinAngle, r.MaxAngle)
	}
	if !finite(r.Weight) || r.Weight < 0 {
		return fmt.Errorf("weight %g must be a non-negative number", r.Weight)
	}
	if strings.ContainsAny(r.Description, "|\n") {
		return errors.New("description contains a reserved character")
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

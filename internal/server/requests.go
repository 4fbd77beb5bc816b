package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/claude/posecoach/internal/models"
)

const maxBodyBytes = 1 << 20

type createSessionRequest struct {
	Exercise string `json:"exercise"`
}

// frameRequest carries one frame of landmarks, either by name or in
// provider index order. Both forms may be combined.
type frameRequest struct {
	Landmarks    map[string]models.RawLandmark `json:"landmarks" validate:"omitempty,dive"`
	LandmarkList []models.RawLandmark          `json:"landmark_list" validate:"omitempty,max=33,dive"`
}

func (f frameRequest) snapshot() models.Landmarks {
	lm := models.IndexedLandmarks(f.LandmarkList)
	for name, p := range models.VisibleLandmarks(f.Landmarks) {
		lm[name] = p
	}
	return lm
}

type changeExerciseRequest struct {
	ExerciseName string `json:"exercise_name" validate:"required"`
}

// settingsRequest fields are optional; out-of-range values are ignored by
// the session rather than rejected.
type settingsRequest struct {
	CorrectPoseThreshold *float64 `json:"correct_pose_threshold"`
	FeedbackCooldown     *int     `json:"feedback_cooldown"`
}

type scoreRequest struct {
	frameRequest
	Exercise  string   `json:"exercise" validate:"required"`
	Threshold *float64 `json:"threshold" validate:"omitempty,gte=0,lte=1"`
}

type ruleRequest struct {
	Joint1      string   `json:"joint1" validate:"required"`
	Joint2      string   `json:"joint2" validate:"required"`
	Joint3      string   `json:"joint3" validate:"required"`
	MinAngle    float64  `json:"min_angle" validate:"gte=0,lte=360"`
	MaxAngle    float64  `json:"max_angle" validate:"gte=0,lte=360,gtefield=MinAngle"`
	Description string   `json:"description"`
	Weight      *float64 `json:"weight" validate:"omitempty,gte=0"`
}

type putExerciseRequest struct {
	Rules []ruleRequest `json:"rules" validate:"dive"`
}

func (p putExerciseRequest) rules() []models.PostureRule {
	out := make([]models.PostureRule, 0, len(p.Rules))
	for _, r := range p.Rules {
		weight := models.DefaultRuleWeight
		if r.Weight != nil {
			weight = *r.Weight
		}
		out = append(out, models.PostureRule{
			Joint1:      r.Joint1,
			Joint2:      r.Joint2,
			Joint3:      r.Joint3,
			MinAngle:    r.MinAngle,
			MaxAngle:    r.MaxAngle,
			Description: r.Description,
			Weight:      weight,
		})
	}
	return out
}

// decodeJSON reads a JSON body into v and validates it. An empty body is
// accepted when allowEmpty is set and leaves v at its zero value.
func (s *Server) decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) && allowEmpty {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return s.validateStruct(v)
}

func (s *Server) validateStruct(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return errors.New(validationMessage(err))
	}
	return nil
}

// validationMessage reports the first failed field.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fmt.Sprintf("validation error: %s - %s", ve[0].Field(), ve[0].Tag())
	}
	return "validation error: invalid request"
}

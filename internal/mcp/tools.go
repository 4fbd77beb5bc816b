package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/posecoach/internal/models"
)

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List every exercise in the catalog with its display name and number of rules."),
)

var toolGetExerciseRules = mcp.NewTool("get_exercise_rules",
	mcp.WithDescription("Get the joint-angle rules of one exercise. Each rule names three joints (the middle one is the vertex), an inclusive angle range in degrees, a description, and a weight."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name, e.g. 'Left Arm Raise' or LEFT_ARM_RAISE")),
)

var toolScorePose = mcp.NewTool("score_pose",
	mcp.WithDescription("Score one frame of pose landmarks against an exercise. Returns the overall score, per-rule scores, feedback messages and whether the posture is correct."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name")),
	mcp.WithString("landmarks", mcp.Required(), mcp.Description(`JSON object mapping joint name to {"x":..,"y":..,"visibility":..}; coordinates are image-normalized. Joints with visibility at or below 0.5 are treated as not visible.`)),
	mcp.WithNumber("threshold", mcp.Description("Overall score needed to count as correct, 0 to 1. Defaults to 0.8."), mcp.Min(0), mcp.Max(1)),
)

type exerciseSummary struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Rules       int    `json:"rules"`
}

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.ListExercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out := make([]exerciseSummary, 0, len(exercises))
	for _, ex := range exercises {
		out = append(out, exerciseSummary{Name: ex.Name, DisplayName: ex.DisplayName, Rules: len(ex.Rules)})
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	ex, err := h.ds.GetExercise(ctx, name)
	if errors.Is(err, ErrExerciseNotFound) {
		return mcp.NewToolResultError("unknown exercise: " + name), nil
	}
	if err != nil {
		h.log.Error("mcp get_exercise_rules", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(ex)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) scorePose(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	raw, err := req.RequireString("landmarks")
	if err != nil {
		return mcp.NewToolResultError("landmarks parameter is required"), nil
	}

	var landmarks map[string]models.RawLandmark
	if err := json.Unmarshal([]byte(raw), &landmarks); err != nil {
		return mcp.NewToolResultError("invalid landmarks JSON: " + err.Error()), nil
	}

	sr := ScoreRequest{Exercise: name, Landmarks: landmarks}
	if args := req.GetArguments(); args["threshold"] != nil {
		t := req.GetFloat("threshold", 0.8)
		if t < 0 || t > 1 {
			return mcp.NewToolResultError("threshold must be between 0 and 1"), nil
		}
		sr.Threshold = &t
	}

	score, err := h.ds.Score(ctx, sr)
	if errors.Is(err, ErrExerciseNotFound) {
		return mcp.NewToolResultError("unknown exercise: " + name), nil
	}
	if err != nil {
		h.log.Error("mcp score_pose", "error", err)
		return mcp.NewToolResultError("scoring failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(score)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

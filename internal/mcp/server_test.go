package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/posecoach/internal/catalog"
	"github.com/claude/posecoach/internal/models"
)

func testHandlers(t *testing.T) *handlers {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := catalog.Open(filepath.Join(t.TempDir(), "exercises.txt"), log)
	if err != nil {
		t.Fatal(err)
	}
	return &handlers{ds: NewLocal(store), log: log}
}

func callTool(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := fn(context.Background(), req)
	if err != nil {
		t.Fatalf("tool returned error: %v", err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("result has no text content")
	return ""
}

// straightArmPose returns landmarks with the left arm held straight out
// sideways and the right arm hanging down.
func straightArmPose() map[string]models.RawLandmark {
	return map[string]models.RawLandmark{
		"nose":           {X: 0.5, Y: 0.29, Visibility: 0.9},
		"left_shoulder":  {X: 0.6, Y: 0.3, Visibility: 0.9},
		"right_shoulder": {X: 0.4, Y: 0.3, Visibility: 0.9},
		"left_elbow":     {X: 0.7, Y: 0.3, Visibility: 0.9},
		"left_wrist":     {X: 0.8, Y: 0.3, Visibility: 0.9},
		"right_elbow":    {X: 0.4, Y: 0.4, Visibility: 0.9},
		"right_wrist":    {X: 0.4, Y: 0.5, Visibility: 0.9},
		"left_hip":       {X: 0.6, Y: 0.6, Visibility: 0.9},
		"right_hip":      {X: 0.4, Y: 0.6, Visibility: 0.9},
	}
}

// TestListExercisesTool verifies the summary of the default catalog.
func TestListExercisesTool(t *testing.T) {
	h := testHandlers(t)
	res := callTool(t, h.listExercises, nil)
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	var got []exerciseSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 7 {
		t.Fatalf("got %d exercises, want 7", len(got))
	}
	if got[1].Name != "LEFT_ARM_RAISE" || got[1].DisplayName != "Left Arm Raise" || got[1].Rules != 5 {
		t.Errorf("second exercise = %+v", got[1])
	}
}

// TestGetExerciseRulesTool verifies lookup by display name and the unknown
// exercise error.
func TestGetExerciseRulesTool(t *testing.T) {
	h := testHandlers(t)

	res := callTool(t, h.getExerciseRules, map[string]any{"exercise": "Squat"})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	var ex catalog.Exercise
	if err := json.Unmarshal([]byte(resultText(t, res)), &ex); err != nil {
		t.Fatal(err)
	}
	if ex.Name != "SQUAT" || len(ex.Rules) != 3 {
		t.Errorf("exercise = %s with %d rules, want SQUAT with 3", ex.Name, len(ex.Rules))
	}

	res = callTool(t, h.getExerciseRules, map[string]any{"exercise": "Jumping Jacks"})
	if !res.IsError {
		t.Error("expected tool error for unknown exercise")
	}

	res = callTool(t, h.getExerciseRules, nil)
	if !res.IsError {
		t.Error("expected tool error for missing exercise")
	}
}

// TestScorePoseTool verifies a frame is scored against the named exercise.
func TestScorePoseTool(t *testing.T) {
	h := testHandlers(t)
	raw, err := json.Marshal(straightArmPose())
	if err != nil {
		t.Fatal(err)
	}

	res := callTool(t, h.scorePose, map[string]any{
		"exercise":  "LEFT_ARM_RAISE",
		"landmarks": string(raw),
		"threshold": 0.5,
	})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	var score models.PostureScore
	if err := json.Unmarshal([]byte(resultText(t, res)), &score); err != nil {
		t.Fatal(err)
	}
	if len(score.IndividualScores) != 5 {
		t.Fatalf("individual scores = %d, want 5", len(score.IndividualScores))
	}
	if score.OverallScore <= 0.5 || !score.IsCorrect {
		t.Errorf("overall = %.3f correct = %v, want a passing score", score.OverallScore, score.IsCorrect)
	}
}

// TestScorePoseToolErrors verifies bad input is reported as a tool error.
func TestScorePoseToolErrors(t *testing.T) {
	h := testHandlers(t)

	tests := map[string]map[string]any{
		"bad json":         {"exercise": "SQUAT", "landmarks": "{not json"},
		"missing marks":    {"exercise": "SQUAT"},
		"unknown exercise": {"exercise": "PLANK", "landmarks": "{}"},
		"threshold range":  {"exercise": "SQUAT", "landmarks": "{}", "threshold": 1.5},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			if res := callTool(t, h.scorePose, args); !res.IsError {
				t.Errorf("expected tool error, got %s", resultText(t, res))
			}
		})
	}
}

// TestCatalogResource verifies the catalog resource is re-parseable text.
func TestCatalogResource(t *testing.T) {
	h := testHandlers(t)
	var req mcp.ReadResourceRequest
	req.Params.URI = "posecoach://catalog"

	contents, err := h.catalogText(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	if !strings.HasPrefix(text, "# Exercise Configuration File") {
		t.Errorf("catalog text missing header:\n%s", text)
	}
	res := catalog.ParseString(text)
	if len(res.Diagnostics) != 0 || res.Registry.Len() != 7 {
		t.Errorf("re-parsed %d exercises with %d diagnostics", res.Registry.Len(), len(res.Diagnostics))
	}
}

// TestJointsResource verifies the joint list resource.
func TestJointsResource(t *testing.T) {
	h := testHandlers(t)
	var req mcp.ReadResourceRequest
	req.Params.URI = "posecoach://joints"

	contents, err := h.jointNames(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	if err := json.Unmarshal([]byte(contents[0].(mcp.TextResourceContents).Text), &names); err != nil {
		t.Fatal(err)
	}
	if len(names) != 33 || names[0] != "nose" {
		t.Errorf("joints = %d starting %q, want 33 starting nose", len(names), names[0])
	}
}

// TestNewRegistersTools verifies the server builds with all handlers wired.
func TestNewRegistersTools(t *testing.T) {
	h := testHandlers(t)
	if s := New(h.ds, "test", h.log); s == nil {
		t.Fatal("New returned nil")
	}
}

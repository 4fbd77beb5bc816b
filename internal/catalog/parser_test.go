package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/claude/posecoach/internal/models"
)

// TestParseDefaultCatalog verifies the bundled catalog parses cleanly into the
// seven documented exercises, in file order.
func TestParseDefaultCatalog(t *testing.T) {
	res := ParseString(DefaultCatalog)
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %v, want none", res.Diagnostics)
	}

	want := []string{
		"SHOULDER_RAISE", "LEFT_ARM_RAISE", "RIGHT_ARM_RAISE", "SQUAT",
		"ARM_STRETCH", "STANDING_BALANCE", "NECK_ROTATION",
	}
	got := res.Registry.Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("names = %v, want %v", got, want)
	}

	rules, ok := res.Registry.Rules("LEFT_ARM_RAISE")
	if !ok {
		t.Fatal("LEFT_ARM_RAISE missing")
	}
	if len(rules) != 5 {
		t.Fatalf("LEFT_ARM_RAISE rules = %d, want 5", len(rules))
	}
	r := rules[1]
	if r.Joint1 != "left_hip" || r.Joint2 != "left_shoulder" || r.Joint3 != "left_elbow" {
		t.Errorf("joints = %v", r.Joints())
	}
	if r.MinAngle != 80 || r.MaxAngle != 100 {
		t.Errorf("range = (%v, %v), want (80, 100)", r.MinAngle, r.MaxAngle)
	}
	if r.Weight != 2.5 {
		t.Errorf("weight = %v, want 2.5", r.Weight)
	}
	if r.Description != "Left arm should be raised to shoulder height or above" {
		t.Errorf("description = %q", r.Description)
	}
}

// TestParseRuleWeightDefault verifies that a rule without a weight field gets 1.0.
func TestParseRuleWeightDefault(t *testing.T) {
	r, err := ParseRule("left_hip,left_knee,left_ankle|80,110|Knee bent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Weight != 1.0 {
		t.Errorf("weight = %v, want 1.0", r.Weight)
	}
}

// TestParseRuleWhitespace verifies that spaces around fields are tolerated.
func TestParseRuleWhitespace(t *testing.T) {
	r, err := ParseRule(" left_hip , left_knee ,left_ankle | 80 , 110 |  Knee bent  | 2 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.PostureRule{
		Joint1: "left_hip", Joint2: "left_knee", Joint3: "left_ankle",
		MinAngle: 80, MaxAngle: 110, Description: "Knee bent", Weight: 2,
	}
	if r != want {
		t.Errorf("rule = %+v, want %+v", r, want)
	}
}

// TestParseRuleMalformed verifies each documented failure shape is rejected
// with ErrMalformedRule.
func TestParseRuleMalformed(t *testing.T) {
	tests := map[string]string{
		"too few fields":    "a,b,c|1,2",
		"two joints":        "a,b|1,2|desc",
		"four joints":       "a,b,c,d|1,2|desc",
		"one angle":         "a,b,c|90|desc",
		"three angles":      "a,b,c|1,2,3|desc",
		"non numeric angle": "a,b,c|low,high|desc",
		"non numeric wt":    "a,b,c|1,2|desc|heavy",
		"empty weight":      "a,b,c|1,2|desc|",
		"min above max":     "a,b,c|120,90|desc",
		"repeated joint":    "a,a,c|1,2|desc",
		"empty joint":       "a,,c|1,2|desc",
		"negative weight":   "a,b,c|1,2|desc|-1",
		"nan angle":         "a,b,c|NaN,2|desc",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRule(in)
			if !errors.Is(err, ErrMalformedRule) {
				t.Errorf("ParseRule(%q) err = %v, want ErrMalformedRule", in, err)
			}
		})
	}
}

// TestParseSkipsMalformedLines verifies that a bad rule is reported and
// skipped while the rest of the file is still parsed.
func TestParseSkipsMalformedLines(t *testing.T) {
	text := `# header
SQUAT
RULE: left_hip,left_knee,left_ankle|80,110|Left knee|2.0
RULE: left_hip,left_knee|80,110|Broken
RULE: right_hip,right_knee,right_ankle|80,110|Right knee|2.0

NECK_ROTATION
RULE: left_ear,nose,right_ear|160,200|Head aligned
`
	res := ParseString(text)

	if len(res.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(res.Diagnostics))
	}
	d := res.Diagnostics[0]
	if d.Line != 4 {
		t.Errorf("diagnostic line = %d, want 4", d.Line)
	}
	if !errors.Is(d, ErrMalformedRule) {
		t.Errorf("diagnostic err = %v, want ErrMalformedRule", d.Err)
	}

	squat, _ := res.Registry.Rules("SQUAT")
	if len(squat) != 2 {
		t.Errorf("SQUAT rules = %d, want 2", len(squat))
	}
	neck, _ := res.Registry.Rules("NECK_ROTATION")
	if len(neck) != 1 {
		t.Errorf("NECK_ROTATION rules = %d, want 1", len(neck))
	}
}

// TestParseOrphanRule verifies that rules before any exercise header are ignored.
func TestParseOrphanRule(t *testing.T) {
	text := "RULE: a,b,c|1,2|desc\nSQUAT\nRULE: a,b,c|1,2|desc\n"
	res := ParseString(text)

	if res.Registry.Len() != 1 {
		t.Fatalf("exercises = %d, want 1", res.Registry.Len())
	}
	if len(res.Diagnostics) != 1 || !errors.Is(res.Diagnostics[0], ErrOrphanRule) {
		t.Errorf("diagnostics = %v, want one ErrOrphanRule", res.Diagnostics)
	}
	rules, _ := res.Registry.Rules("SQUAT")
	if len(rules) != 1 {
		t.Errorf("SQUAT rules = %d, want 1", len(rules))
	}
}

// TestParseReservedHeader verifies that a header which normalizes to a rule
// prefix is reported, and that its rules are not attached anywhere.
func TestParseReservedHeader(t *testing.T) {
	text := "SQUAT\nRULE: a,b,c|1,2|knee\nrule: warmup\nRULE: d,e,f|3,4|stray\n"
	res := ParseString(text)

	if got := strings.Join(res.Registry.Names(), ","); got != "SQUAT" {
		t.Fatalf("names = %s, want SQUAT", got)
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %v, want 2", res.Diagnostics)
	}
	if d := res.Diagnostics[0]; d.Line != 3 || !errors.Is(d, ErrInvalidExerciseName) {
		t.Errorf("diagnostic[0] = %v, want line 3 ErrInvalidExerciseName", d)
	}
	if d := res.Diagnostics[1]; d.Line != 4 || !errors.Is(d, ErrOrphanRule) {
		t.Errorf("diagnostic[1] = %v, want line 4 ErrOrphanRule", d)
	}
	rules, _ := res.Registry.Rules("SQUAT")
	if len(rules) != 1 {
		t.Errorf("SQUAT rules = %d, want 1", len(rules))
	}
}

// TestParseOversizedLine verifies that a line over the length limit is
// skipped without ending the parse.
func TestParseOversizedLine(t *testing.T) {
	huge := strings.Repeat("x", 2<<20)
	text := "SQUAT\n# " + huge + "\nRULE: a,b,c|1,2|" + huge + "\nLUNGE\nRULE: a,b,c|1,2|step\n"

	res, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got := strings.Join(res.Registry.Names(), ","); got != "SQUAT,LUNGE" {
		t.Errorf("names = %s, want SQUAT,LUNGE", got)
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(res.Diagnostics))
	}
	if d := res.Diagnostics[0]; d.Line != 3 || !errors.Is(d, ErrMalformedRule) {
		t.Errorf("diagnostic = %v, want line 3 ErrMalformedRule", d)
	}
	if rules, _ := res.Registry.Rules("LUNGE"); len(rules) != 1 {
		t.Errorf("LUNGE rules = %d, want 1", len(rules))
	}
}

// TestParseHeaderNormalization verifies that headers are upper-cased with
// spaces replaced, and that lookups normalize the same way.
func TestParseHeaderNormalization(t *testing.T) {
	res := ParseString("  Left Arm Raise  \nRULE: a,b,c|1,2|desc\n")
	if got := res.Registry.Names(); len(got) != 1 || got[0] != "LEFT_ARM_RAISE" {
		t.Fatalf("names = %v, want [LEFT_ARM_RAISE]", got)
	}
	for _, q := range []string{"LEFT_ARM_RAISE", "Left Arm Raise", "left arm raise", "left_arm_raise"} {
		if !res.Registry.Has(q) {
			t.Errorf("Has(%q) = false, want true", q)
		}
	}
}

// TestParseRedefinedExercise verifies that a repeated header starts over
// with an empty rule list but keeps its original position.
func TestParseRedefinedExercise(t *testing.T) {
	text := `SQUAT
RULE: a,b,c|1,2|first
LUNGE
RULE: a,b,c|1,2|lunge
SQUAT
RULE: d,e,f|3,4|second
`
	res := ParseString(text)
	if got := strings.Join(res.Registry.Names(), ","); got != "SQUAT,LUNGE" {
		t.Errorf("names = %s, want SQUAT,LUNGE", got)
	}
	rules, _ := res.Registry.Rules("SQUAT")
	if len(rules) != 1 || rules[0].Description != "second" {
		t.Errorf("SQUAT rules = %+v, want only the second definition", rules)
	}
}

// TestParseIgnoresCommentsAndLineEndings covers indented comments, CRLF line
// endings, and a leading byte-order mark.
func TestParseIgnoresCommentsAndLineEndings(t *testing.T) {
	text := "\ufeff   # indented comment\r\nSQUAT\r\n\r\n  RULE: a,b,c|1,2|desc|1.5\r\n"
	res := ParseString(text)
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %v", res.Diagnostics)
	}
	rules, ok := res.Registry.Rules("SQUAT")
	if !ok || len(rules) != 1 {
		t.Fatalf("SQUAT rules = %v, ok = %v", rules, ok)
	}
	if rules[0].Weight != 1.5 {
		t.Errorf("weight = %v, want 1.5", rules[0].Weight)
	}
}

// TestRoundTrip verifies parse(format(parse(x))) == parse(x) for the default
// catalog and for values that need more than integer precision.
func TestRoundTrip(t *testing.T) {
	inputs := map[string]string{
		"default": DefaultCatalog,
		"fractions": `Odd Exercise
RULE: a,b,c|12.345,170.5|Fractional bounds|0.25
RULE: d,e,f|0,180|No weight
EMPTY ONE
`,
		"reserved header": "rule: warmup\nRULE: a,b,c|10,20|desc|1\nSQUAT\nRULE: a,b,c|1,2|d\n",
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			first := ParseString(in)
			out := Format(first.Registry)
			second := ParseString(out)
			if len(second.Diagnostics) != 0 {
				t.Fatalf("re-parse diagnostics: %v\n%s", second.Diagnostics, out)
			}
			if !first.Registry.Equal(second.Registry) {
				t.Errorf("round trip changed registry:\n%s", out)
			}
		})
	}
}

// TestFormatLayout verifies header, ordering and blank-line separation.
func TestFormatLayout(t *testing.T) {
	reg := NewRegistry().
		With("squat", []models.PostureRule{{Joint1: "a", Joint2: "b", Joint3: "c", MinAngle: 80, MaxAngle: 110, Description: "Knee", Weight: 2}}).
		With("Neck Rotation", nil)

	want := `# Exercise Configuration File
# Format: EXERCISE_NAME
# RULE: joint1,joint2,joint3|min_angle,max_angle|description|weight

SQUAT
RULE: a,b,c|80,110|Knee|2

NECK_ROTATION
`
	if got := Format(reg); got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}
}

// TestDisplayName verifies the human-readable exercise name.
func TestDisplayName(t *testing.T) {
	if got := DisplayName("LEFT_ARM_RAISE"); got != "Left Arm Raise" {
		t.Errorf("DisplayName = %q, want %q", got, "Left Arm Raise")
	}
	if got := SpokenName("STANDING_BALANCE"); got != "standing balance" {
		t.Errorf("SpokenName = %q, want %q", got, "standing balance")
	}
}

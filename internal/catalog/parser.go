package catalog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/claude/posecoach/internal/models"
)

const (
	rulePrefix = "RULE:"

	// maxLineLength bounds a single catalog line. Longer lines are
	// truncated and reported.
	maxLineLength = 64 * 1024
)

var (
	// ErrMalformedRule marks a RULE line that could not be parsed.
	ErrMalformedRule = errors.New("malformed rule")
	// ErrOrphanRule marks a RULE line that appears before any exercise name.
	ErrOrphanRule = errors.New("rule outside an exercise")
)

// Diagnostic describes a skipped catalog line.
type Diagnostic struct {
	Line int
	Text string
	Err  error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("line %d: %v", d.Line, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

func (d Diagnostic) MarshalJSON() ([]byte, error) {
	msg := ""
	if d.Err != nil {
		msg = d.Err.Error()
	}
	return json.Marshal(struct {
		Line  int    `json:"line"`
		Text  string `json:"text"`
		Error string `json:"error"`
	}{d.Line, d.Text, msg})
}

// Result holds a parsed catalog and the lines that were skipped.
type Result struct {
	Registry    *Registry
	Diagnostics []Diagnostic
}

// Parse reads a catalog. Malformed rules, headers that would read back as a
// rule, and overlong lines are skipped and reported in the result; only read
// errors are returned.
//
// Grammar, one item per line:
//
//	# comment
//	EXERCISE NAME
//	RULE: joint1,joint2,joint3|min_angle,max_angle|description[|weight]
func Parse(r io.Reader) (*Result, error) {
	lines := &lineReader{r: bufio.NewReader(r)}

	res := &Result{Registry: NewRegistry()}
	current := ""
	lineNo := 0

	for {
		raw, long, err := lines.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("reading catalog: %w", err)
		}
		lineNo++
		if lineNo == 1 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		isRule := strings.HasPrefix(line, rulePrefix)

		if long {
			if !isRule {
				current = ""
			}
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Line: lineNo,
				Text: line,
				Err:  fmt.Errorf("%w: line longer than %d bytes", ErrMalformedRule, maxLineLength),
			})
			continue
		}

		if !isRule {
			if err := ValidateName(line); err != nil {
				current = ""
				res.Diagnostics = append(res.Diagnostics, Diagnostic{Line: lineNo, Text: line, Err: err})
				continue
			}
			current = NormalizeName(line)
			res.Registry.define(current)
			continue
		}

		if current == "" {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Line: lineNo, Text: line, Err: ErrOrphanRule})
			continue
		}

		rule, err := ParseRule(strings.TrimSpace(line[len(rulePrefix):]))
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Line: lineNo, Text: line, Err: err})
			continue
		}
		res.Registry.add(current, rule)
	}

	return res, nil
}

// ParseString parses catalog text held in memory.
func ParseString(s string) *Result {
	// strings.Reader never fails.
	res, _ := Parse(strings.NewReader(s))
	return res
}

// lineReader splits input into lines without failing on long ones.
type lineReader struct {
	r   *bufio.Reader
	buf []byte
}

// next returns the next line without its terminator. A line over
// maxLineLength is cut to that length and reported as long.
func (lr *lineReader) next() (string, bool, error) {
	lr.buf = lr.buf[:0]
	long := false
	for {
		chunk, isPrefix, err := lr.r.ReadLine()
		if err != nil {
			return "", false, err
		}
		if room := maxLineLength - len(lr.buf); len(chunk) > room {
			chunk = chunk[:room]
			long = true
		}
		lr.buf = append(lr.buf, chunk...)
		if !isPrefix {
			return string(lr.buf), long, nil
		}
	}
}

// ParseRule parses the body of a RULE line (without the prefix).
func ParseRule(s string) (models.PostureRule, error) {
	parts := strings.Split(s, "|")
	if len(parts) < 3 {
		return models.PostureRule{}, fmt.Errorf("%w: want joints|min,max|description[|weight], got %d fields", ErrMalformedRule, len(parts))
	}

	joints := strings.Split(parts[0], ",")
	if len(joints) != 3 {
		return models.PostureRule{}, fmt.Errorf("%w: want exactly 3 joints, got %q", ErrMalformedRule, parts[0])
	}

	angles := strings.Split(parts[1], ",")
	if len(angles) != 2 {
		return models.PostureRule{}, fmt.Errorf("%w: angle range must be min,max, got %q", ErrMalformedRule, parts[1])
	}
	minAngle, err := parseNumber(angles[0])
	if err != nil {
		return models.PostureRule{}, fmt.Errorf("%w: min angle: %v", ErrMalformedRule, err)
	}
	maxAngle, err := parseNumber(angles[1])
	if err != nil {
		return models.PostureRule{}, fmt.Errorf("%w: max angle: %v", ErrMalformedRule, err)
	}

	weight := models.DefaultRuleWeight
	if len(parts) > 3 {
		weight, err = parseNumber(parts[3])
		if err != nil {
			return models.PostureRule{}, fmt.Errorf("%w: weight: %v", ErrMalformedRule, err)
		}
	}

	rule := models.PostureRule{
		Joint1:      strings.TrimSpace(joints[0]),
		Joint2:      strings.TrimSpace(joints[1]),
		Joint3:      strings.TrimSpace(joints[2]),
		MinAngle:    minAngle,
		MaxAngle:    maxAngle,
		Description: strings.TrimSpace(parts[2]),
		Weight:      weight,
	}
	if err := rule.Validate(); err != nil {
		return models.PostureRule{}, fmt.Errorf("%w: %v", ErrMalformedRule, err)
	}
	return rule, nil
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

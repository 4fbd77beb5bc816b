package catalog

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/claude/posecoach/internal/models"
)

var headerLines = []string{
	"# Exercise Configuration File",
	"# Format: EXERCISE_NAME",
	"# RULE: joint1,joint2,joint3|min_angle,max_angle|description|weight",
}

// Write serializes the registry in catalog format. Exercises keep their
// definition order and rules keep their order within each exercise.
func Write(w io.Writer, reg *Registry) error {
	bw := bufio.NewWriter(w)
	for _, line := range headerLines {
		bw.WriteString(line)
		bw.WriteByte('\n')
	}
	for _, name := range reg.names {
		bw.WriteByte('\n')
		bw.WriteString(name)
		bw.WriteByte('\n')
		for _, rule := range reg.rules[name] {
			bw.WriteString(FormatRule(rule))
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

// Format returns the registry in catalog format.
func Format(reg *Registry) string {
	var sb strings.Builder
	_ = Write(&sb, reg)
	return sb.String()
}

// FormatRule renders one RULE line. The weight is always written.
func FormatRule(r models.PostureRule) string {
	var sb strings.Builder
	sb.WriteString(rulePrefix)
	sb.WriteByte(' ')
	sb.WriteString(r.Joint1)
	sb.WriteByte(',')
	sb.WriteString(r.Joint2)
	sb.WriteByte(',')
	sb.WriteString(r.Joint3)
	sb.WriteByte('|')
	sb.WriteString(formatNumber(r.MinAngle))
	sb.WriteByte(',')
	sb.WriteString(formatNumber(r.MaxAngle))
	sb.WriteByte('|')
	sb.WriteString(r.Description)
	sb.WriteByte('|')
	sb.WriteString(formatNumber(r.Weight))
	return sb.String()
}

// formatNumber uses the shortest representation that parses back to f.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

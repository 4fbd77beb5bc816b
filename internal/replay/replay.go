// Package replay feeds recorded landmark captures into a posecoach server
// session and summarizes the verdicts.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/posecoach/internal/models"
)

// CaptureExt is the extension of capture files picked up from a directory.
const CaptureExt = ".jsonl"

// ErrEmptyCapture is returned for a capture file with no frames.
var ErrEmptyCapture = errors.New("capture has no frames")

// Frame is one line of a capture file. Landmarks may be given by name,
// in provider index order, or both.
type Frame struct {
	Landmarks    map[string]models.RawLandmark `json:"landmarks,omitempty"`
	LandmarkList []models.RawLandmark          `json:"landmark_list,omitempty"`
}

// Stats tracks replay progress.
type Stats struct {
	FilesTotal    int
	FilesReplayed int
	FilesSkipped  int
	FilesErrored  int

	FramesSent     int
	FramesCorrect  int
	FramesRejected int
	SpokenCues     int
	ScoreSum       float64
}

// AverageScore is the mean overall score across all frames sent.
func (s *Stats) AverageScore() float64 {
	if s.FramesSent == 0 {
		return 0
	}
	return s.ScoreSum / float64(s.FramesSent)
}

// Replayer walks capture files and streams each one through its own session.
type Replayer struct {
	client   *Client
	state    *StateDB
	root     string
	exercise string
	dryRun   bool
	force    bool
	log      *slog.Logger
	stats    Stats
}

// Options configures a Replayer.
type Options struct {
	Exercise string
	// DryRun parses captures without contacting the server or the state DB.
	DryRun bool
	// Force replays files even if the state DB has seen them.
	Force bool
}

// New creates a Replayer over root, which may be a capture file or a
// directory of them. client and state may be nil in dry-run mode.
func New(client *Client, state *StateDB, root string, opts Options, log *slog.Logger) *Replayer {
	return &Replayer{
		client:   client,
		state:    state,
		root:     root,
		exercise: opts.Exercise,
		dryRun:   opts.DryRun,
		force:    opts.Force,
		log:      log,
	}
}

// Run replays every capture under root in lexical order.
func (r *Replayer) Run(ctx context.Context) (*Stats, error) {
	files, err := r.captures()
	if err != nil {
		return &r.stats, err
	}
	base := r.root
	if len(files) == 1 && files[0] == r.root {
		base = filepath.Dir(r.root)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &r.stats, err
		}
		r.stats.FilesTotal++
		relPath, _ := filepath.Rel(base, f)

		if err := r.replayFile(ctx, f, relPath); err != nil {
			if ctx.Err() != nil {
				return &r.stats, ctx.Err()
			}
			r.log.Warn("replay failed", "file", relPath, "error", err)
			r.stats.FilesErrored++
		}
	}
	return &r.stats, nil
}

func (r *Replayer) captures() ([]string, error) {
	info, err := os.Stat(r.root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.root, err)
	}
	if !info.IsDir() {
		return []string{r.root}, nil
	}

	var files []string
	err = filepath.WalkDir(r.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), CaptureExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", r.root, err)
	}
	sort.Strings(files)
	return files, nil
}

func (r *Replayer) replayFile(ctx context.Context, path, relPath string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}

	frames, err := readCapture(path)
	if err != nil {
		return err
	}

	if r.dryRun {
		r.log.Info("capture parsed", "file", relPath, "frames", len(frames))
		r.stats.FilesReplayed++
		return nil
	}

	if !r.force {
		done, err := r.state.IsReplayed(relPath, r.exercise, info.Size(), hash)
		if err != nil {
			return fmt.Errorf("state check: %w", err)
		}
		if done {
			r.stats.FilesSkipped++
			return nil
		}
	}

	id, exercise, err := r.client.OpenSession(ctx, r.exercise)
	if err != nil {
		return err
	}
	defer func() {
		if err := r.client.CloseSession(context.WithoutCancel(ctx), id); err != nil {
			r.log.Warn("session not closed", "session", id, "error", err)
		}
	}()

	var sum float64
	sent := 0
	for i, frame := range frames {
		res, err := r.client.SendFrame(ctx, id, frame)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.log.Warn("frame rejected", "file", relPath, "frame", i+1, "error", err)
			r.stats.FramesRejected++
			continue
		}
		sent++
		sum += res.OverallScore
		r.stats.FramesSent++
		r.stats.ScoreSum += res.OverallScore
		if res.IsCorrect {
			r.stats.FramesCorrect++
		}
		if res.SpokenFeedback != nil {
			r.stats.SpokenCues++
			r.log.Debug("spoken feedback", "file", relPath, "frame", i+1, "text", *res.SpokenFeedback)
		}
	}
	if sent == 0 {
		return fmt.Errorf("no frame of %d accepted", len(frames))
	}

	avg := sum / float64(sent)
	if err := r.state.MarkReplayed(relPath, r.exercise, info.Size(), hash, sent, avg); err != nil {
		return fmt.Errorf("recording state: %w", err)
	}
	r.stats.FilesReplayed++
	r.log.Info("capture replayed", "file", relPath, "exercise", exercise, "frames", sent, "average_score", avg)
	return nil
}

func readCapture(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFrames(f)
}

// ReadFrames decodes a capture: one JSON frame per line, blank lines ignored.
func ReadFrames(rd io.Reader) ([]Frame, error) {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var frames []Frame
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var fr Frame
		if err := json.Unmarshal([]byte(line), &fr); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		frames = append(frames, fr)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading capture: %w", err)
	}
	if len(frames) == 0 {
		return nil, ErrEmptyCapture
	}
	return frames, nil
}

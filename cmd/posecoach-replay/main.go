package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/claude/posecoach/internal/replay"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "posecoach server URL (e.g. https://posecoach.tail1234.ts.net)")
	path := flag.String("path", "", "capture file or directory of .jsonl captures")
	exercise := flag.String("exercise", "", "exercise to score against (server default when empty)")
	dryRun := flag.Bool("dry-run", false, "parse captures but don't send to server")
	force := flag.Bool("force", false, "replay captures even if already replayed")
	stateDir := flag.String("state-dir", "", "state database directory (default ~/.posecoach-replay)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("posecoach-replay", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *path == "" {
		fmt.Fprintf(os.Stderr, "Usage: posecoach-replay -server <URL> -path <capture file or dir> [-exercise NAME] [-dry-run] [-force]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}

	// Create client and state DB (nil in dry-run mode)
	var client *replay.Client
	var state *replay.StateDB
	if !*dryRun {
		dir := *stateDir
		if dir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				log.Error("failed to get home directory", "error", err)
				os.Exit(1)
			}
			dir = filepath.Join(homeDir, ".posecoach-replay")
		}

		var err error
		state, err = replay.OpenStateDB(dir)
		if err != nil {
			log.Error("failed to open state database", "error", err)
			os.Exit(1)
		}
		defer state.Close()

		client = replay.NewClient(*serverURL)
	} else {
		log.Info("DRY RUN mode: captures will be parsed but not sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := replay.New(client, state, *path, replay.Options{Exercise: *exercise, DryRun: *dryRun, Force: *force}, log)
	stats, err := r.Run(ctx)
	if err != nil {
		log.Error("replay failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("replay complete")
}

func printStats(stats *replay.Stats) {
	fmt.Println()
	fmt.Println("=== Replay Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files replayed:   %d\n", stats.FilesReplayed)
	fmt.Printf("  Files skipped:    %d (already replayed)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Frames sent:      %d\n", stats.FramesSent)
	fmt.Printf("  Frames rejected:  %d\n", stats.FramesRejected)
	fmt.Printf("  Frames correct:   %d\n", stats.FramesCorrect)
	fmt.Printf("  Spoken cues:      %d\n", stats.SpokenCues)
	fmt.Printf("  Average score:    %.3f\n", stats.AverageScore())
	fmt.Println()
}

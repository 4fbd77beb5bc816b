package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/claude/posecoach/internal/catalog"
	posemcp "github.com/claude/posecoach/internal/mcp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("url", "", "posecoach server URL for remote mode (e.g. https://posecoach.tail1234.ts.net)")
	catalogPath := flag.String("catalog", "", "exercise catalog for local mode (default $POSECOACH_CATALOG or exercises.txt)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("posecoach-mcp", Version)
		return
	}

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds posemcp.DataSource
	if *serverURL != "" {
		ds = posemcp.NewHTTPClient(*serverURL)
		log.Info("remote mode", "url", *serverURL)
	} else {
		path := *catalogPath
		if path == "" {
			path = os.Getenv("POSECOACH_CATALOG")
		}
		if path == "" {
			path = "exercises.txt"
		}
		store, err := catalog.Open(path, log)
		if err != nil {
			log.Error("failed to load exercise catalog", "path", path, "error", err)
			os.Exit(1)
		}
		ds = posemcp.NewLocal(store)
		log.Info("local mode", "catalog", path, "exercises", store.Registry().Len())
	}

	s := posemcp.New(ds, Version, log)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

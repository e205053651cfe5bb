/*
Package main implements the zhuyin input engine server and CLI [DBG] application.

ZhuyinServe turns Zhuyin (Bopomofo) key events into ranked Traditional
Chinese candidates. It runs as a MessagePack IPC server over
stdin/stdout for integration with remote-control UIs, or as an
interactive CLI for testing and debugging.

The static phrase dictionary is a read-only SQLite artifact loaded
fully at startup; per-user selection history lives in a separate
writable SQLite store so the dictionary can sit on read-only media.

# Usage

Start the server with default settings:

	zhuyinserve

Use a custom dictionary artifact and enable debug logging:

	zhuyinserve -dict /path/to/phrases.db -d

Run in CLI mode for interactive testing:

	zhuyinserve -c

# Configuration

Runtime configuration is a TOML file, auto-created with defaults:

	[engine]
	candidate_count = 9
	learning_enabled = true
	auto_submit = false
	full_width_punctuation = true
	fuzzy_tone = false

	[rank]
	fuzzy_tone_penalty = 50.0
	select_weight = 100.0
	recency_weight = 50.0

# IPC Protocol

The server speaks binary msgpack over stdin/stdout. A session is
started per keyboard invocation, fed key events, and finalized into the
result registry under the caller's id. See pkg/server for the message
catalogue.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/HiDomesticCat/zhuyinserve/internal/cli"
	"github.com/HiDomesticCat/zhuyinserve/internal/logger"
	"github.com/HiDomesticCat/zhuyinserve/pkg/config"
	"github.com/HiDomesticCat/zhuyinserve/pkg/dictionary"
	"github.com/HiDomesticCat/zhuyinserve/pkg/engine"
	"github.com/HiDomesticCat/zhuyinserve/pkg/learning"
	"github.com/HiDomesticCat/zhuyinserve/pkg/server"
)

const (
	Version = "0.3.0-beta"
	AppName = "zhuyinserve"
	gh      = "https://github.com/HiDomesticCat/zhuyinserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires the stores, config and chosen front end together. It does
// not implement engine logic and only manages the flow.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	dictPath := flag.String("dict", "", "Path to the dictionary artifact (overrides config)")
	learnDir := flag.String("learn", "", "Writable directory for the learning store (overrides config)")
	configPath := flag.String("config", "", "Path to config.toml")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	noLearn := flag.Bool("no-learn", false, "Disable selection learning for this run")

	flag.Parse()

	if *showVersion {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
			Prefix:          "",
		})

		styles := log.DefaultStyles()
		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		logger.SetStyles(styles)

		logger.Print("")
		logger.Print("[ ZhuyinServe ] Bopomofo in, ranked candidates out!")
		logger.Print("", "version", Version)
		logger.Print("")
		logger.Print("use -h or --help to see available options")
		logger.Print("Github Repo", "gh", gh)

		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	cfg, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", activePath)

	if *dictPath != "" {
		cfg.Dict.Path = *dictPath
	}
	if *learnDir != "" {
		cfg.Learning.Dir = *learnDir
	}
	if *noLearn {
		cfg.Engine.LearningEnabled = false
	}

	// Dictionary load failure is fatal: no candidates can ever be
	// produced without it.
	dict, err := dictionary.Load(cfg.Dict.Path)
	if err != nil {
		log.Fatalf("Failed to load dictionary: %v", err)
	}
	log.Debugf("Dictionary ready: %d entries", dict.Len())

	learnDirPath := cfg.Learning.Dir
	if learnDirPath == "" {
		learnDirPath = config.DefaultLearningDir()
	}
	learn, err := learning.Open(learnDirPath, learning.Params{
		SelectWeight:  cfg.Rank.SelectWeight,
		RecencyWeight: cfg.Rank.RecencyWeight,
	})
	if err != nil {
		// Non-fatal: session works without cross-session memory.
		log.Warnf("%v", err)
	}
	defer learn.Close()

	if *cliMode {
		log.SetReportTimestamp(false)
		sess := engine.NewSession(dict, learn, engine.OptionsFromConfig(cfg), logger.New("engine"))
		inputHandler := cli.NewInputHandler(sess)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(dict, learn, cfg)
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

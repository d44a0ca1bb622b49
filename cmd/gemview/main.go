// Package main is the entry point for the gemview browser.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dshills/gemview/internal/app"
	"github.com/dshills/gemview/internal/input/keys"
	"github.com/dshills/gemview/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, dir := parseFlags()

	// Log to a file; the terminal belongs to the UI
	logFile, err := app.OpenLogFile(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logFile.Close()
	cfg := app.DefaultLoggerConfig()
	cfg.Output = logFile
	opts.Logger = app.NewLogger(cfg)
	app.SetLogger(opts.Logger)

	// Create application
	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Ensure cleanup on all exit paths
	defer application.Shutdown()

	// Create terminal backend
	term, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := application.SetBackend(term); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set backend: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		application.Shutdown()
	}()

	// Run the application
	if err := application.Run(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

// configDir returns the directory holding the preferences, the key
// bindings, the session and the log.
func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gemview")
	}
	return ".gemview"
}

func parseFlags() (app.Options, string) {
	var opts app.Options
	var showVersion bool
	var showHelp bool
	var noSession bool
	dir := configDir()

	flag.StringVar(&opts.ConfigPath, "config", filepath.Join(dir, "prefs.toml"), "Path to preferences file")
	flag.StringVar(&opts.ConfigPath, "c", filepath.Join(dir, "prefs.toml"), "Path to preferences file (shorthand)")
	flag.StringVar(&opts.BindingsPath, "bindings", filepath.Join(dir, keys.FileName), "Path to key bindings file")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error); default from preferences")
	flag.BoolVar(&noSession, "no-session", false, "Do not restore or save open tabs")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gemview - terminal browser for Gemini\n\n")
		fmt.Fprintf(os.Stderr, "Usage: gemview [options] [urls...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gemview                          Restore the last session\n")
		fmt.Fprintf(os.Stderr, "  gemview geminiprotocol.net       Open a capsule\n")
		fmt.Fprintf(os.Stderr, "  gemview -log-level debug a.org   Open with debug logging\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("gemview %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" {
		if _, err := app.ParseLogLevel(opts.LogLevel); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if !noSession {
		opts.SessionPath = filepath.Join(dir, "session")
	}

	// Remaining arguments are URLs to open
	opts.URLs = flag.Args()
	opts.Watch = true

	return opts, dir
}

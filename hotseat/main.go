// Command hotseat runs a local grab-the-map game for two to four players
// sharing one keyboard.
package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"
)

func main() {
	var screen tcell.Screen
	defer func() {
		if r := recover(); r != nil {
			if screen != nil {
				screen.Fini()
			}
			crash("HOTSEAT CRASHED", r)
		}
	}()

	opts, err := ParseOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logFile, logger, err := setupLogging(opts.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	sound := NewSoundManager()
	if opts.Sound {
		if err := sound.Initialize(); err != nil {
			logger.Warn("audio disabled", "err", err)
		}
	}
	defer sound.Cleanup()

	screen, err = tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "screen init: %v\n", err)
		os.Exit(1)
	}
	screen.HideCursor()

	NewApp(opts, sound, logger).Run(screen)
	screen.Fini()
}

// crash prints the panic and its stack after the terminal is restored.
func crash(what string, r any) {
	fmt.Fprintf(os.Stderr, "\n\x1b[31m%s: %v\x1b[0m\n", what, r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
	os.Exit(1)
}

// setupLogging sends logs to path, or discards them when path is empty.
func setupLogging(path string) (*os.File, *slog.Logger, error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return nil, slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	log.SetOutput(f)
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
	return f, logger, nil
}

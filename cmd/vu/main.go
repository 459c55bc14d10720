package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/imgvu/vu/app"
)

func main() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()})
	slog.SetDefault(slog.New(handler))

	if len(os.Args) != 2 {
		_, _ = fmt.Fprintf(os.Stderr, "usage: %s IMAGE\n", os.Args[0])
		os.Exit(2)
	}

	if err := app.Run(os.Args[1]); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	switch strings.ToUpper(os.Getenv("VU_LOG_LEVEL")) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

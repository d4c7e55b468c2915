// Command faceedit is a terminal editor for watch-face configuration
// documents.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"facestudio/config"
	"facestudio/internal/logx"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default ~/"+config.DefaultFileName+")")
	logPath := flag.String("log", "", "write debug logs to this file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: faceedit [-config file] [-log file] design.json\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		logx.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	m, err := newModel(ctx, cfg, flag.Arg(0))
	cancel()
	if err != nil {
		log.Fatal(err)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	m.sched.bind(p)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

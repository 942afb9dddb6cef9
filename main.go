package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/pdxmph/addressbook/internal/api"
	"github.com/pdxmph/addressbook/internal/app"
	"github.com/pdxmph/addressbook/internal/config"
	"github.com/pdxmph/addressbook/internal/logger"
	"github.com/pdxmph/addressbook/internal/session"
	"github.com/pdxmph/addressbook/internal/tui"
)

func main() {
	var (
		configPath = flag.String("config", config.Path(), "Path to the config file")
		baseURL    = flag.String("api", "", "Backend base URL (overrides config)")
		check      = flag.Bool("check", false, "Check that the backend is reachable and exit")
	)
	flag.Parse()

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}

	// The terminal belongs to the UI, so logs go to a file
	log, err := logger.New(cfg.Log.Env, cfg.Log.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	storage := session.OpenStorage(cfg.Session.Backend, cfg.Session.Path, log)
	defer storage.Close()
	store := session.NewStore(storage, log)

	client := api.New(cfg.API.BaseURL, cfg.API.Timeout.Duration, store, log)

	if *check {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Health(ctx); err != nil {
			fmt.Printf("Backend at %s is not reachable: %v\n", client.BaseURL(), err)
			os.Exit(1)
		}
		fmt.Printf("Backend at %s is up\n", client.BaseURL())
		return
	}

	log.Info("starting addressbook",
		zap.String("api", client.BaseURL()),
		zap.String("session", storage.Name()),
	)

	model := tui.New(app.New(client, store, log), log)

	// Start the program
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"daygoal/internal/config"
	"daygoal/internal/gateway"
	"daygoal/internal/lifecycle"
	"daygoal/internal/model"
	"daygoal/internal/storage"
	"daygoal/internal/syncqueue"
	"daygoal/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "daygoal failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.MigrateUp(); err != nil {
		return err
	}

	tasks, err := storage.NewStore(db, "tasks", []model.Task{})
	if err != nil {
		return err
	}
	settings, err := storage.NewStore(db, "user-setting", []model.UserSetting{})
	if err != nil {
		return err
	}

	remote := gateway.NewClient(cfg.BaseURL, &http.Client{Timeout: 15 * time.Second})
	if cfg.Token != "" {
		remote.SetToken(cfg.Token)
	}

	queue := syncqueue.New(16)
	queue.Start()
	defer queue.Stop()

	manager, err := lifecycle.NewManager(lifecycle.Deps{
		Tasks:    tasks,
		Settings: settings,
		Remote:   remote,
		Queue:    queue,
		OnSession: func(userID, token string) {
			cfg.UserID = userID
			cfg.Token = token
			_ = config.Save(cfg)
		},
	})
	if err != nil {
		return err
	}
	manager.Resume(cfg.UserID, cfg.Token)

	program := tea.NewProgram(update.NewModel(manager))
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

package app

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/OmniMind/internal/config"
	"github.com/Rorical/OmniMind/internal/core"
	"github.com/Rorical/OmniMind/internal/dispatcher"
	"github.com/Rorical/OmniMind/internal/eventbus"
	"github.com/Rorical/OmniMind/internal/models"
)

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.DashboardService
	stack      *Stack
	logFile    *os.File
	model      *AppModel
}

// AppModel adapts models.AppModel to tea.Model.
type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher
}

func NewApplication(cfg *config.Config) (*Application, error) {
	logger, logFile, err := OpenLogFile()
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	profile := cfg.Current()
	logger.Info("starting dashboard", "profile", cfg.ActiveProfile, "chain_id", profile.ChainID, "core_url", profile.CoreURL)

	stack := NewStack(context.Background(), profile, logger)

	eb := eventbus.NewEventBus()
	eb.SetErrorCallback(func(e eventbus.EventBusError) {
		logger.Warn("event bus", "operation", e.Operation, "err", e.Err)
	})

	disp := dispatcher.NewEventDispatcher(eb)
	service := core.NewDashboardService(stack.Controller, eb, logger)
	stack.SetApprover(service)

	return &Application{
		config:     cfg,
		eventBus:   eb,
		dispatcher: disp,
		service:    service,
		stack:      stack,
		logFile:    logFile,
		model: &AppModel{
			appModel:   models.NewAppModel(cfg.ActiveProfile),
			dispatcher: disp,
		},
	}, nil
}

func (app *Application) Start() error {
	profile := app.config.Current()
	app.service.Start(core.Banner{
		Profile:    app.config.ActiveProfile,
		Configured: app.config.IsValid(),
		CoreURL:    profile.CoreURL,
	})

	p := tea.NewProgram(app.model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (app *Application) Stop() {
	app.service.Stop()
	app.stack.Close()
	app.eventBus.Close()
	app.logFile.Close()
}

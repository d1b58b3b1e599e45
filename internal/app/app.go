// Package app wires configuration, storage, services and handlers together.
package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/handlers"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/services/ai"
	"github.com/ternarybob/colligo/internal/services/extraction"
	"github.com/ternarybob/colligo/internal/services/monitor"
	"github.com/ternarybob/colligo/internal/services/orchestrator"
	"github.com/ternarybob/colligo/internal/services/summary"
	"github.com/ternarybob/colligo/internal/storage"
)

// App holds the initialized application graph
type App struct {
	Config  *common.Config
	Logger  arbor.ILogger
	Storage interfaces.StorageManager
	Monitor *monitor.Monitor

	APIHandler     *handlers.APIHandler
	ScraperHandler *handlers.ScraperHandler
	HistoryHandler *handlers.HistoryHandler
	SummaryHandler *handlers.SummaryHandler
}

// New builds the application from configuration
func New(logger arbor.ILogger, config *common.Config) (*App, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	extractor, err := extraction.NewService(logger, &config.Apify)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize extractor: %w", err)
	}

	summarizer, err := ai.NewSummarizer(logger, &config.AI)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize summarizer: %w", err)
	}

	orchestratorService := orchestrator.NewService(logger, storageManager, extractor, config.Source.Domain)
	summaryService := summary.NewService(logger, storageManager, summarizer)

	var staleMonitor *monitor.Monitor
	if config.Monitor.Enabled {
		staleMonitor, err = monitor.New(logger, storageManager, &config.Monitor)
		if err != nil {
			storageManager.Close()
			return nil, fmt.Errorf("failed to initialize monitor: %w", err)
		}
	}

	return &App{
		Config:         config,
		Logger:         logger,
		Storage:        storageManager,
		Monitor:        staleMonitor,
		APIHandler:     handlers.NewAPIHandler(),
		ScraperHandler: handlers.NewScraperHandler(orchestratorService, logger),
		HistoryHandler: handlers.NewHistoryHandler(orchestratorService, logger),
		SummaryHandler: handlers.NewSummaryHandler(summaryService, logger),
	}, nil
}

// Start launches background services
func (a *App) Start() error {
	if a.Monitor != nil {
		if err := a.Monitor.Start(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases application resources
func (a *App) Close() error {
	if a.Monitor != nil {
		a.Monitor.Stop()
	}
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/altafino/report-courier/internal/api"
	"github.com/altafino/report-courier/internal/config"
	"github.com/altafino/report-courier/internal/content"
	"github.com/altafino/report-courier/internal/dispatch"
	"github.com/altafino/report-courier/internal/engine"
	applogger "github.com/altafino/report-courier/internal/logger"
	"github.com/altafino/report-courier/internal/match"
	"github.com/altafino/report-courier/internal/models"
	"github.com/altafino/report-courier/internal/registry"
	"github.com/altafino/report-courier/internal/scan"
	"github.com/altafino/report-courier/internal/sendlog"
	"github.com/altafino/report-courier/internal/types"
)

// App represents the main application
type App struct {
	logger    *slog.Logger
	cfg       *types.Config
	configDir string
	configID  string

	engine    *engine.Engine
	scanner   *scan.Scanner
	scheduler *scan.Scheduler
	sendLog   sendlog.Storage
	server    *http.Server
	watcher   *config.ConfigWatcher
	wg        sync.WaitGroup
}

// New creates a new application instance
func New(logger *slog.Logger, configDir string, configID string) (*App, error) {
	a := &App{
		logger:    logger,
		configDir: configDir,
		configID:  configID,
	}

	// Load initial configurations
	if err := config.LoadConfigs(configDir); err != nil {
		return nil, fmt.Errorf("failed to load configs: %w", err)
	}

	cfg, err := a.resolveConfig()
	if err != nil {
		return nil, err
	}
	a.cfg = cfg

	// Rebuild the logger from the selected configuration
	a.logger = applogger.Setup(cfg)
	logger = a.logger
	config.InitLogger(logger)

	// Durable collaborators
	sendLog, err := sendlog.NewStorage(cfg.Storage.SendLog.Type, cfg.Storage.SendLog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create send log storage: %w", err)
	}
	if err := sendLog.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize send log: %w", err)
	}
	a.sendLog = sendLog

	store := registry.NewStore(cfg.Storage.RegistryPath, logger)

	// Core
	rules := match.NewRules(cfg)
	a.scanner = scan.NewScanner(cfg.Folders, logger)
	generator := content.NewGenerator(cfg, logger)
	a.engine = engine.New(rules, a.scanner, generator, store, logger)
	a.scheduler = scan.NewScheduler(a.engine, logger)

	// A registry that has never been written yet takes its scan
	// configuration from the deployment defaults.
	if _, err := os.Stat(cfg.Storage.RegistryPath); os.IsNotExist(err) {
		seed := models.ScanConfig{
			Mode:            models.ScanMode(cfg.Scanning.Mode),
			IntervalMinutes: cfg.Scanning.IntervalMinutes,
		}
		if seed.Mode == "" {
			seed.Mode = models.ScanDisabled
		}
		if err := a.engine.SetScanConfig(seed); err != nil {
			return nil, fmt.Errorf("failed to seed scan config: %w", err)
		}
	}

	// Dispatch and API
	dispatcher := dispatch.NewDispatcher(sendLog, cfg.Content.Sender, cfg.Storage.DraftsPath, logger)
	handlers := api.NewHandlers(a.engine, dispatcher, sendLog, logger)
	router := api.SetupRoutes(handlers, cfg)

	if cfg.Server.Port > 0 {
		a.server = &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		}
	}

	return a, nil
}

func (a *App) resolveConfig() (*types.Config, error) {
	if a.configID != "" {
		cfg, err := config.GetConfig(a.configID)
		if err != nil {
			return nil, fmt.Errorf("failed to get config %s: %w", a.configID, err)
		}
		return cfg, nil
	}

	enabled := config.GetEnabledConfigs()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no enabled configuration found in %s", a.configDir)
	}
	return enabled[0], nil
}

// Start starts all application services
func (a *App) Start() error {
	// Start configuration watcher
	watcher, err := config.StartWatcher(a.configDir, a.logger)
	if err != nil {
		return fmt.Errorf("failed to start config watcher: %w", err)
	}
	a.watcher = watcher

	// Start scheduler heartbeat
	if err := a.scheduler.UpdateJob(a.cfg); err != nil {
		return fmt.Errorf("failed to schedule heartbeat: %w", err)
	}
	a.scheduler.Start()

	// Start API server
	if a.server != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.logger.Info("api server listening", "addr", a.server.Addr)
			if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.logger.Error("api server failed", "error", err)
			}
		}()
	}

	// Initial scan so the state reflects the folders at startup
	a.engine.TryScan()

	// Watch for configuration changes
	a.wg.Add(1)
	go a.watchConfigs()

	return nil
}

// Stop gracefully stops all application services
func (a *App) Stop() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("failed to shut down api server", "error", err)
		}
	}
	if a.sendLog != nil {
		a.sendLog.Close()
	}
	a.wg.Wait()
}

func (a *App) watchConfigs() {
	defer a.wg.Done()

	for range a.watcher.ReloadChan() {
		a.logger.Info("reloading services due to configuration change")

		cfg, err := a.resolveConfig()
		if err != nil {
			a.logger.Error("failed to get updated config", "error", err)
			continue
		}
		a.cfg = cfg

		a.scanner.SetFolders(cfg.Folders)
		if err := a.scheduler.UpdateJob(cfg); err != nil {
			a.logger.Error("failed to update scheduler",
				"config_id", cfg.Meta.ID,
				"error", err,
			)
		}

		a.logger.Info("services updated for configuration",
			"id", cfg.Meta.ID,
			"name", cfg.Meta.Name,
		)
	}
}

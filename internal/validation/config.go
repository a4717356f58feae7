package validation

import (
	"fmt"
	"time"

	"github.com/altafino/report-courier/internal/types"
)

// ValidateConfig performs validation on a single configuration
func ValidateConfig(cfg *types.Config) error {
	if err := validateMeta(cfg); err != nil {
		return fmt.Errorf("meta validation failed: %w", err)
	}

	if err := validateServer(cfg); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}

	if err := validateScanning(cfg); err != nil {
		return fmt.Errorf("scanning validation failed: %w", err)
	}

	if err := validateContent(cfg); err != nil {
		return fmt.Errorf("content validation failed: %w", err)
	}

	if err := validateStorage(cfg); err != nil {
		return fmt.Errorf("storage validation failed: %w", err)
	}

	if err := validateLogging(cfg); err != nil {
		return fmt.Errorf("logging validation failed: %w", err)
	}

	return nil
}

func validateMeta(cfg *types.Config) error {
	if cfg.Meta.ID == "" {
		return fmt.Errorf("meta.id is required")
	}

	if !isValidID(cfg.Meta.ID) {
		return fmt.Errorf("meta.id contains invalid characters (use only alphanumeric, dash, underscore)")
	}

	if cfg.Meta.Name == "" {
		return fmt.Errorf("meta.name is required")
	}

	return nil
}

func validateServer(cfg *types.Config) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}

	return nil
}

func validateScanning(cfg *types.Config) error {
	switch cfg.Scanning.Mode {
	case "", "disabled":
	case "interval":
		if cfg.Scanning.IntervalMinutes <= 0 {
			return fmt.Errorf("scanning.interval_minutes must be positive in interval mode")
		}
	case "fixed":
		for _, clock := range cfg.Scanning.FixedTimes {
			if _, err := time.Parse("15:04", clock); err != nil {
				return fmt.Errorf("scanning.fixed_times entry %q is not a valid HH:MM time", clock)
			}
		}
	default:
		return fmt.Errorf("scanning.mode must be one of disabled, interval, fixed")
	}

	if cfg.Scanning.TickSeconds < 0 {
		return fmt.Errorf("scanning.tick_seconds must not be negative")
	}
	if cfg.Scanning.WindowMinutes < 0 {
		return fmt.Errorf("scanning.window_minutes must not be negative")
	}

	return nil
}

func validateContent(cfg *types.Config) error {
	switch cfg.Content.Generator {
	case "", "template":
	case "openai":
		if cfg.Content.OpenAI.TimeoutSeconds < 0 {
			return fmt.Errorf("content.openai.timeout_seconds must not be negative")
		}
	default:
		return fmt.Errorf("content.generator must be one of template, openai")
	}

	return nil
}

func validateStorage(cfg *types.Config) error {
	if cfg.Storage.RegistryPath == "" {
		return fmt.Errorf("storage.registry_path is required")
	}

	switch cfg.Storage.SendLog.Type {
	case "", "file", "sqlite":
	default:
		return fmt.Errorf("storage.send_log.type must be one of file, sqlite")
	}
	if cfg.Storage.SendLog.Path == "" {
		return fmt.Errorf("storage.send_log.path is required")
	}

	return nil
}

func validateLogging(cfg *types.Config) error {
	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}

	switch cfg.Logging.Format {
	case "", "text", "json", "dev":
	default:
		return fmt.Errorf("logging.format must be one of text, json, dev")
	}

	return nil
}

func isValidID(id string) bool {
	for _, r := range id {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			continue
		}
		return false
	}
	return id != ""
}

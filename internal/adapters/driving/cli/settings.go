package cli

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change enrichment, citation, storage, alert and metrics settings.

Environment variables override values saved in the config file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a setting and save it to the config file.

Available keys:
  enrich.batch_size          records per batch
  enrich.heartbeat_interval  seconds or a duration such as 30s
  enrich.stall_timeout       seconds or a duration such as 5m
  enrich.max_restarts        automatic restarts before halting
  enrich.restart_backoff     seconds or a duration such as 10s
  citation.max_citations     citations returned per query
  storage.driver             sqlite, postgres or memory
  storage.database_url       PostgreSQL connection string
  storage.redis_url          Redis URL for the shared seen-hash cache
  alert.webhook_url          webhook receiving stall and halt alerts
  metrics.addr               listen address for /metrics`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// Enrichment settings
	cmd.Println("[Enrichment]")
	cmd.Printf("  Batch size: %d\n", settings.Enrichment.BatchSize)
	cmd.Printf("  Heartbeat interval: %s\n", settings.Enrichment.HeartbeatInterval)
	cmd.Printf("  Stall timeout: %s\n", settings.Enrichment.StallTimeout)
	cmd.Printf("  Max restarts: %d\n", settings.Enrichment.MaxRestarts)
	cmd.Printf("  Restart backoff: %s\n", settings.Enrichment.RestartBackoff)
	cmd.Println()

	// Citation settings
	cmd.Println("[Citation]")
	cmd.Printf("  Max citations: %d\n", settings.Citation.MaxCitations)
	cmd.Println()

	// Storage settings
	cmd.Println("[Storage]")
	cmd.Printf("  Driver: %s\n", settings.Storage.Driver.Description())
	if settings.Storage.Driver.RequiresURL() {
		cmd.Printf("  Database URL: %s\n", orNotSet(maskURL(settings.Storage.DatabaseURL)))
	}
	cmd.Printf("  Redis URL: %s\n", orNotSet(maskURL(settings.Storage.RedisURL)))
	cmd.Println()

	// Alert settings
	cmd.Println("[Alerts]")
	if settings.Alert.WebhookURL != "" {
		cmd.Printf("  Webhook: %s\n", maskURL(settings.Alert.WebhookURL))
	} else {
		cmd.Println("  Webhook: (not set, alerts are logged)")
	}
	cmd.Println()

	// Metrics settings
	cmd.Println("[Metrics]")
	cmd.Printf("  Address: %s\n", orNotSet(settings.Metrics.Addr))
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'stryda settings set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := strings.ToLower(strings.TrimSpace(args[0])), strings.TrimSpace(args[1])

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if err := applySetting(settings, key, value); err != nil {
		return err
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

// settingSetters maps config keys to functions that parse and apply a value.
var settingSetters = map[string]func(s *domain.AppSettings, v string) error{
	"enrich.batch_size": func(s *domain.AppSettings, v string) error {
		return setPositiveInt(&s.Enrichment.BatchSize, v)
	},
	"enrich.heartbeat_interval": func(s *domain.AppSettings, v string) error {
		return setDuration(&s.Enrichment.HeartbeatInterval, v, false)
	},
	"enrich.stall_timeout": func(s *domain.AppSettings, v string) error {
		return setDuration(&s.Enrichment.StallTimeout, v, false)
	},
	"enrich.max_restarts": func(s *domain.AppSettings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: expected a non-negative integer, got %q", domain.ErrInvalidInput, v)
		}
		s.Enrichment.MaxRestarts = n
		return nil
	},
	"enrich.restart_backoff": func(s *domain.AppSettings, v string) error {
		return setDuration(&s.Enrichment.RestartBackoff, v, true)
	},
	"citation.max_citations": func(s *domain.AppSettings, v string) error {
		return setPositiveInt(&s.Citation.MaxCitations, v)
	},
	"storage.driver": func(s *domain.AppSettings, v string) error {
		driver := domain.StorageDriver(strings.ToLower(v))
		if !driver.IsValid() {
			return fmt.Errorf("%w: unknown storage driver %q", domain.ErrInvalidInput, v)
		}
		s.Storage.Driver = driver
		return nil
	},
	"storage.database_url": func(s *domain.AppSettings, v string) error {
		s.Storage.DatabaseURL = v
		return nil
	},
	"storage.redis_url": func(s *domain.AppSettings, v string) error {
		s.Storage.RedisURL = v
		return nil
	},
	"alert.webhook_url": func(s *domain.AppSettings, v string) error {
		if v != "" && !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			return fmt.Errorf("%w: webhook URL must be http or https", domain.ErrInvalidInput)
		}
		s.Alert.WebhookURL = v
		return nil
	},
	"metrics.addr": func(s *domain.AppSettings, v string) error {
		s.Metrics.Addr = v
		return nil
	},
}

// applySetting parses value and stores it under key.
func applySetting(s *domain.AppSettings, key, value string) error {
	set, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (valid: %s)",
			domain.ErrInvalidInput, key, strings.Join(settingKeys(), ", "))
	}
	return set(s, value)
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setPositiveInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fmt.Errorf("%w: expected a positive integer, got %q", domain.ErrInvalidInput, v)
	}
	*dst = n
	return nil
}

// setDuration accepts whole seconds or a Go duration string.
func setDuration(dst *time.Duration, v string, allowZero bool) error {
	d, err := parseDuration(v)
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return fmt.Errorf("%w: expected seconds or a duration, got %q", domain.ErrInvalidInput, v)
	}
	*dst = d
	return nil
}

func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// maskURL hides the password of a connection URL.
func maskURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// Package config loads engine configuration. Values come from defaults
// overridden by NUMZ_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/spf13/viper"
)

// Config holds everything the engine needs at startup.
type Config struct {
	// DBPath is the SQLite database file. Default ~/.numz/numz.db.
	DBPath string

	// CoolingOffMonths is the quiet window after filing before the
	// rollover scheduler spawns the successor.
	CoolingOffMonths int

	// AssignRole is the reviewer role the auto-assignment pool draws from.
	AssignRole domain.ReviewerRole

	// Company registry lookup. An empty endpoint disables the registry;
	// the engine falls back to calendar arithmetic everywhere.
	RegistryEndpoint string
	RegistryAPIKey   string
	RegistryTimeout  time.Duration

	// SchedulerInterval is the tick for `run loop`.
	SchedulerInterval time.Duration

	// LogJSON forces JSON log output even on a terminal.
	LogJSON bool
}

// Load reads configuration from the environment over built-in defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NUMZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("db", "")
	v.SetDefault("cooling-off-months", 1)
	v.SetDefault("assign-role", string(domain.RoleStaff))
	v.SetDefault("registry-endpoint", "")
	v.SetDefault("registry-api-key", "")
	v.SetDefault("registry-timeout", "10s")
	v.SetDefault("scheduler-interval", "1h")
	v.SetDefault("log-json", false)

	cfg := Config{
		DBPath:           v.GetString("db"),
		CoolingOffMonths: v.GetInt("cooling-off-months"),
		AssignRole:       domain.ReviewerRole(v.GetString("assign-role")),
		RegistryEndpoint: v.GetString("registry-endpoint"),
		RegistryAPIKey:   v.GetString("registry-api-key"),
		LogJSON:          v.GetBool("log-json"),
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".numz", "numz.db")
	}

	var err error
	if cfg.RegistryTimeout, err = time.ParseDuration(v.GetString("registry-timeout")); err != nil {
		return Config{}, fmt.Errorf("parsing NUMZ_REGISTRY_TIMEOUT: %w", err)
	}
	if cfg.SchedulerInterval, err = time.ParseDuration(v.GetString("scheduler-interval")); err != nil {
		return Config{}, fmt.Errorf("parsing NUMZ_SCHEDULER_INTERVAL: %w", err)
	}

	if cfg.CoolingOffMonths < 1 {
		return Config{}, fmt.Errorf("cooling-off months must be at least 1, got %d", cfg.CoolingOffMonths)
	}
	if !domain.ValidReviewerRoles[string(cfg.AssignRole)] {
		return Config{}, fmt.Errorf("unknown assignment role %q", cfg.AssignRole)
	}
	return cfg, nil
}

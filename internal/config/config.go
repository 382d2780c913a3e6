// Package config loads runtime settings from .env, an optional YAML file and
// the process environment, in increasing order of precedence.
package config

import (
	"elsofra/internal/utils"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024

const (
	defaultPort             = "8080"
	defaultLogLevel         = "info"
	defaultLogFormat        = "json"
	defaultCORSOrigins      = "*"
	defaultTimezone         = "UTC"
	defaultSlotCapacity     = 50
	defaultServingSlots     = "19:30,20:00"
	defaultStayWindowDays   = 3
	defaultLeadDays         = 1
	defaultStaleBookingCron = "@hourly"
)

// ScheduleSeed is one day of opening hours as written in the YAML file.
type ScheduleSeed struct {
	Day       string `koanf:"day"`
	Open      bool   `koanf:"open"`
	OpenTime  string `koanf:"open_time"`
	CloseTime string `koanf:"close_time"`
}

type Config struct {
	DatabaseURL      string
	Port             string
	LogLevel         string
	LogFormat        string
	JWTSecret        string
	CORSOrigins      []string
	Location         *time.Location
	SlotCapacity     int
	ServingSlots     []string
	StayWindowDays   int
	LeadDays         int
	StaleBookingCron string
	Schedule         []ScheduleSeed
}

// Load builds the Config. configFile may be empty, in which case CONFIG_FILE
// is consulted; a missing .env file is not an error.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile != "" {
		content, err := readConfigFile(configFile)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	}

	// DATABASE_URL -> database_url
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Config, error) {
	cfg := &Config{
		DatabaseURL:      k.String("database_url"),
		Port:             stringOr(k, "port", defaultPort),
		LogLevel:         stringOr(k, "log_level", defaultLogLevel),
		LogFormat:        stringOr(k, "log_format", defaultLogFormat),
		JWTSecret:        k.String("jwt_secret"),
		CORSOrigins:      ParseCSV(stringOr(k, "cors_origins", defaultCORSOrigins)),
		ServingSlots:     ParseCSV(stringOr(k, "serving_slots", defaultServingSlots)),
		StaleBookingCron: stringOr(k, "stale_booking_cron", defaultStaleBookingCron),
	}

	var err error
	if cfg.SlotCapacity, err = intOr(k, "slot_capacity", defaultSlotCapacity); err != nil {
		return nil, err
	}
	if cfg.StayWindowDays, err = intOr(k, "stay_window_days", defaultStayWindowDays); err != nil {
		return nil, err
	}
	if cfg.LeadDays, err = intOr(k, "lead_days", defaultLeadDays); err != nil {
		return nil, err
	}
	if cfg.SlotCapacity <= 0 {
		return nil, fmt.Errorf("slot_capacity must be positive, got %d", cfg.SlotCapacity)
	}
	if cfg.StayWindowDays < 0 || cfg.LeadDays < 0 {
		return nil, fmt.Errorf("stay_window_days and lead_days must not be negative")
	}
	if cfg.ServingSlots, err = normalizeSlots(cfg.ServingSlots); err != nil {
		return nil, err
	}

	tz := stringOr(k, "timezone", defaultTimezone)
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	if k.Exists("schedule") {
		if err := k.Unmarshal("schedule", &cfg.Schedule); err != nil {
			return nil, fmt.Errorf("invalid schedule section: %w", err)
		}
	}
	return cfg, nil
}

// normalizeSlots rewrites serving slots to HH:MM so they compare equal to
// stored bookings ("19h30" and "19:30" are the same slot).
func normalizeSlots(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("serving_slots must not be empty")
	}
	slots := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		slot, err := utils.NormalizeSlot(r)
		if err != nil {
			return nil, fmt.Errorf("invalid serving_slots: %w", err)
		}
		if seen[slot] {
			continue
		}
		seen[slot] = true
		slots = append(slots, slot)
	}
	return slots, nil
}

// RequireDatabase reports a missing DATABASE_URL.
func (c *Config) RequireDatabase() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}
	return nil
}

func (c *Config) RequireJWTSecret() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET not set")
	}
	return nil
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

func stringOr(k *koanf.Koanf, key, def string) string {
	if v := strings.TrimSpace(k.String(key)); v != "" {
		return v
	}
	return def
}

func intOr(k *koanf.Koanf, key string, def int) (int, error) {
	raw := strings.TrimSpace(k.String(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return n, nil
}

// ParseCSV splits a comma separated list, dropping blanks.
func ParseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

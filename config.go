package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yfahmy/tadawul/shared"
)

// Config is the configuration struct for the service.
type Config struct {
	// Tickers represents the tracked issuer names, empty meaning the full
	// catalog.
	Tickers []string
	// FMPAPIKey is the FMP service API Key.
	FMPAPIKey string
	// Start is the inclusive start date of the requested series.
	Start string
	// End is the inclusive end date of the requested series.
	End string
	// OutputDir is the directory for processed csv files.
	OutputDir string
	// OfflineDataDir, when set, processes previously saved csv series
	// instead of downloading.
	OfflineDataDir string
	// DatabaseEndpoint is the optional run summary database endpoint.
	DatabaseEndpoint string
	// DatabaseUser is the database user.
	DatabaseUser string
	// DatabasePass is the database user pass.
	DatabasePass string
	// Refresh keeps the service running with a scheduled daily refresh.
	Refresh bool

	registeredFlags map[string]bool
}

// Validate asserts the config has sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.OfflineDataDir == "" && cfg.FMPAPIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("fmp api key cannot be an empty string"))
	}

	for _, name := range cfg.Tickers {
		if _, ok := shared.SaudiTickers[name]; !ok {
			errs = errors.Join(errs, fmt.Errorf("unknown ticker: %s", name))
		}
	}

	if cfg.Start != "" {
		_, err := time.Parse(shared.DateLayout, cfg.Start)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("start date must use the %s layout", shared.DateLayout))
		}
	}
	if cfg.End != "" {
		_, err := time.Parse(shared.DateLayout, cfg.End)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("end date must use the %s layout", shared.DateLayout))
		}
	}

	return errs
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Slice:
		// Only handle []string
		if val.Elem().Type().Elem().Kind() == reflect.String {
			var def []string
			if defValue != "" {
				def = strings.Split(defValue, ",")
			}
			flag.Func(name, usage, func(s string) error {
				*value.(*[]string) = strings.Split(s, ",")
				return nil
			})
			// Set default if not provided via flag
			if len(def) > 0 {
				*value.(*[]string) = def
			}
		} else {
			return fmt.Errorf("%s: unsupported slice type", name)
		}
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Register command line arguments using loaded environment variables as defaults.
	err = cfg.registerFlag("tickers", &cfg.Tickers, "the tracked tickers")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("fmpapikey", &cfg.FMPAPIKey, "the FMP api key")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("start", &cfg.Start, "the series start date")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("end", &cfg.End, "the series end date")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("outputdir", &cfg.OutputDir, "the processed data directory")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("offlinedatadir", &cfg.OfflineDataDir, "the offline raw data directory")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dbendpoint", &cfg.DatabaseEndpoint, "the run summary database endpoint")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dbuser", &cfg.DatabaseUser, "the database user")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dbpass", &cfg.DatabasePass, "the database pass")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("refresh", &cfg.Refresh, "the daily refresh flag")
	if err != nil {
		return err
	}

	// Parse command-line flags.
	flag.Parse()

	if cfg.OutputDir == "" {
		cfg.OutputDir = "data/processed"
	}
	if cfg.Start == "" {
		cfg.Start = "2024-01-01"
	}

	return cfg.Validate()
}

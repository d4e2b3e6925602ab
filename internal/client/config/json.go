package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sharmaronit/mindspend-labs/internal/flagx"
	"github.com/sharmaronit/mindspend-labs/internal/timex"
)

// JsonConfig is a DTO used only for JSON unmarshalling. timex.Duration lets
// the file spell intervals either as strings like "15s" or as integer
// nanoseconds.
type JsonConfig struct {
	ServiceURL    string         `json:"service_url"`
	ServiceKey    string         `json:"service_key"`
	AccountAPIURL string         `json:"account_api_url"`
	CacheDBPath   string         `json:"cache_db_path"`
	HTTPTimeout   timex.Duration `json:"http_timeout"`
	LogLevel      string         `json:"log_level"`
}

// parseJson overlays cfg with values from the JSON file named by the -c or
// -config flag. No flag means no JSON layer. Only fields present in the
// file override the current values.
func parseJson(cfg *Config) error {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if jc.ServiceURL != "" {
		cfg.ServiceURL = jc.ServiceURL
	}
	if jc.ServiceKey != "" {
		cfg.ServiceKey = jc.ServiceKey
	}
	if jc.AccountAPIURL != "" {
		cfg.AccountAPIURL = jc.AccountAPIURL
	}
	if jc.CacheDBPath != "" {
		cfg.CacheDBPath = jc.CacheDBPath
	}
	if jc.HTTPTimeout.Duration != 0 {
		cfg.HTTPTimeout = time.Duration(jc.HTTPTimeout.Duration)
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	return nil
}

package cli

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/llm"
)

// ConfigManager reads and writes single config keys through the config
// manager, so every change is validated and persisted.
type ConfigManager struct {
	mgr *config.Manager
}

func NewConfigManager(mgr *config.Manager) *ConfigManager {
	return &ConfigManager{mgr: mgr}
}

var secretKeys = map[string]bool{
	"openai_api_key":    true,
	"deepseek_api_key":  true,
	"anthropic_api_key": true,
	"google_api_key":    true,
}

// configField finds the struct field whose json tag matches key.
func configField(v reflect.Value, key string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		if tag == key {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// ListAvailableKeys returns every settable key in sorted order
func ListAvailableKeys() []string {
	t := reflect.TypeOf(config.Config{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		if tag != "" && tag != "-" {
			keys = append(keys, tag)
		}
	}
	sort.Strings(keys)
	return keys
}

// GetConfigValue returns the value of key as text. Secrets are masked.
func GetConfigValue(cfg config.Config, key string) (string, error) {
	field, ok := configField(reflect.ValueOf(cfg), key)
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	value := fmt.Sprint(field.Interface())
	if secretKeys[key] {
		return maskSecret(value), nil
	}
	return value, nil
}

// SetConfigValue parses raw into the field named by key.
func SetConfigValue(cfg *config.Config, key, raw string) error {
	field, ok := configField(reflect.ValueOf(cfg).Elem(), key)
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	raw = strings.TrimSpace(raw)
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s expects a boolean: %w", key, err)
		}
		field.SetBool(v)
	case reflect.Int, reflect.Int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%s expects an integer: %w", key, err)
		}
		field.SetInt(v)
	case reflect.Float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%s expects a number: %w", key, err)
		}
		field.SetFloat(v)
	default:
		return fmt.Errorf("config key %q cannot be set from the command line", key)
	}
	return nil
}

// Set changes one key and persists the result if it validates.
func (cm *ConfigManager) Set(key, raw string) error {
	cfg := cm.mgr.Get()
	if err := SetConfigValue(&cfg, key, raw); err != nil {
		return err
	}
	return cm.mgr.Update(cfg)
}

func (cm *ConfigManager) Get(key string) (string, error) {
	return GetConfigValue(cm.mgr.Get(), key)
}

// ValidateConfiguration checks the config and returns warnings for optional
// settings that are missing.
func (cm *ConfigManager) ValidateConfiguration() ([]string, error) {
	cfg := cm.mgr.Get()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var warnings []string
	if p, _ := llm.ParseProvider(cfg.LLMProvider); p != llm.ProviderNone && cfg.APIKeyFor(p) == "" {
		warnings = append(warnings, fmt.Sprintf("no API key configured for provider %s, narratives fall back to rules", p))
	}
	if cfg.PolicyURL == "" {
		warnings = append(warnings, "policy_url not set, budgets use the rule-based allocation")
	}
	if cfg.ForecastURL == "" {
		warnings = append(warnings, "forecast_url not set, income forecasts use linear regression")
	}
	return warnings, nil
}

// ShowConfig prints every key with secrets masked
func (cm *ConfigManager) ShowConfig(w io.Writer) {
	cfg := cm.mgr.Get()
	fmt.Fprintln(w, headerStyle.Render("📋 Current FinSage Configuration"))
	fmt.Fprintf(w, "Config file: %s\n\n", cm.mgr.Path())
	for _, key := range ListAvailableKeys() {
		v, _ := GetConfigValue(cfg, key)
		if v == "" {
			v = pendingStyle.Render("(not set)")
		}
		fmt.Fprintf(w, "%-24s %s\n", key, v)
	}
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "********"
	default:
		return s[:4] + strings.Repeat("*", 8)
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config file discovery and environment binding. SBFL_OUTPUT_TOP sets
// output.top.
const (
	fileStem  = ".sbfl"
	fileType  = "yaml"
	envPrefix = "SBFL"
)

// LoadConfig merges defaults, the config file and SBFL_* variables, then
// validates the result. An explicit configPath must exist. Without one,
// .sbfl.yaml is looked up in the working directory and then $HOME, and its
// absence leaves the defaults in place.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType(fileType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaultValues() {
		v.SetDefault(key, value)
	}

	locate(v, configPath)

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func locate(v *viper.Viper, explicit string) {
	if explicit != "" {
		v.SetConfigFile(explicit)

		return
	}

	v.SetConfigName(fileStem)
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
}

// isNotFound reports a failed search. A missing explicit file surfaces as an
// fs error instead and stays fatal.
func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError

	return errors.As(err, &notFound)
}

// defaultValues flattens Default into viper keys. Every key must have a
// default for AutomaticEnv to pick up its variable during Unmarshal.
func defaultValues() map[string]any {
	d := Default()

	return map[string]any{
		"coverage.extension":       d.Coverage.Extension,
		"coverage.forced_failures": d.Coverage.ForcedFailures,
		"coverage.workers":         d.Coverage.Workers,
		"coverage.max_record_size": d.Coverage.MaxRecordSize,
		"output.file_name":         d.Output.FileName,
		"output.formats":           d.Output.Formats,
		"output.top":               d.Output.Top,
		"output.theme":             d.Output.Theme,
		"logging.level":            d.Logging.Level,
		"logging.format":           d.Logging.Format,
	}
}

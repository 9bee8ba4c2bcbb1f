package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the merged view of flags, environment and sqlaudit.yaml
type Config struct {
	Output struct {
		Format string `mapstructure:"format"`
		Color  bool   `mapstructure:"color"`
	} `mapstructure:"output"`

	Analysis struct {
		SkipDiagnostics bool `mapstructure:"skip_diagnostics"`
		SkipCompliance  bool `mapstructure:"skip_compliance"`
		ReportSuccess   bool `mapstructure:"report_success"`
	} `mapstructure:"analysis"`

	Compliance struct {
		ExtraFields []string `mapstructure:"extra_fields"`
	} `mapstructure:"compliance"`

	History struct {
		URL   string `mapstructure:"url"`
		Limit int    `mapstructure:"limit"`
	} `mapstructure:"history"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.format", "text")
	v.SetDefault("output.color", true)
	v.SetDefault("analysis.skip_diagnostics", false)
	v.SetDefault("analysis.skip_compliance", false)
	v.SetDefault("analysis.report_success", false)
	// Unmarshal only sees environment values for keys viper already knows
	v.SetDefault("compliance.extra_fields", []string{})
	v.SetDefault("history.url", "")
	v.SetDefault("history.limit", 20)
	v.SetDefault("log.level", "warn")
}

// initConfig reads the config file, .env and environment variables
func initConfig() {
	// .env only feeds the environment; values already set win
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Warnf("failed to load .env file: %v", err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("sqlaudit")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SQLAUDIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("using config file: %s", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		log.Warnf("failed to read config file %s: %v", cfgFile, err)
	}
}

// loadConfig decodes the viper state into a Config
func loadConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	return &cfg, nil
}

// configureLogger applies the configured level; verbose forces debug
func configureLogger(logger *logrus.Logger, level string, verbose bool) error {
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
		return nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)
	return nil
}

package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/inferdelta/pkg/constants"
	"github.com/agentstation/inferdelta/pkg/delta"
	"github.com/agentstation/inferdelta/pkg/errors"
)

// EnvPrefix prefixes every environment variable read into Config.
const EnvPrefix = "INFERDELTA"

// configName is the config file searched for in the home and working directories.
const configName = ".inferdelta"

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Reconciliation
	Identifiers        string
	IncludeIsA         bool
	IsAType            int64
	CharacteristicType string
	MaxUnresolved      int
	MetricsFile        string
	DryRun             bool
	Interactive        bool

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied by the root command)
// 2. Environment variables (INFERDELTA_*, LOG_*), then .env and .env.local
// 3. Config file (configFile, or .inferdelta.yaml in $HOME or the working directory)
// 4. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "failed to read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(configName)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "failed to read "+configName+".yaml", err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Identifiers:        v.GetString("identifiers"),
		IncludeIsA:         v.GetBool("include_isa"),
		IsAType:            v.GetInt64("is_a_type"),
		CharacteristicType: v.GetString("stated_characteristic_type"),
		MaxUnresolved:      v.GetInt("max_unresolved"),
		MetricsFile:        v.GetString("metrics_file"),
		DryRun:             v.GetBool("dry_run"),

		LogLevel:  firstNonEmpty(v.GetString("log_level"), os.Getenv("LOG_LEVEL")),
		LogFormat: firstNonEmpty(v.GetString("log_format"), os.Getenv("LOG_FORMAT"), "auto"),
		LogOutput: firstNonEmpty(v.GetString("log_output"), os.Getenv("LOG_OUTPUT"), "stderr"),
	}

	if _, err := delta.ParseIdentifierPolicy(config.Identifiers); err != nil {
		return nil, errors.NewConfigError("identifiers", err.Error(), err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("identifiers", delta.IdentifiersBlank.String())
	v.SetDefault("is_a_type", constants.IsAType)
	v.SetDefault("stated_characteristic_type", constants.StatedCharacteristicType)
	v.SetDefault("max_unresolved", constants.DefaultMaxUnresolved)
}

// merge copies every value from other whose flag was not set on the command line.
func (c *Config) merge(other *Config, changed func(flag string) bool) {
	set := func(flag string, apply func()) {
		if !changed(flag) {
			apply()
		}
	}
	set("verbose", func() { c.Verbose = other.Verbose })
	set("quiet", func() { c.Quiet = other.Quiet })
	set("no-color", func() { c.NoColor = other.NoColor })
	set("format", func() { c.Format = other.Format })
	set("identifiers", func() { c.Identifiers = other.Identifiers })
	set("include-isa", func() { c.IncludeIsA = other.IncludeIsA })
	set("is-a-type", func() { c.IsAType = other.IsAType })
	set("characteristic-type", func() { c.CharacteristicType = other.CharacteristicType })
	set("max-unresolved", func() { c.MaxUnresolved = other.MaxUnresolved })
	set("metrics-file", func() { c.MetricsFile = other.MetricsFile })
	set("dry-run", func() { c.DryRun = other.DryRun })

	c.ConfigFile = other.ConfigFile
	c.LogLevel = other.LogLevel
	c.LogFormat = other.LogFormat
	c.LogOutput = other.LogOutput
}

// loadEnvFiles loads environment variables from .env files.
// Variables already set in the environment are never overwritten.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

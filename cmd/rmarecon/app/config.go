package app

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/rmarecon/pkg/constants"
	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/reconcile"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Reconciliation configuration
	ExportDir      string
	VocabularyFile string
	HeaderKeywords []string
	ClosureRule    *reconcile.Rule
	PickupRule     *reconcile.Rule

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (RMARECON_ prefix)
// 3. .env files
// 4. Config file (configFile, or ~/.rmarecon.yaml, or ./.rmarecon.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("output", "")
	v.SetDefault("export_dir", ".")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapConfig("config file", err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigFileName)

		// Read config file (ignore error if not found)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) {
				return nil, errors.WrapConfig("config file", err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color") || os.Getenv("NO_COLOR") != "",
		Format:  v.GetString("output"),

		ConfigFile: v.ConfigFileUsed(),

		ExportDir:      v.GetString("export_dir"),
		VocabularyFile: v.GetString("vocabulary"),
		HeaderKeywords: v.GetStringSlice("header_keywords"),

		LogLevel:  getConfigOrEnv(v, "log_level", "LOG_LEVEL", ""),
		LogFormat: getConfigOrEnv(v, "log_format", "LOG_FORMAT", "auto"),
		LogOutput: getConfigOrEnv(v, "log_output", "LOG_OUTPUT", "stderr"),
	}

	var err error
	if config.ClosureRule, err = ruleFromConfig(v, "rules.closure", reconcile.ClosureRule()); err != nil {
		return nil, err
	}
	if config.PickupRule, err = ruleFromConfig(v, "rules.pickup", reconcile.PickupRule()); err != nil {
		return nil, err
	}

	return config, nil
}

// ruleFromConfig decodes a rule override. Unset keys keep the defaults of
// base; a section that is absent yields nil.
func ruleFromConfig(v *viper.Viper, key string, base reconcile.Rule) (*reconcile.Rule, error) {
	if !v.IsSet(key) {
		return nil, nil
	}
	rule := base
	if err := v.UnmarshalKey(key, &rule); err != nil {
		return nil, errors.WrapConfig(key, err)
	}
	return &rule, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getConfigOrEnv returns the viper value for key (config file or prefixed
// env var), then the bare env var, then the default.
func getConfigOrEnv(v *viper.Viper, key, env, defaultValue string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	if value := os.Getenv(env); value != "" {
		return value
	}
	return defaultValue
}

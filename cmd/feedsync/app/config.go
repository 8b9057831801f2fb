package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/feedsync/internal/vendors"
	"github.com/agentstation/feedsync/pkg/constants"
	"github.com/agentstation/feedsync/pkg/errors"
)

// State backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
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

	// Catalog connection
	StoreURL          string        `validate:"required"`
	APIKey            string        `validate:"required"`
	APIVersion        string        `validate:"required"`
	MutationInterval  time.Duration `validate:"gte=0"`
	InventoryInterval time.Duration `validate:"gte=0"`

	// Persisted state
	StateBackend string `validate:"oneof=file redis"`
	StateDir     string `validate:"required_if=StateBackend file"`
	RedisURL     string `validate:"required_if=StateBackend redis"`

	// Feed locations, keyed by vendor name
	FeedURLs map[string]string

	// FTP feeds
	FTPHost     string
	FTPUsername string
	FTPPassword string
	FTPFilePath string

	// S3 feeds; an empty endpoint uses AWS
	S3Endpoint string

	// Safety threshold for archival
	MinArchiveHandles int `validate:"gte=0"`

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.feedsync.yaml or ./.feedsync.yaml)
// 5. Defaults
//
// A non-empty configFile is read instead of searching the standard
// locations.
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if configFile == "" {
		configFile = v.GetString("feedsync_config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".feedsync")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "failed to read config file", err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		StoreURL:          v.GetString("shopify_store_url"),
		APIKey:            v.GetString("shopify_api_key"),
		APIVersion:        v.GetString("shopify_api_version"),
		MutationInterval:  v.GetDuration("feedsync_mutation_interval"),
		InventoryInterval: v.GetDuration("feedsync_inventory_interval"),

		StateBackend: strings.ToLower(v.GetString("feedsync_state_backend")),
		StateDir:     v.GetString("feedsync_state_dir"),
		RedisURL:     v.GetString("redis_url"),

		FeedURLs: make(map[string]string),

		FTPHost:     v.GetString("ftp_host"),
		FTPUsername: v.GetString("ftp_username"),
		FTPPassword: v.GetString("ftp_password"),
		FTPFilePath: v.GetString("ftp_file_path"),

		S3Endpoint: v.GetString("aws_s3_endpoint"),

		MinArchiveHandles: v.GetInt("feedsync_min_archive_handles"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	for _, name := range vendors.Names() {
		if u := v.GetString(name + "_feed_url"); u != "" {
			config.FeedURLs[name] = u
		}
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("shopify_api_version", constants.DefaultAPIVersion)
	v.SetDefault("feedsync_mutation_interval", constants.MutationInterval)
	v.SetDefault("feedsync_inventory_interval", constants.InventoryInterval)
	v.SetDefault("feedsync_state_backend", BackendFile)
	v.SetDefault("feedsync_state_dir", constants.DefaultStateDir)
	v.SetDefault("feedsync_min_archive_handles", constants.MinArchiveHandles)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// FeedURL returns the configured feed location for a vendor. A vendor
// without an explicit URL falls back to the FTP settings when they are
// complete, and then to the vendor's default.
func (c *Config) FeedURL(v *vendors.Vendor) string {
	if u := c.FeedURLs[v.Name()]; u != "" {
		return u
	}
	if c.FTPHost != "" && c.FTPFilePath != "" {
		return fmt.Sprintf("ftp://%s/%s", strings.TrimSuffix(c.FTPHost, "/"), strings.TrimPrefix(c.FTPFilePath, "/"))
	}
	return v.DefaultFeedURL
}

var validate = validator.New()

// ValidateCatalog checks the settings needed to talk to the catalog.
func (c *Config) ValidateCatalog() error {
	return check(validate.StructPartial(c, "StoreURL", "APIKey", "APIVersion", "MutationInterval", "InventoryInterval"))
}

// ValidateState checks the settings needed to open the state backend.
func (c *Config) ValidateState() error {
	return check(validate.StructPartial(c, "StateBackend", "StateDir", "RedisURL", "MinArchiveHandles"))
}

// check turns validator failures into a ConfigError naming every field.
func check(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.NewConfigError("config", "invalid configuration", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return errors.NewConfigError("config", strings.Join(msgs, "; "), err)
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

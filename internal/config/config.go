package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("auth-profile version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Provider ProviderConfig `mapstructure:"provider"`
	Store    StoreConfig    `mapstructure:"store"`
	Messages MessagesConfig `mapstructure:"messages"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	Color             bool   `mapstructure:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// ProviderKind selects the identity provider implementation
type ProviderKind string

const (
	ProviderKindFirebase ProviderKind = "firebase"
	ProviderKindLocal    ProviderKind = "local"
)

type ProviderConfig struct {
	Kind           ProviderKind  `mapstructure:"kind"`
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"` // Identity Toolkit endpoint, defaults to the public one
	ProjectID      string        `mapstructure:"project_id"`
	VerifyIDTokens bool          `mapstructure:"verify_id_tokens"`
	Timeout        time.Duration `mapstructure:"timeout"`       // 0 means no client timeout
	AccountsFile   string        `mapstructure:"accounts_file"` // local provider only; empty keeps accounts in memory
}

// StoreDriver selects the document store backend
type StoreDriver string

const (
	StoreDriverMemory    StoreDriver = "memory"
	StoreDriverSQLite    StoreDriver = "sqlite"
	StoreDriverMongo     StoreDriver = "mongo"
	StoreDriverFirestore StoreDriver = "firestore"
)

type StoreConfig struct {
	Driver     StoreDriver     `mapstructure:"driver"`
	SQLitePath string          `mapstructure:"sqlite_path"`
	Mongo      MongoConfig     `mapstructure:"mongo"`
	Firestore  FirestoreConfig `mapstructure:"firestore"`
}

type MongoConfig struct {
	URL             string        `mapstructure:"url"`
	Database        string        `mapstructure:"database"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxPoolSize     uint64        `mapstructure:"max_pool_size"`
	MinPoolSize     uint64        `mapstructure:"min_pool_size"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryInterval   time.Duration `mapstructure:"retry_interval"`
}

type FirestoreConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	ProjectID string        `mapstructure:"project_id"`
	Database  string        `mapstructure:"database"`
	PageSize  int           `mapstructure:"page_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type MessagesConfig struct {
	Locale string `mapstructure:"locale"`
}

// InitFlags initializes command line flags (without parsing)
func InitFlags(fs *pflag.FlagSet) {
	fs.String("provider.kind", string(ProviderKindLocal), "Identity provider (firebase|local)")
	fs.String("store.driver", string(StoreDriverMemory), "Document store driver (memory|sqlite|mongo|firestore)")
	fs.String("messages.locale", "pt-BR", "Locale for user-facing messages")
	fs.String("logging.level", "info", "Log level")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("provider.kind", string(ProviderKindLocal))
	v.SetDefault("store.driver", string(StoreDriverMemory))
	v.SetDefault("store.sqlite_path", "auth-profile.db")
	v.SetDefault("store.mongo.database", "auth_profile")
	v.SetDefault("store.mongo.connect_timeout", 10*time.Second)
	v.SetDefault("store.mongo.max_pool_size", 100)
	v.SetDefault("store.mongo.min_pool_size", 1)
	v.SetDefault("store.mongo.max_conn_idle_time", 300*time.Second)
	v.SetDefault("store.mongo.retry_attempts", 3)
	v.SetDefault("store.mongo.retry_interval", 5*time.Second)
	v.SetDefault("store.firestore.database", "(default)")
	v.SetDefault("store.firestore.page_size", 300)
	v.SetDefault("messages.locale", "pt-BR")
}

// Load reads configuration from flags, AUTH_PROFILE_* environment variables and
// config.yaml. A missing config file is not an error.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("AUTH_PROFILE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/auth-profile")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	if _, err := os.Stat("/config/config.yaml"); err == nil {
		v.SetConfigFile("/config/config.yaml")
		if err := v.MergeInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the cross-field requirements of the selected provider and store.
func (c *Config) Validate() error {
	switch c.Provider.Kind {
	case ProviderKindLocal:
	case ProviderKindFirebase:
		if c.Provider.APIKey == "" {
			return fmt.Errorf("provider.api_key is required for the firebase provider, please adjust the config or set AUTH_PROFILE_PROVIDER_API_KEY")
		}
		if c.Provider.VerifyIDTokens && c.Provider.ProjectID == "" {
			return fmt.Errorf("provider.project_id is required when provider.verify_id_tokens is enabled")
		}
	default:
		return fmt.Errorf("unsupported provider kind: %q", c.Provider.Kind)
	}

	switch c.Store.Driver {
	case StoreDriverMemory:
	case StoreDriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
		}
	case StoreDriverMongo:
		if c.Store.Mongo.URL == "" {
			return fmt.Errorf("store.mongo.url is required for the mongo driver, please adjust the config or set AUTH_PROFILE_STORE_MONGO_URL")
		}
	case StoreDriverFirestore:
		if c.Store.Firestore.ProjectID == "" {
			return fmt.Errorf("store.firestore.project_id is required for the firestore driver")
		}
	default:
		return fmt.Errorf("unsupported store driver: %q", c.Store.Driver)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/santobu/copilot-metrics-dashboard/internal/models"
)

// Config captures the runtime configuration for the metrics service.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	GitHub        GitHubConfig        `mapstructure:"github"`
	Mongo         MongoConfig         `mapstructure:"mongo"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	ListenAddr            string        `mapstructure:"listen_addr"`
	ReadTimeout           time.Duration `mapstructure:"read_timeout"`
	WriteTimeout          time.Duration `mapstructure:"write_timeout"`
	GracefulShutdownDelay time.Duration `mapstructure:"graceful_shutdown_delay"`
	CronSecret            string        `mapstructure:"cron_secret"`
}

// GitHubConfig binds the deployment to exactly one upstream scope. Scope is
// "organization" or "enterprise"; the matching identifier must be set.
type GitHubConfig struct {
	Scope        string        `mapstructure:"scope"`
	Organization string        `mapstructure:"organization"`
	Enterprise   string        `mapstructure:"enterprise"`
	Token        string        `mapstructure:"token"`
	APIVersion   string        `mapstructure:"api_version"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	DB         int           `mapstructure:"db"`
	PoolSize   int           `mapstructure:"pool_size"`
	SummaryTTL time.Duration `mapstructure:"summary_ttl"`
}

type SchedulerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type ObservabilityConfig struct {
	EnableMetrics bool   `mapstructure:"enable_metrics"`
	EnableOTLP    bool   `mapstructure:"enable_otlp"`
	OTLPEndpoint  string `mapstructure:"otlp_endpoint"`
}

// Options controls configuration loading.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load returns the merged configuration sourced from YAML and environment variables.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	explicitFile := false
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		explicitFile = true
	} else if cfg := os.Getenv("METRICS_CONFIG_FILE"); cfg != "" {
		v.SetConfigFile(cfg)
		explicitFile = true
	}

	if !explicitFile {
		v.SetConfigName("metricsd")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("METRICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(timeStringToDurationHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures required values are set. Missing scope credentials abort
// here, before any network call is attempted.
func (c *Config) Validate() error {
	var missing []string

	switch c.GitHub.Scope {
	case string(models.ScopeEnterprise):
		if c.GitHub.Enterprise == "" {
			missing = append(missing, "METRICS_GITHUB_ENTERPRISE")
		}
	case string(models.ScopeOrganization), "":
		if c.GitHub.Organization == "" {
			missing = append(missing, "METRICS_GITHUB_ORGANIZATION")
		}
	default:
		return fmt.Errorf("github.scope must be organization or enterprise, got %q", c.GitHub.Scope)
	}
	if c.GitHub.Token == "" {
		missing = append(missing, "METRICS_GITHUB_TOKEN")
	}
	if c.Mongo.URI == "" {
		missing = append(missing, "METRICS_MONGO_URI")
	}
	if c.Server.CronSecret == "" {
		missing = append(missing, "METRICS_SERVER_CRON_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be > 0 when the scheduler is enabled")
	}
	return nil
}

// Scope resolves the configured deployment scope.
func (c *Config) Scope() models.Scope {
	if c.GitHub.Scope == string(models.ScopeEnterprise) {
		return models.Scope{Kind: models.ScopeEnterprise, Name: c.GitHub.Enterprise}
	}
	return models.Scope{Kind: models.ScopeOrganization, Name: c.GitHub.Organization}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.graceful_shutdown_delay", "5s")

	v.SetDefault("github.scope", "organization")
	v.SetDefault("github.api_version", "2022-11-28")
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("github.timeout", "30s")

	v.SetDefault("mongo.database", "copilot_metrics")
	v.SetDefault("mongo.max_pool_size", 10)
	v.SetDefault("mongo.connect_timeout", "5s")

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.summary_ttl", "15m")

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.interval", "24h")

	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.enable_otlp", false)
}

func timeStringToDurationHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case time.Duration:
			return v, nil
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, err
			}
			return d, nil
		default:
			return nil, fmt.Errorf("cannot decode %T into time.Duration", data)
		}
	}
}

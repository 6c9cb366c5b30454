// Package config loads the static, startup-only configuration (server
// ports, persistence/cache DSNs, collaborator URLs, source credentials) the
// way the teacher's internal/config packages do: viper defaults, a YAML
// file, then environment variables overriding the file (spec §6).
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the process-wide static configuration for any of the three
// core services.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Logging    LoggingConfig
	ServiceKey string
	JWTSecret  string

	Collaborators CollaboratorsConfig
	Sources       SourcesConfig
	Market        MarketHoursConfig
	Scanner       ScannerThresholds

	LexiconPath string
}

// ScannerThresholds are the operator-tunable filtering thresholds from spec
// §4.3's multi-stage filtering and the "aggressive pre-market variant".
// Of these, MinCatalystScore and TopK can be overridden without a restart
// through the runtimeconfig keys min_catalyst_score and top_k (read by
// scanner.thresholdsFor; the min_catalyst_score override applies in every
// mode). The other fields are fixed once loaded.
type ScannerThresholds struct {
	MostActiveBaseline int
	MinCatalystScore    float64
	CatalystFilterCap   int
	MinPrice            float64
	MaxPrice            float64
	MinVolume           int64
	MinRelativeVolume   float64
	TopK                int

	AggressiveMinCatalystScore float64
	AggressiveMinVolume        int64
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers string
	Topics  map[string]string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// ServiceConfig describes an HTTP collaborator the Coordinator or Scanner
// calls out to (pattern, technical, trading, market-data), or a sibling
// core service (news, scanner) called by the Coordinator.
type ServiceConfig struct {
	URL        string
	Timeout    time.Duration
	ServiceKey string
}

type CollaboratorsConfig struct {
	News       ServiceConfig
	Scanner    ServiceConfig
	Pattern    ServiceConfig
	Technical  ServiceConfig
	Trading    ServiceConfig
	MarketData ServiceConfig
}

// SourceCredential is a single configured news source's connection info.
type SourceCredential struct {
	Name       string
	Kind       string // "rest", "rss", "paginated"
	BaseURL    string
	APIKey     string
	Tier       int
	RatePerMin int
	BurstSize  int
}

type SourcesConfig struct {
	Configured []SourceCredential
	Concurrency int
}

// MarketHoursConfig defines the session window boundaries (local clock
// time, "HH:MM") used to classify a news item's market_state (spec §4.2
// step 4).
type MarketHoursConfig struct {
	Timezone       string
	PreMarketStart string
	RegularStart   string
	RegularEnd     string
	AfterHoursEnd  string
}

// Load reads configuration from path (YAML), applies defaults, then lets
// environment variables override file values. Environment variables are
// read only at startup, as required by spec §6.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.idleTimeout", "120s")

	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 20)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.topics.cycleEvents", "catalyst.cycle.events")
	v.SetDefault("kafka.topics.scanEvents", "catalyst.scan.events")
	v.SetDefault("kafka.topics.narrativeEvents", "catalyst.narrative.events")
	v.SetDefault("kafka.topics.outcomeEvents", "catalyst.outcome.events")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("serviceKey", "catalyst-core-service-key")

	v.SetDefault("collaborators.news.url", "http://localhost:5008")
	v.SetDefault("collaborators.news.timeout", "30s")
	v.SetDefault("collaborators.scanner.url", "http://localhost:5001")
	v.SetDefault("collaborators.scanner.timeout", "30s")
	v.SetDefault("collaborators.pattern.timeout", "30s")
	v.SetDefault("collaborators.technical.timeout", "30s")
	v.SetDefault("collaborators.trading.timeout", "10s")
	v.SetDefault("collaborators.marketdata.timeout", "10s")

	v.SetDefault("sources.concurrency", 8)

	v.SetDefault("market.timezone", "America/New_York")
	v.SetDefault("market.preMarketStart", "04:00")
	v.SetDefault("market.regularStart", "09:30")
	v.SetDefault("market.regularEnd", "16:00")
	v.SetDefault("market.afterHoursEnd", "20:00")

	v.SetDefault("lexiconPath", "configs/lexicon.yaml")

	v.SetDefault("scanner.mostActiveBaseline", 100)
	v.SetDefault("scanner.minCatalystScore", 30.0)
	v.SetDefault("scanner.catalystFilterCap", 20)
	v.SetDefault("scanner.minPrice", 1.0)
	v.SetDefault("scanner.maxPrice", 2000.0)
	v.SetDefault("scanner.minVolume", 500000)
	v.SetDefault("scanner.minRelativeVolume", 1.5)
	v.SetDefault("scanner.topK", 5)
	v.SetDefault("scanner.aggressiveMinCatalystScore", 20.0)
	v.SetDefault("scanner.aggressiveMinVolume", 100000)
}

package config

import (
	"time"
)

const (
	InMemory = "in-memory"
	Redis    = "redis"

	DbModePostgres = "postgres"
	DbModeMemory   = "in-memory"
)

type SettlerConfig struct {
	LogLevel     string              `json:"logLevel" mapstructure:"logLevel"`
	LogFormat    string              `json:"logFormat" mapstructure:"logFormat"`
	ProfilerAddr string              `json:"profilerAddr" mapstructure:"profilerAddr"`
	Prometheus   *PrometheusConfig   `json:"prometheus" mapstructure:"prometheus"`
	Tracing      *TracingConfig      `json:"tracing" mapstructure:"tracing"`
	Ledger       *LedgerConfig       `json:"ledger" mapstructure:"ledger"`
	Verifier     *VerifierConfig     `json:"verifier" mapstructure:"verifier"`
	Cache        *CacheConfig        `json:"cache" mapstructure:"cache"`
	Db           *DbConfig           `json:"db" mapstructure:"db"`
	MessageQueue *MessageQueueConfig `json:"messageQueue" mapstructure:"messageQueue"`
	Engine       *EngineConfig       `json:"engine" mapstructure:"engine"`
	API          *APIConfig          `json:"api" mapstructure:"api"`
}

type PrometheusConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
	Addr     string `json:"addr" mapstructure:"addr"`
}

func (p *PrometheusConfig) IsEnabled() bool {
	return p != nil && p.Enabled && p.Addr != "" && p.Endpoint != ""
}

type TracingConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	DialAddr string `json:"dialAddr" mapstructure:"dialAddr"`
	Sample   int    `json:"sample" mapstructure:"sample"`
}

func (c *SettlerConfig) IsTracingEnabled() bool {
	return c.Tracing != nil && c.Tracing.Enabled
}

// LedgerConfig points at an Ethereum-compatible JSON-RPC node.
type LedgerConfig struct {
	RPCURL        string        `json:"rpcUrl" mapstructure:"rpcUrl"`
	ChainID       int64         `json:"chainId" mapstructure:"chainId"`
	CallTimeout   time.Duration `json:"callTimeout" mapstructure:"callTimeout"`
	MaxRetries    int           `json:"maxRetries" mapstructure:"maxRetries"`
	RetryInterval time.Duration `json:"retryInterval" mapstructure:"retryInterval"`
}

type VerifierConfig struct {
	ContractAddress string        `json:"contractAddress" mapstructure:"contractAddress"`
	MaxTxAge        time.Duration `json:"maxTxAge" mapstructure:"maxTxAge"`
	CacheTTL        time.Duration `json:"cacheTTL" mapstructure:"cacheTTL"`
	SweepInterval   time.Duration `json:"sweepInterval" mapstructure:"sweepInterval"`
}

type CacheConfig struct {
	Engine string       `json:"engine" mapstructure:"engine"`
	Redis  *RedisConfig `json:"redis" mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `json:"addr" mapstructure:"addr"`
	Password string `json:"password" mapstructure:"password"`
	DB       int    `json:"db" mapstructure:"db"`
}

type DbConfig struct {
	Mode     string          `json:"mode" mapstructure:"mode"`
	Postgres *PostgresConfig `json:"postgres" mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host         string `json:"host" mapstructure:"host"`
	Port         int    `json:"port" mapstructure:"port"`
	Name         string `json:"name" mapstructure:"name"`
	User         string `json:"user" mapstructure:"user"`
	Password     string `json:"password" mapstructure:"password"`
	MaxIdleConns int    `json:"maxIdleConns" mapstructure:"maxIdleConns"`
	MaxOpenConns int    `json:"maxOpenConns" mapstructure:"maxOpenConns"`
	SslMode      string `json:"sslMode" mapstructure:"sslMode"`
}

type MessageQueueConfig struct {
	Enabled       bool   `json:"enabled" mapstructure:"enabled"`
	URL           string `json:"url" mapstructure:"url"`
	SubjectPrefix string `json:"subjectPrefix" mapstructure:"subjectPrefix"`
}

type EngineConfig struct {
	// CreationFee is the minimum creation payment in wei, as a decimal string.
	CreationFee    string        `json:"creationFee" mapstructure:"creationFee"`
	MaxSaveRetries int           `json:"maxSaveRetries" mapstructure:"maxSaveRetries"`
	ExpiryInterval time.Duration `json:"expiryInterval" mapstructure:"expiryInterval"`
	ExpiryBatch    int           `json:"expiryBatch" mapstructure:"expiryBatch"`
}

type APIConfig struct {
	Address             string  `json:"address" mapstructure:"address"`
	RateLimit           float64 `json:"rateLimit" mapstructure:"rateLimit"`
	RequestExtendedLogs bool    `json:"requestExtendedLogs" mapstructure:"requestExtendedLogs"`
}

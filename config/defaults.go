package config

import (
	"time"
)

func getDefaultSettlerConfig() *SettlerConfig {
	return &SettlerConfig{
		LogLevel:     "DEBUG",
		LogFormat:    "text",
		ProfilerAddr: "", // optional
		Prometheus:   getDefaultPrometheusConfig(),
		Tracing:      getDefaultTracingConfig(),
		Ledger:       getDefaultLedgerConfig(),
		Verifier:     getDefaultVerifierConfig(),
		Cache:        getDefaultCacheConfig(),
		Db:           getDefaultDbConfig(),
		MessageQueue: getDefaultMessageQueueConfig(),
		Engine:       getDefaultEngineConfig(),
		API:          getDefaultAPIConfig(),
	}
}

func getDefaultPrometheusConfig() *PrometheusConfig {
	return &PrometheusConfig{
		Enabled:  false,
		Endpoint: "/metrics",
		Addr:     ":2112",
	}
}

func getDefaultTracingConfig() *TracingConfig {
	return &TracingConfig{
		Enabled:  false,
		DialAddr: "",
		Sample:   100,
	}
}

func getDefaultLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		RPCURL:        "http://localhost:8545",
		ChainID:       1,
		CallTimeout:   5 * time.Second,
		MaxRetries:    3,
		RetryInterval: 200 * time.Millisecond,
	}
}

func getDefaultVerifierConfig() *VerifierConfig {
	return &VerifierConfig{
		ContractAddress: "0x0000000000000000000000000000000000000000",
		MaxTxAge:        24 * time.Hour,
		CacheTTL:        time.Hour,
		SweepInterval:   30 * time.Minute,
	}
}

func getDefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Engine: InMemory,
		Redis: &RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       1,
		},
	}
}

func getDefaultDbConfig() *DbConfig {
	return &DbConfig{
		Mode: DbModePostgres,
		Postgres: &PostgresConfig{
			Host:         "localhost",
			Port:         5432,
			Name:         "raffles",
			User:         "settler",
			Password:     "settler",
			MaxIdleConns: 10,
			MaxOpenConns: 80,
			SslMode:      "disable",
		},
	}
}

func getDefaultMessageQueueConfig() *MessageQueueConfig {
	return &MessageQueueConfig{
		Enabled:       false,
		URL:           "nats://localhost:4222",
		SubjectPrefix: "raffle.events",
	}
}

func getDefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		CreationFee:    "10000000000000000", // 0.01 ether
		MaxSaveRetries: 3,
		ExpiryInterval: time.Minute,
		ExpiryBatch:    100,
	}
}

func getDefaultAPIConfig() *APIConfig {
	return &APIConfig{
		Address:             "localhost:9090",
		RateLimit:           20,
		RequestExtendedLogs: false,
	}
}

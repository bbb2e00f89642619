package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Script            string
	Out               string
	Checkpoint        string
	CheckpointEnabled bool
	BatchSize         int
	StartTime         uint64

	Spread          string
	PriceImpactPhi  string
	PriceImpactBeta string
	OracleIndex     string
	OracleAPY       string

	In           string
	PGDSN        string
	MaxRetries   int
	RetryBackoff time.Duration

	LogLevel string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VAMMSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("out", "./data/results.jsonl")
	v.SetDefault("checkpoint", "./data/checkpoint.json")
	v.SetDefault("checkpoint-enabled", true)
	v.SetDefault("batch-size", 100)
	v.SetDefault("spread", "0")
	v.SetDefault("price-impact-phi", "0")
	v.SetDefault("price-impact-beta", "1")
	v.SetDefault("oracle-index", "1")
	v.SetDefault("oracle-apy", "0")
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Script:            v.GetString("script"),
		Out:               v.GetString("out"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		BatchSize:         v.GetInt("batch-size"),
		StartTime:         v.GetUint64("start-time"),
		Spread:            v.GetString("spread"),
		PriceImpactPhi:    v.GetString("price-impact-phi"),
		PriceImpactBeta:   v.GetString("price-impact-beta"),
		OracleIndex:       v.GetString("oracle-index"),
		OracleAPY:         v.GetString("oracle-apy"),
		In:                v.GetString("in"),
		PGDSN:             v.GetString("pg-dsn"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}

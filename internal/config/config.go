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
	WSURL         string
	Programs      string
	Filter        string
	Commitment    string
	Out           string
	PGDSN         string
	MetricsListen string
	BackoffBase   time.Duration
	BackoffMax    time.Duration
	HealthyAfter  time.Duration
	LogLevel      string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}

	v.SetDefault("ws-url", "wss://api.mainnet-beta.solana.com/")
	v.SetDefault("filter", "all")
	v.SetDefault("commitment", "processed")
	v.SetDefault("out", "./data/dexlog.jsonl")
	v.SetDefault("backoff-base", 500*time.Millisecond)
	v.SetDefault("backoff-max", 30*time.Second)
	v.SetDefault("healthy-after", 30*time.Second)
	v.SetDefault("log-level", "info")

	cfg := Config{
		WSURL:         v.GetString("ws-url"),
		Programs:      v.GetString("programs"),
		Filter:        v.GetString("filter"),
		Commitment:    v.GetString("commitment"),
		Out:           v.GetString("out"),
		PGDSN:         v.GetString("pg-dsn"),
		MetricsListen: v.GetString("metrics-listen"),
		BackoffBase:   v.GetDuration("backoff-base"),
		BackoffMax:    v.GetDuration("backoff-max"),
		HealthyAfter:  v.GetDuration("healthy-after"),
		LogLevel:      v.GetString("log-level"),
	}

	return cfg, nil
}

// VerifyConfig holds settings for the offline verify command.
type VerifyConfig struct {
	In       string
	LogLevel string
}

// LoadVerify merges config sources for the verify command.
func LoadVerify(cfgFile string, flags *pflag.FlagSet) (VerifyConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return VerifyConfig{}, err
	}

	v.SetDefault("in", "./data/dexlog.jsonl")
	v.SetDefault("log-level", "info")

	return VerifyConfig{
		In:       v.GetString("in"),
		LogLevel: v.GetString("log-level"),
	}, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("COLLECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

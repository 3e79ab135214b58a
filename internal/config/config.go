package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"taikodata/internal/chains"
)

const (
	DefaultTaikoMainnetRPC = "https://rpc.mainnet.taiko.xyz"
	DefaultTaikoHoodiRPC   = "https://rpc.hoodi.taiko.xyz"
)

// SubgraphURLs lists the subgraph endpoints of one chain.
type SubgraphURLs struct {
	Tokens   string
	Pools    string
	Standard string
}

// Config holds configuration values loaded from flags, env, .env, or config file.
type Config struct {
	Listen           string
	LogLevel         string
	Subgraphs        map[chains.ChainID]SubgraphURLs
	RPCURLs          map[chains.ChainID]string
	UniswapAPIURL    string
	UniswapAPIKey    string
	RequestTimeout   time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration
	CacheTTL         time.Duration
	PollInterval     time.Duration
	SnapshotChains   []chains.ChainID
	SnapshotPeriod   string
	PGDSN            string
	BatchSize        int
	StateFile        string
	Out              string
	ActivityPageSize int
	MetricsEnabled   bool
}

// Load merges config file, environment variables, and flags into Config. Variables from
// a .env file (TAIKODATA_ENV_FILE, default ./.env) are applied first without overriding
// the process environment.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	if err := loadDotEnv(envFilePath()); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("TAIKODATA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen", ":8080")
	v.SetDefault("log-level", "info")
	v.SetDefault("taiko-mainnet-rpc", DefaultTaikoMainnetRPC)
	v.SetDefault("taiko-hoodi-rpc", DefaultTaikoHoodiRPC)
	v.SetDefault("request-timeout", 15*time.Second)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 250*time.Millisecond)
	v.SetDefault("cache-ttl", 60*time.Second)
	v.SetDefault("poll-interval", 60*time.Second)
	v.SetDefault("snapshot-chains", "167000,167013")
	v.SetDefault("snapshot-period", "DAY")
	v.SetDefault("batch-size", 500)
	v.SetDefault("out", "./data/top_tokens.jsonl")
	v.SetDefault("activity-page-size", 100)
	v.SetDefault("metrics-enabled", true)

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

	subgraphs, err := subgraphURLs(v)
	if err != nil {
		return Config{}, err
	}
	rpcURLs, err := rpcURLs(v)
	if err != nil {
		return Config{}, err
	}
	snapshotChains, err := parseChains(getStringSlice(v, "snapshot-chains"))
	if err != nil {
		return Config{}, fmt.Errorf("snapshot-chains: %w", err)
	}
	if err := requireTaiko(snapshotChains); err != nil {
		return Config{}, fmt.Errorf("snapshot-chains: %w", err)
	}

	cfg := Config{
		Listen:           v.GetString("listen"),
		LogLevel:         v.GetString("log-level"),
		Subgraphs:        subgraphs,
		RPCURLs:          rpcURLs,
		UniswapAPIURL:    v.GetString("uniswap-api-url"),
		UniswapAPIKey:    v.GetString("uniswap-api-key"),
		RequestTimeout:   v.GetDuration("request-timeout"),
		MaxRetries:       v.GetInt("max-retries"),
		RetryBackoff:     v.GetDuration("retry-backoff"),
		CacheTTL:         v.GetDuration("cache-ttl"),
		PollInterval:     v.GetDuration("poll-interval"),
		SnapshotChains:   snapshotChains,
		SnapshotPeriod:   v.GetString("snapshot-period"),
		PGDSN:            v.GetString("pg-dsn"),
		BatchSize:        v.GetInt("batch-size"),
		StateFile:        v.GetString("state-file"),
		Out:              v.GetString("out"),
		ActivityPageSize: v.GetInt("activity-page-size"),
		MetricsEnabled:   v.GetBool("metrics-enabled"),
	}

	return cfg, nil
}

func envFilePath() string {
	if path := os.Getenv("TAIKODATA_ENV_FILE"); path != "" {
		return path
	}
	return ".env"
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// subgraphURLs reads the Taiko token and pool subgraphs plus the standard-subgraphs map
// ("<chain>=<url>,...").
func subgraphURLs(v *viper.Viper) (map[chains.ChainID]SubgraphURLs, error) {
	out := make(map[chains.ChainID]SubgraphURLs)
	set := func(id chains.ChainID, fn func(*SubgraphURLs)) {
		urls := out[id]
		fn(&urls)
		out[id] = urls
	}

	if url := v.GetString("taiko-mainnet-subgraph-tokens"); url != "" {
		set(chains.TaikoMainnet, func(u *SubgraphURLs) { u.Tokens = url })
	}
	if url := v.GetString("taiko-mainnet-subgraph-pools"); url != "" {
		set(chains.TaikoMainnet, func(u *SubgraphURLs) { u.Pools = url })
	}
	if url := v.GetString("taiko-hoodi-subgraph-tokens"); url != "" {
		set(chains.TaikoHoodi, func(u *SubgraphURLs) { u.Tokens = url })
	}
	if url := v.GetString("taiko-hoodi-subgraph-pools"); url != "" {
		set(chains.TaikoHoodi, func(u *SubgraphURLs) { u.Pools = url })
	}

	for key, url := range getStringMap(v, "standard-subgraphs") {
		id, err := chains.ParseChainID(key)
		if err != nil {
			return nil, fmt.Errorf("standard-subgraphs: %w", err)
		}
		set(id, func(u *SubgraphURLs) { u.Standard = url })
	}
	return out, nil
}

// rpcURLs returns the Taiko RPC defaults overlaid with the rpc-urls map.
func rpcURLs(v *viper.Viper) (map[chains.ChainID]string, error) {
	out := make(map[chains.ChainID]string)
	if url := v.GetString("taiko-mainnet-rpc"); url != "" {
		out[chains.TaikoMainnet] = url
	}
	if url := v.GetString("taiko-hoodi-rpc"); url != "" {
		out[chains.TaikoHoodi] = url
	}
	for key, url := range getStringMap(v, "rpc-urls") {
		id, err := chains.ParseChainID(key)
		if err != nil {
			return nil, fmt.Errorf("rpc-urls: %w", err)
		}
		out[id] = url
	}
	return out, nil
}

func parseChains(items []string) ([]chains.ChainID, error) {
	out := make([]chains.ChainID, 0, len(items))
	for _, item := range items {
		id, err := chains.ParseChainID(item)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// requireTaiko rejects chains without a top-token list.
func requireTaiko(ids []chains.ChainID) error {
	for _, id := range ids {
		if !chains.IsTaiko(id) {
			return fmt.Errorf("chain %d has no top tokens; use one of %v", id, chains.TaikoChains())
		}
	}
	return nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func getStringMap(v *viper.Viper, key string) map[string]string {
	if !v.IsSet(key) {
		return map[string]string{}
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case map[string]string:
		return typed
	case map[string]interface{}:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = fmt.Sprintf("%v", v)
		}
		return out
	case string:
		return parseStringMap(typed)
	default:
		return map[string]string{}
	}
}

func parseStringMap(input string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out
	}
	pairs := strings.Split(input, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

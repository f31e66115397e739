package config

import (
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	EngineName   string
	EngineAuthor string
	Debug        bool

	HashMB  int
	Threads int

	TuneProfile string
	BookPath    string

	NoobBookURL     string
	OnlineSyzygyURL string
	ProbeTimeoutMS  int

	RedisURL    string
	DatabaseURL string
	InfoWSURL   string
}

const (
	DefaultNoobBookURL     = "https://www.chessdb.cn/cdb.php"
	DefaultOnlineSyzygyURL = "https://tablebase.lichess.ovh/standard"
)

// Load reads the engine configuration from the environment. No variable is
// required; a value that fails to parse keeps its default.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		EngineName:      "Cheese",
		EngineAuthor:    "Cheese developers",
		HashMB:          32,
		Threads:         1,
		NoobBookURL:     DefaultNoobBookURL,
		OnlineSyzygyURL: DefaultOnlineSyzygyURL,
		ProbeTimeoutMS:  3000,
	}

	if v := strings.TrimSpace(os.Getenv("CHEESE_ENGINE_AUTHOR")); v != "" {
		cfg.EngineAuthor = v
	}
	if v := strings.TrimSpace(os.Getenv("CHEESE_DEBUG")); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			cfg.Debug = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHEESE_HASH_MB")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HashMB = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHEESE_THREADS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Threads = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHEESE_PROBE_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ProbeTimeoutMS = n
		}
	}

	cfg.TuneProfile = strings.TrimSpace(os.Getenv("CHEESE_TUNE_PROFILE"))
	cfg.BookPath = strings.TrimSpace(os.Getenv("CHEESE_BOOK_PATH"))

	if v := strings.TrimSpace(os.Getenv("CHEESE_NOOB_URL")); v != "" {
		cfg.NoobBookURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CHEESE_SYZYGY_URL")); v != "" {
		cfg.OnlineSyzygyURL = v
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.InfoWSURL = strings.TrimSpace(os.Getenv("CHEESE_INFO_WS_URL"))

	return cfg, nil
}

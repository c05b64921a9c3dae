// Package config loads corank settings from a TOML file and the environment.
//
// Precedence, lowest first: built-in defaults, the TOML file, CORANK_*
// environment variables. Command-line flags are applied on top by the CLI.
//
// Example corank.toml:
//
//	[solver]
//	scheme = "unifying"
//	exact_bound = 80
//	workers = 4
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	errs "github.com/matzehuels/corank/pkg/errors"
	"github.com/matzehuels/corank/pkg/parcons"
	"github.com/matzehuels/corank/pkg/rank"
)

// DefaultFile is the config file looked up in the working directory when no
// path is given.
const DefaultFile = "corank.toml"

// Config is the full corank configuration.
type Config struct {
	Solver  SolverConfig  `toml:"solver"`
	Cache   CacheConfig   `toml:"cache"`
	Store   StoreConfig   `toml:"store"`
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
}

// SolverConfig selects the scoring scheme and ParCons options.
type SolverConfig struct {
	// Scheme names a preset. Ignored when Before and Tied are both set.
	Scheme     string              `toml:"scheme" validate:"omitempty,oneof=unifying induced fagin"`
	Before     *rank.PenaltyVector `toml:"before"`
	Tied       *rank.PenaltyVector `toml:"tied"`
	ExactBound int                 `toml:"exact_bound" validate:"gte=1,lte=10000"`
	Workers    int                 `toml:"workers" validate:"gte=0,lte=256"`
}

// CacheConfig selects the consensus cache backend.
type CacheConfig struct {
	Backend   string        `toml:"backend" validate:"oneof=file redis null"`
	Dir       string        `toml:"dir"`
	RedisURL  string        `toml:"redis_url" validate:"omitempty,url"`
	RedisAddr string        `toml:"redis_addr" validate:"omitempty,hostname_port"`
	TTL       time.Duration `toml:"ttl" validate:"gte=0"`
}

// StoreConfig selects the run archive backend.
type StoreConfig struct {
	Backend       string `toml:"backend" validate:"oneof=file memory mongo"`
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase string `toml:"mongo_database"`
}

// ServerConfig configures `corank serve`.
type ServerConfig struct {
	Addr         string        `toml:"addr" validate:"required"`
	ReadTimeout  time.Duration `toml:"read_timeout" validate:"gte=0"`
	SolveTimeout time.Duration `toml:"solve_timeout" validate:"gte=0"`
	MaxBodyBytes int64         `toml:"max_body_bytes" validate:"gte=0"`
}

// LoggingConfig sets the default log level.
type LoggingConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Solver: SolverConfig{
			Scheme:     "unifying",
			ExactBound: parcons.DefaultExactBound,
		},
		Cache: CacheConfig{
			Backend: "file",
			TTL:     7 * 24 * time.Hour,
		},
		Store: StoreConfig{
			Backend: "file",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			SolveTimeout: 5 * time.Minute,
			MaxBodyBytes: 8 << 20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path on top of the defaults, applies the
// environment and validates the result. An empty path reads DefaultFile
// when it exists and skips the file otherwise.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config %s", path)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML text on top of the defaults and validates it.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that the scoring scheme resolves.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return errs.New(errs.ErrCodeInvalidConfig, "%s: failed %q (value %v)", f.Namespace(), f.Tag(), f.Value())
		}
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid config")
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" && c.Cache.RedisAddr == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "cache backend redis needs redis_url or redis_addr")
	}
	if _, err := c.Solver.ScoringScheme(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "solver")
	}
	return nil
}

// ScoringScheme resolves the configured scheme: explicit vectors when both
// are set, the named preset otherwise.
func (s SolverConfig) ScoringScheme() (rank.ScoringScheme, error) {
	switch {
	case s.Before != nil && s.Tied != nil:
		sc := rank.ScoringScheme{Before: *s.Before, Tied: *s.Tied}
		return sc, sc.Validate()
	case s.Before != nil || s.Tied != nil:
		return rank.ScoringScheme{}, errs.New(errs.ErrCodeInvalidScheme, "before and tied must be set together")
	case s.Scheme == "":
		return rank.Unifying, nil
	default:
		return rank.SchemeByName(s.Scheme)
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CORANK_SCHEME"); v != "" {
		cfg.Solver.Scheme = v
	}
	if v := os.Getenv("CORANK_EXACT_BOUND"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Solver.ExactBound = n
		}
	}
	if v := os.Getenv("CORANK_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Solver.Workers = n
		}
	}
	if v := os.Getenv("CORANK_CACHE"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("CORANK_REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := os.Getenv("CORANK_STORE"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("CORANK_MONGO_URI"); v != "" {
		cfg.Store.MongoURI = v
	}
	if v := os.Getenv("CORANK_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CORANK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// String renders the config as TOML.
func (c *Config) String() string {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return sb.String()
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Vodeneev/nbaprops/internal/pkg/enums"
)

type Config struct {
	Logging   LoggingConfig  `yaml:"logging" envPrefix:"LOG_"`
	Parser    ParserConfig   `yaml:"parser"`
	PropsDB   DatabaseConfig `yaml:"props_db" envPrefix:"PROPS_DB_"`
	PlayersDB DatabaseConfig `yaml:"players_db" envPrefix:"PLAYERS_DB_"`
	Redis     RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Telegram  TelegramConfig `yaml:"telegram" envPrefix:"TELEGRAM_"`
	Health    HealthConfig   `yaml:"health"`
	Schedule  string         `yaml:"schedule" env:"PROPS_SCHEDULE"`
}

type LoggingConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	File  string `yaml:"file" env:"FILE"` // empty = stdout only
}

type ParserConfig struct {
	// Source names the registered props source to run.
	Source      string            `yaml:"source" env:"PROPS_SOURCE"`
	Timeout     time.Duration     `yaml:"timeout"`
	UserAgent   string            `yaml:"user_agent"`
	Headers     map[string]string `yaml:"headers"`
	BettingPros BettingProsConfig `yaml:"bettingpros"`
	NBAStats    NBAStatsConfig    `yaml:"nba_stats"`
}

// ConsensusBook values for BettingProsConfig.ConsensusBook.
const (
	ConsensusExclude = "exclude"
	ConsensusInclude = "include"
)

type BettingProsConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key" env:"BETTINGPROS_API_KEY"`
	Sport    string `yaml:"sport"`
	Location string `yaml:"location"`
	Limit    int    `yaml:"limit"`
	MaxPages int    `yaml:"max_pages"`
	// Markets restricts the run to these market ids; empty = every known market.
	Markets []int `yaml:"markets"`
	// ConsensusBook decides what happens to the reserved book id 0: "exclude" or "include".
	ConsensusBook string `yaml:"consensus_book"`
}

type NBAStatsConfig struct {
	BaseURL    string `yaml:"base_url"`
	Season     string `yaml:"season"`
	SeasonType string `yaml:"season_type"`
	UseBrowser bool   `yaml:"use_browser"` // fetch through headless Chrome
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"` // sqlite3 | postgres
	DSN    string `yaml:"dsn" env:"DSN"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"` // empty = no run lock
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db"`
	LockKey  string        `yaml:"lock_key"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" env:"BOT_TOKEN"`
	ChatID   int64  `yaml:"chat_id" env:"CHAT_ID"`
}

type HealthConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// ApplyDefaults fills zero values with the values the ingestion scripts always used.
func (c *Config) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Parser.Source == "" {
		c.Parser.Source = "bettingpros"
	}
	if c.Parser.Timeout <= 0 {
		c.Parser.Timeout = 30 * time.Second
	}
	bp := &c.Parser.BettingPros
	if bp.BaseURL == "" {
		bp.BaseURL = "https://api.bettingpros.com"
	}
	if bp.Sport == "" {
		bp.Sport = "NBA"
	}
	if bp.Location == "" {
		bp.Location = "OH"
	}
	if bp.Limit <= 0 {
		bp.Limit = 100
	}
	if bp.MaxPages <= 0 {
		bp.MaxPages = 1
	}
	if bp.ConsensusBook == "" {
		bp.ConsensusBook = ConsensusExclude
	}
	ns := &c.Parser.NBAStats
	if ns.BaseURL == "" {
		ns.BaseURL = "https://stats.nba.com"
	}
	if ns.SeasonType == "" {
		ns.SeasonType = "Regular Season"
	}
	if c.PropsDB.Driver == "" {
		c.PropsDB.Driver = "sqlite3"
	}
	if c.PropsDB.DSN == "" {
		c.PropsDB.DSN = "nba_props.db"
	}
	if c.PlayersDB.Driver == "" {
		c.PlayersDB.Driver = "sqlite3"
	}
	if c.PlayersDB.DSN == "" {
		c.PlayersDB.DSN = "nba_game_logs.db"
	}
	if c.Redis.LockKey == "" {
		c.Redis.LockKey = "nbaprops:ingest:lock"
	}
	if c.Redis.LockTTL <= 0 {
		c.Redis.LockTTL = 10 * time.Minute
	}
	if c.Health.ReadHeaderTimeout <= 0 {
		c.Health.ReadHeaderTimeout = 5 * time.Second
	}
}

func (c *Config) Validate() error {
	if _, ok := enums.ParseSport(c.Parser.BettingPros.Sport); !ok {
		return fmt.Errorf("unsupported sport %q", c.Parser.BettingPros.Sport)
	}
	switch c.Parser.BettingPros.ConsensusBook {
	case ConsensusExclude, ConsensusInclude:
	default:
		return fmt.Errorf("parser.bettingpros.consensus_book must be %q or %q, got %q",
			ConsensusExclude, ConsensusInclude, c.Parser.BettingPros.ConsensusBook)
	}
	for _, db := range []DatabaseConfig{c.PropsDB, c.PlayersDB} {
		switch db.Driver {
		case "sqlite3", "postgres":
		default:
			return fmt.Errorf("unsupported database driver %q (use sqlite3 or postgres)", db.Driver)
		}
	}
	return nil
}

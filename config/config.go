package config

import (
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/questx-lab/raffle/pkg/enum"
)

type Configs struct {
	Env string `toml:"env"`

	Log              LogConfigs      `toml:"log"`
	Database         DatabaseConfigs `toml:"database"`
	Redis            RedisConfigs    `toml:"redis"`
	Forum            ForumConfigs    `toml:"forum"`
	Feed             FeedConfigs     `toml:"feed"`
	Chain            ChainConfigs    `toml:"chain"`
	Raffle           RaffleConfigs   `toml:"raffle"`
	Queue            QueueConfigs    `toml:"queue"`
	PrometheusServer ServerConfigs   `toml:"prometheus_server"`
}

type LogConfigs struct {
	Level string `toml:"level"`
}

type DatabaseConfigs struct {
	Driver   string `toml:"driver"` // mysql or sqlite
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	File     string `toml:"file"` // sqlite only
}

func (d *DatabaseConfigs) ConnectionString() string {
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%s", d.Host, d.Port)
	cfg.DBName = d.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type ForumConfigs struct {
	BaseURL     string `toml:"base_url"`
	Host        string `toml:"host"` // used to recognize topic links in entries
	User        string `toml:"user"`
	Password    string `toml:"password"`
	CaptchaCode string `toml:"captcha_code"`

	BotUserID               int64   `toml:"bot_user_id"`
	WhitelistedCreators     []int64 `toml:"whitelisted_creators"`
	BlacklistedParticipants []int64 `toml:"blacklisted_participants"`

	// Minimum spacing between any two forum requests.
	RequestInterval Duration `toml:"request_interval"`
	Timeout         Duration `toml:"timeout"`
}

type FeedConfigs struct {
	Endpoint string   `toml:"endpoint"`
	Lookback Duration `toml:"lookback"`
}

type ChainKind string

var (
	ChainMempool = enum.New(ChainKind("mempool"))
	ChainEth     = enum.New(ChainKind("eth"))
)

type ChainConfigs struct {
	Kind     ChainKind `toml:"kind"`
	Endpoint string    `toml:"endpoint"`
	// ExplorerURL is printed in posts so readers can check the block hash.
	ExplorerURL string `toml:"explorer_url"`
}

// StartSyntax is how the parameters of a new game are written.
type StartSyntax string

var (
	StartSyntaxInline    = enum.New(StartSyntax("inline"))
	StartSyntaxCodeBlock = enum.New(StartSyntax("codeblock"))
)

type RaffleConfigs struct {
	StartSyntax       StartSyntax `toml:"start_syntax"`
	Confirmations     int64       `toml:"confirmations"`
	IntakeInterval    Duration    `toml:"intake_interval"`
	LifecycleInterval Duration    `toml:"lifecycle_interval"`
}

type QueueConfigs struct {
	MinInterval     Duration `toml:"min_interval"`
	MaxAttempts     int      `toml:"max_attempts"`
	InitialInterval Duration `toml:"initial_interval"`
	MaxInterval     Duration `toml:"max_interval"`
}

// Duration decodes "30s"-style strings from TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Default returns the configuration used when a field is absent from the file.
func Default() Configs {
	return Configs{
		Env: "local",
		Log: LogConfigs{Level: "info"},
		Database: DatabaseConfigs{
			Driver: "sqlite",
			File:   "raffle.db",
		},
		Forum: ForumConfigs{
			BaseURL:         "https://bitcointalk.org",
			Host:            "bitcointalk.org",
			RequestInterval: Duration{time.Second},
			Timeout:         Duration{30 * time.Second},
		},
		Feed: FeedConfigs{
			Endpoint: "http://api.ninjastic.space",
			Lookback: Duration{24 * time.Hour},
		},
		Chain: ChainConfigs{
			Kind:        ChainMempool,
			Endpoint:    "https://mempool.space/api",
			ExplorerURL: "https://mempool.space/api/block-height",
		},
		Raffle: RaffleConfigs{
			StartSyntax:       StartSyntaxCodeBlock,
			Confirmations:     6,
			IntakeInterval:    Duration{30 * time.Second},
			LifecycleInterval: Duration{time.Minute},
		},
		Queue: QueueConfigs{
			MinInterval:     Duration{time.Second},
			MaxAttempts:     8,
			InitialInterval: Duration{2 * time.Second},
			MaxInterval:     Duration{5 * time.Minute},
		},
		PrometheusServer: ServerConfigs{Port: "9090"},
	}
}

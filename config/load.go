package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/questx-lab/raffle/pkg/enum"
)

// Load reads the TOML file at path over the defaults, then applies secrets
// from the environment (and from a .env file next to the binary, if any).
func Load(path string) (Configs, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return cfg, fmt.Errorf("decode %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func applyEnv(cfg *Configs) {
	overrides := map[string]*string{
		"FORUM_USER":     &cfg.Forum.User,
		"FORUM_PASSWORD": &cfg.Forum.Password,
		"FORUM_CAPTCHA":  &cfg.Forum.CaptchaCode,
		"DB_PASSWORD":    &cfg.Database.Password,
		"REDIS_ADDR":     &cfg.Redis.Addr,
	}

	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*field = v
		}
	}
}

func (cfg Configs) Validate() error {
	if _, err := enum.ToEnum[StartSyntax](string(cfg.Raffle.StartSyntax)); err != nil {
		return fmt.Errorf("raffle.start_syntax: %w, expected one of %v", err, enum.Values[StartSyntax]())
	}

	if _, err := enum.ToEnum[ChainKind](string(cfg.Chain.Kind)); err != nil {
		return fmt.Errorf("chain.kind: %w, expected one of %v", err, enum.Values[ChainKind]())
	}

	switch cfg.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("invalid database.driver %q", cfg.Database.Driver)
	}

	if cfg.Raffle.Confirmations <= 0 {
		return errors.New("raffle.confirmations must be positive")
	}

	if cfg.Queue.MaxAttempts <= 0 {
		return errors.New("queue.max_attempts must be positive")
	}

	return nil
}

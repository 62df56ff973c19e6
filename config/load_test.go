package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[forum]
bot_user_id = 42
whitelisted_creators = [1, 2]
request_interval = "3s"

[raffle]
start_syntax = "inline"
confirmations = 3
`), 0600))

	t.Setenv("FORUM_PASSWORD", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, int64(42), cfg.Forum.BotUserID)
	require.Equal(t, []int64{1, 2}, cfg.Forum.WhitelistedCreators)
	require.Equal(t, 3*time.Second, cfg.Forum.RequestInterval.Duration)
	require.Equal(t, "secret", cfg.Forum.Password)
	require.Equal(t, StartSyntaxInline, cfg.Raffle.StartSyntax)
	require.Equal(t, int64(3), cfg.Raffle.Confirmations)

	// Absent fields keep their defaults.
	require.Equal(t, ChainMempool, cfg.Chain.Kind)
	require.Equal(t, 8, cfg.Queue.MaxAttempts)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, Default().Raffle, cfg.Raffle)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(cfg *Configs)
	}{
		{name: "start syntax", modify: func(cfg *Configs) { cfg.Raffle.StartSyntax = "yaml" }},
		{name: "chain kind", modify: func(cfg *Configs) { cfg.Chain.Kind = "dogecoin" }},
		{name: "database driver", modify: func(cfg *Configs) { cfg.Database.Driver = "postgres" }},
		{name: "confirmations", modify: func(cfg *Configs) { cfg.Raffle.Confirmations = 0 }},
		{name: "max attempts", modify: func(cfg *Configs) { cfg.Queue.MaxAttempts = 0 }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseConfigs_ConnectionString(t *testing.T) {
	d := DatabaseConfigs{User: "raffle", Password: "p@ss", Host: "db", Port: "3306", Database: "raffle"}

	dsn := d.ConnectionString()
	require.Contains(t, dsn, "raffle:p@ss@tcp(db:3306)/raffle?")
	require.Contains(t, dsn, "parseTime=true")
	require.Contains(t, dsn, "charset=utf8mb4")
}

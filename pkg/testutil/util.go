package testutil

import (
	"context"
	"io"
	"time"

	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/logger"
	"github.com/questx-lab/raffle/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	BotUserID   = int64(999)
	AdminUserID = int64(100)
)

func MockConfigs() config.Configs {
	cfg := config.Default()
	cfg.Forum.BotUserID = BotUserID
	cfg.Forum.BlacklistedParticipants = []int64{666}
	cfg.Raffle.StartSyntax = config.StartSyntaxCodeBlock
	cfg.Queue.MinInterval = config.Duration{Duration: time.Millisecond}
	cfg.Queue.InitialInterval = config.Duration{Duration: time.Millisecond}
	cfg.Queue.MaxInterval = config.Duration{Duration: 5 * time.Millisecond}
	cfg.Queue.MaxAttempts = 3
	return cfg
}

// MockContext returns a context holding an in-memory sqlite database with all
// tables migrated, a silent logger and test configs.
func MockContext() context.Context {
	return MockContextWithConfigs(MockConfigs())
}

func MockContextWithConfigs(cfg config.Configs) context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		panic(err)
	}

	// Every new connection to ":memory:" is a new empty database.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLoggerWithOutput(logger.SILENCE, io.Discard))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

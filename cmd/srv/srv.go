package main

import (
	"context"
	"time"

	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/migration"
	"github.com/questx-lab/raffle/pkg/logger"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/questx-lab/raffle/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	redisClient xredis.Client

	gameRepo       repository.GameRepository
	entryRepo      repository.EntryRepository
	cursorRepo     repository.CursorRepository
	deadLetterRepo repository.DeadLetterRepository
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.Log.Level)))
	return nil
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(), // data source name
			DefaultStringSize:         256,                    // default size for string fields
			DisableDatetimePrecision:  true,                   // disable datetime precision, which not supported before MySQL 5.6
			DontSupportRenameIndex:    true,                   // drop & create when rename index, rename index not supported before MySQL 5.7, MariaDB
			DontSupportRenameColumn:   true,                   // `change` when rename column, rename column not supported before MySQL 8, MariaDB
			SkipInitializeWithVersion: false,                  // auto configure based on currently MySQL version
		})
	default:
		dialector = sqlite.Open(cfg.File)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		panic(err)
	}

	if cfg.Driver != "mysql" {
		// sqlite allows a single writer.
		sqlDB, err := db.DB()
		if err != nil {
			panic(err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := migration.Migrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	addr := xcontext.Configs(s.ctx).Redis.Addr
	if addr == "" {
		xcontext.Logger(s.ctx).Warnf("No redis address, the post cursor and dead letters are kept in memory")
		s.redisClient = xredis.NewMemoryClient()
		return
	}

	var err error
	s.redisClient, err = xredis.NewClient(s.ctx, addr)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.gameRepo = repository.NewGameRepository()
	s.entryRepo = repository.NewEntryRepository()
	s.cursorRepo = repository.NewCursorRepository(s.redisClient)
	s.deadLetterRepo = repository.NewDeadLetterRepository(s.redisClient)
}

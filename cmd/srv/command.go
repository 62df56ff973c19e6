package main

import (
	"context"

	"github.com/urfave/cli/v2"
)

// loadApp creates an app with sane defaults.
func (s *srv) loadApp() {
	s.ctx = context.Background()
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "raffle"
	s.app.Usage = "Forum raffle bot with draws bound to a future block hash"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   "config.toml",
			Usage:   "Path of the TOML configuration file",
			EnvVars: []string{"RAFFLE_CONFIG"},
		},
	}
	s.app.Before = s.loadConfig
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startBot,
			Name:        "bot",
			Usage:       "Start the raffle bot",
			Category:    "Bot",
			Description: `Polls the posts feed for commands and moves games through their stages.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database",
			Category:    "Database",
			Description: `Applies the schema migrations and exits.`,
		},
		{
			Action:    s.startVerify,
			Name:      "verify",
			Usage:     "Recompute the draw of a game",
			ArgsUsage: "--game <id>",
			Flags: []cli.Flag{
				&cli.Int64Flag{
					Name:     "game",
					Usage:    "Public number of the game",
					Required: true,
				},
			},
			Category:    "Bot",
			Description: `Recomputes tickets and winners of a game from its seed and block hash and compares them with the stored result.`,
		},
		{
			Action:      s.startDeadLetters,
			Name:        "dead-letters",
			Usage:       "List forum requests which ran out of retries",
			Category:    "Bot",
			Description: `Prints the queue tasks which were dead-lettered, oldest first.`,
		},
	}
}

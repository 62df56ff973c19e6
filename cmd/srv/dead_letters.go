package main

import (
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startDeadLetters(*cli.Context) error {
	s.loadRedisClient()
	s.loadRepos()

	letters, err := s.deadLetterRepo.GetAll(s.ctx)
	if err != nil {
		return err
	}

	for _, l := range letters {
		xcontext.Logger(s.ctx).Infof("%s %s (%s) after %d attempts: %s",
			l.FailedAt.Format("2006-01-02 15:04:05"), l.Name, l.ID, l.Attempts, l.Error)
	}

	xcontext.Logger(s.ctx).Infof("%d dead letters", len(letters))
	return nil
}

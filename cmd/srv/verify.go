package main

import (
	"fmt"

	"github.com/questx-lab/raffle/internal/domain/draw"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/chain"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slices"
)

func (s *srv) startVerify(cctx *cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()

	game, err := s.gameRepo.GetByID(s.ctx, cctx.Int64("game"))
	if err != nil {
		return fmt.Errorf("cannot get game #%d: %w", cctx.Int64("game"), err)
	}

	if game.Stage() == entity.GameStageOpen {
		return fmt.Errorf("game #%d is still open", game.ID)
	}

	blockHash := game.BlockHash
	if blockHash == "" {
		chainSource, err := chain.New(s.ctx, xcontext.Configs(s.ctx).Chain)
		if err != nil {
			return err
		}

		blockHash, err = chainSource.BlockHash(s.ctx, game.BlockHeight)
		if err != nil {
			return fmt.Errorf("block %d is not available yet: %w", game.BlockHeight, err)
		}
	}

	entries, err := s.entryRepo.GetByGameID(s.ctx, game.ID)
	if err != nil {
		return err
	}

	result, err := draw.Draw(game.Seed, blockHash, draw.FromEntities(entries), game.NumberWinners)
	if err != nil {
		return err
	}

	authors := []string{}
	for _, w := range result.Winners {
		authors = append(authors, w.Author)
	}

	log := xcontext.Logger(s.ctx)
	log.Infof("Game #%d: seed %s, block %d, hash %s", game.ID, game.Seed, game.BlockHeight, blockHash)
	log.Infof("Game #%d: %d tickets, drawn %v, winners %v", game.ID, result.TotalTickets, result.Tickets, authors)

	if game.Stage() != entity.GameStageFinalized {
		return nil
	}

	if !slices.Equal(result.Tickets, []int(game.TicketsDrawn)) || !slices.Equal(authors, []string(game.WinnerAuthors)) {
		return fmt.Errorf("game #%d does not match, stored tickets %v, winners %v",
			game.ID, game.TicketsDrawn, game.WinnerAuthors)
	}

	log.Infof("Game #%d matches the published result", game.ID)
	return nil
}

package entity

import "time"

type GameStage string

const (
	GameStageOpen      GameStage = "open"
	GameStageClosed    GameStage = "closed"
	GameStageFinalized GameStage = "finalized"
)

// Game is one raffle bound to one forum thread. ID is the public game number.
type Game struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time
	UpdatedAt time.Time

	GameAdmin int64 `gorm:"not null"`
	TopicID   int64 `gorm:"not null;uniqueIndex"`

	Deadline      time.Time `gorm:"not null"`
	NumberWinners int       `gorm:"not null"`
	Seed          string    `gorm:"not null;size:64"`

	PostID      int64 `gorm:"not null;default:0"`
	PostContent string

	BlockHeight    int64 `gorm:"not null;default:0"`
	OverviewPostID int64 `gorm:"not null;default:0"`
	WinnerPostID   int64 `gorm:"not null;default:0"`
	BlockHash      string

	TicketsDrawn   Array[int]    `gorm:"type:text"`
	WinnerEntryIDs Array[int64]  `gorm:"type:text"`
	WinnerAuthors  Array[string] `gorm:"type:text"`
}

// Finished reports whether the deadline has passed at now.
func (g *Game) Finished(now time.Time) bool {
	return !now.Before(g.Deadline)
}

func (g *Game) Stage() GameStage {
	switch {
	case g.WinnerPostID != 0:
		return GameStageFinalized
	case g.OverviewPostID != 0:
		return GameStageClosed
	default:
		return GameStageOpen
	}
}

package entity

import "time"

// Entry is one thread submitted by one participant into one game. Entries
// are never updated; their ID order is the ticket order of the draw.
type Entry struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time

	GameID    int64  `gorm:"not null;index"`
	PostID    int64  `gorm:"not null"`
	TopicID   int64  `gorm:"not null;uniqueIndex"`
	Author    string `gorm:"not null"`
	AuthorUID int64  `gorm:"not null"`
}

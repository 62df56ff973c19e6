package forum

import "time"

// Post is a forum post as delivered by the posts feed. Content is the post
// body in HTML.
type Post struct {
	PostID    int64  `json:"post_id" mapstructure:"post_id"`
	TopicID   int64  `json:"topic_id" mapstructure:"topic_id"`
	Author    string `json:"author" mapstructure:"author"`
	AuthorUID int64  `json:"author_uid" mapstructure:"author_uid"`
	Content   string `json:"content" mapstructure:"content"`
}

// Topic is what can be scraped from the first post of a thread.
type Topic struct {
	TopicID   int64
	AuthorUID int64
	CreatedAt time.Time
	Title     string
	Merits    int
}

type PostRequest struct {
	TopicID int64
	Subject string
	Message string
}

type EditRequest struct {
	PostID  int64
	TopicID int64
	Subject string
	Message string
}

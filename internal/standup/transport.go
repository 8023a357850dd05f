package standup

import (
	"time"
)

// Target is the destination that receives standup traffic for one day:
// the configured standup channel itself, or that day's thread under it.
type Target struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Member is a resolved roster entry.
type Member struct {
	ID          string
	Username    string
	DisplayName string
}

// Mention returns the Discord mention string for the member.
func (m Member) Mention() string {
	return "<@" + m.ID + ">"
}

// Message is a transport-neutral view of a channel or thread message.
type Message struct {
	ID        string
	AuthorID  string
	Author    string
	Content   string
	CreatedAt time.Time
	Bot       bool
	FromSelf  bool
}

// HistoryQuery bounds a history fetch. Zero time values mean unbounded.
type HistoryQuery struct {
	Limit  int
	After  time.Time
	Before time.Time
}

// Transport is the chat surface the standup engine talks to. internal/bot
// implements it with a Discord session; tests implement it with fakes.
type Transport interface {
	SendMessage(channelID, content string) error
	CreateThread(channelID, name string) (*Target, error)
	AddReaction(channelID, messageID, emoji string) error
	Messages(channelID string, q HistoryQuery) ([]Message, error)
	ActiveThreads(parentID string) ([]Target, error)
	ArchivedThreads(parentID string, limit int) ([]Target, error)
	Member(userID string) (*Member, error)
}

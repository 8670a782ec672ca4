// Package domain contains core domain types for the Clarity client.
package domain

import (
	"time"
)

// EntryTag classifies where a journal entry came from.
type EntryTag string

const (
	TagJournal      EntryTag = "Journal"
	TagConversation EntryTag = "Conversation"
)

// Valid reports whether t is a known tag.
func (t EntryTag) Valid() bool {
	return t == TagJournal || t == TagConversation
}

// JournalEntry is a single free-text journal entry.
// Entries are never mutated after creation except for Tag.
type JournalEntry struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Tag       EntryTag  `json:"tag"`
}

// DateLayout is the calendar-date format used as the mood natural key.
const DateLayout = "2006-01-02"

const (
	MinMood = 1
	MaxMood = 10
)

// MoodEntry is a mood sample. Date is a natural key: one entry per day.
type MoodEntry struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Mood int    `json:"mood"`
	Note string `json:"note,omitempty"`
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one bubble of the chat transcript.
type ChatMessage struct {
	ID   string   `json:"id"`
	Role Role     `json:"role"`
	Text string   `json:"text"`
	Time string   `json:"time"`
	Tag  EntryTag `json:"tag,omitempty"`
}

package state

import (
	"slices"
	"strings"

	"github.com/SelJom/ClarityAI/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Chat returns the transcript in display order.
func (s *JournalStore) Chat() []domain.ChatMessage { return s.chat.Get() }

// SubscribeChat registers fn for every transcript change, including each
// streamed token.
func (s *JournalStore) SubscribeChat(fn func([]domain.ChatMessage)) func() {
	return s.chat.Subscribe(fn)
}

// SetChat replaces the transcript. If the in-flight message is not part of
// msgs, no message is in flight afterwards.
func (s *JournalStore) SetChat(msgs []domain.ChatMessage) {
	msgs = slices.Clone(nonNil(msgs))
	s.chat.Update(func([]domain.ChatMessage) []domain.ChatMessage {
		s.inflightMu.Lock()
		defer s.inflightMu.Unlock()
		if s.inflight != "" && !slices.ContainsFunc(msgs, func(m domain.ChatMessage) bool { return m.ID == s.inflight }) {
			s.inflight = ""
		}
		return msgs
	})
}

// ClearChat empties the transcript and drops any in-flight message.
func (s *JournalStore) ClearChat() {
	s.SetChat(nil)
}

// BeginTurn appends a user message and an empty assistant placeholder in a
// single publish, so no subscriber sees one without the other. The
// placeholder becomes the in-flight message; any previous one is sealed.
func (s *JournalStore) BeginTurn(text string) (user, assistant domain.ChatMessage) {
	ts := s.now().UTC().Format(timeLayout)
	user = domain.ChatMessage{ID: s.newID(), Role: domain.RoleUser, Text: text, Time: ts}
	assistant = domain.ChatMessage{ID: s.newID(), Role: domain.RoleAssistant, Text: "", Time: ts}

	s.chat.Update(func(cur []domain.ChatMessage) []domain.ChatMessage {
		s.inflightMu.Lock()
		s.inflight = assistant.ID
		s.inflightMu.Unlock()
		return append(slices.Clip(cur), user, assistant)
	})
	return user, assistant
}

// AppendToken appends token to the in-flight assistant message. When no
// message is in flight a new assistant message holding the token is
// appended and becomes in flight; created reports that case. Sealed
// messages are never modified.
func (s *JournalStore) AppendToken(token string) (msg domain.ChatMessage, created bool) {
	s.chat.Update(func(cur []domain.ChatMessage) []domain.ChatMessage {
		s.inflightMu.Lock()
		defer s.inflightMu.Unlock()

		next := slices.Clone(cur)
		if s.inflight != "" {
			if i := slices.IndexFunc(next, func(m domain.ChatMessage) bool { return m.ID == s.inflight }); i >= 0 {
				next[i].Text += token
				msg = next[i]
				return next
			}
		}

		created = true
		msg = domain.ChatMessage{
			ID:   s.newID(),
			Role: domain.RoleAssistant,
			Text: token,
			Time: s.now().UTC().Format(timeLayout),
		}
		s.inflight = msg.ID
		return append(next, msg)
	})
	return msg, created
}

// CompleteInFlight seals the in-flight message and returns it. ok is false
// when nothing was in flight.
func (s *JournalStore) CompleteInFlight() (msg domain.ChatMessage, ok bool) {
	s.inflightMu.Lock()
	id := s.inflight
	s.inflight = ""
	s.inflightMu.Unlock()

	return s.message(id)
}

// InFlight returns the message currently receiving tokens.
func (s *JournalStore) InFlight() (domain.ChatMessage, bool) {
	s.inflightMu.Lock()
	id := s.inflight
	s.inflightMu.Unlock()

	return s.message(id)
}

func (s *JournalStore) message(id string) (domain.ChatMessage, bool) {
	if id == "" {
		return domain.ChatMessage{}, false
	}
	chat := s.chat.Get()
	if i := slices.IndexFunc(chat, func(m domain.ChatMessage) bool { return m.ID == id }); i >= 0 {
		return chat[i], true
	}
	return domain.ChatMessage{}, false
}

// ArchiveChat stores the transcript as a Conversation journal entry and
// clears the chat. Empty assistant placeholders are left out. The snapshot
// and the clear are one chat update, so a token streamed concurrently either
// makes it into the archive or starts a fresh message.
func (s *JournalStore) ArchiveChat() (domain.JournalEntry, error) {
	var text string
	s.chat.UpdateIf(func(cur []domain.ChatMessage) ([]domain.ChatMessage, bool) {
		text = transcript(cur)
		if text == "" {
			return cur, false
		}
		s.inflightMu.Lock()
		s.inflight = ""
		s.inflightMu.Unlock()
		return []domain.ChatMessage{}, true
	})
	if text == "" {
		return domain.JournalEntry{}, ErrEmptyEntry
	}

	entry, err := s.AddJournalTagged(text, domain.TagConversation)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	s.logger.Info("chat archived", "entry_id", entry.ID)
	return entry, nil
}

func transcript(msgs []domain.ChatMessage) string {
	var b strings.Builder
	for _, m := range msgs {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		if m.Role == domain.RoleUser {
			b.WriteString("You: ")
		} else {
			b.WriteString("Clarity: ")
		}
		b.WriteString(text)
	}
	return b.String()
}

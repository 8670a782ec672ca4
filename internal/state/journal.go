package state

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SelJom/ClarityAI/internal/domain"
	"github.com/SelJom/ClarityAI/internal/store"
)

// JournalStore owns the journal entries, mood samples and chat transcript.
// The three collections are persisted under separate keys; a stale sibling
// after a crash does not break any invariant because no collection refers
// to another.
type JournalStore struct {
	journal *Value[[]domain.JournalEntry]
	moods   *Value[[]domain.MoodEntry]
	chat    *Value[[]domain.ChatMessage]

	// inflight is the id of the assistant message receiving streamed tokens.
	// It is only changed from inside chat updates and is never persisted, so
	// a restart always comes back with every message sealed.
	inflightMu sync.Mutex
	inflight   string

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// NewJournalStore restores the three collections from s. A nil s yields an
// in-memory store.
func NewJournalStore(ctx context.Context, s store.Store, logger *slog.Logger) *JournalStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &JournalStore{
		journal: NewPersisted(ctx, s, JournalKey, []domain.JournalEntry{}, nonNil[domain.JournalEntry]),
		moods:   NewPersisted(ctx, s, MoodsKey, []domain.MoodEntry{}, dedupeMoods),
		chat:    NewPersisted(ctx, s, ChatKey, []domain.ChatMessage{}, nonNil[domain.ChatMessage]),
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  logger,
	}
}

func nonNil[E any](s []E) []E {
	if s == nil {
		return []E{}
	}
	return s
}

// dedupeMoods keeps one sample per date; later samples win and take the
// position of the first one.
func dedupeMoods(moods []domain.MoodEntry) []domain.MoodEntry {
	out := make([]domain.MoodEntry, 0, len(moods))
	index := make(map[string]int, len(moods))
	for _, m := range moods {
		if i, ok := index[m.Date]; ok {
			out[i] = m
			continue
		}
		index[m.Date] = len(out)
		out = append(out, m)
	}
	return out
}

// --- Journal ---

// Journal returns the entries in insertion order.
func (s *JournalStore) Journal() []domain.JournalEntry { return s.journal.Get() }

// SubscribeJournal registers fn for every journal change.
func (s *JournalStore) SubscribeJournal(fn func([]domain.JournalEntry)) func() {
	return s.journal.Subscribe(fn)
}

// AddJournal appends a Journal-tagged entry.
func (s *JournalStore) AddJournal(text string) (domain.JournalEntry, error) {
	return s.AddJournalTagged(text, domain.TagJournal)
}

// AddJournalTagged appends an entry with the given tag.
func (s *JournalStore) AddJournalTagged(text string, tag domain.EntryTag) (domain.JournalEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.JournalEntry{}, ErrEmptyEntry
	}
	if !tag.Valid() {
		return domain.JournalEntry{}, ErrInvalidTag
	}

	entry := domain.JournalEntry{
		ID:        s.newID(),
		Content:   text,
		CreatedAt: s.now().UTC(),
		Tag:       tag,
	}
	s.journal.Update(func(cur []domain.JournalEntry) []domain.JournalEntry {
		return append(slices.Clip(cur), entry)
	})
	return entry, nil
}

// RemoveJournal deletes the entry with id.
func (s *JournalStore) RemoveJournal(id string) error {
	_, ok := s.journal.UpdateIf(func(cur []domain.JournalEntry) ([]domain.JournalEntry, bool) {
		i := slices.IndexFunc(cur, func(e domain.JournalEntry) bool { return e.ID == id })
		if i < 0 {
			return cur, false
		}
		return slices.Delete(slices.Clone(cur), i, i+1), true
	})
	if !ok {
		return ErrNotFound
	}
	return nil
}

// SetJournalTag retags an entry. The tag is the only mutable field.
func (s *JournalStore) SetJournalTag(id string, tag domain.EntryTag) (domain.JournalEntry, error) {
	if !tag.Valid() {
		return domain.JournalEntry{}, ErrInvalidTag
	}
	var updated domain.JournalEntry
	_, ok := s.journal.UpdateIf(func(cur []domain.JournalEntry) ([]domain.JournalEntry, bool) {
		i := slices.IndexFunc(cur, func(e domain.JournalEntry) bool { return e.ID == id })
		if i < 0 {
			return cur, false
		}
		next := slices.Clone(cur)
		next[i].Tag = tag
		updated = next[i]
		return next, true
	})
	if !ok {
		return domain.JournalEntry{}, ErrNotFound
	}
	return updated, nil
}

// ClearJournal removes every entry.
func (s *JournalStore) ClearJournal() {
	s.journal.Set([]domain.JournalEntry{})
}

// MergeJournal appends entries whose ids are not present locally, oldest
// first, and returns how many were added. Local entries are never
// overwritten.
func (s *JournalStore) MergeJournal(entries []domain.JournalEntry) int {
	entries = slices.Clone(entries)
	slices.SortStableFunc(entries, func(a, b domain.JournalEntry) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	added := 0
	s.journal.UpdateIf(func(cur []domain.JournalEntry) ([]domain.JournalEntry, bool) {
		seen := make(map[string]bool, len(cur))
		for _, e := range cur {
			seen[e.ID] = true
		}
		next := slices.Clip(cur)
		for _, e := range entries {
			if e.ID == "" || seen[e.ID] || strings.TrimSpace(e.Content) == "" {
				continue
			}
			if !e.Tag.Valid() {
				e.Tag = domain.TagJournal
			}
			seen[e.ID] = true
			next = append(next, e)
			added++
		}
		return next, added > 0
	})
	return added
}

// --- Moods ---

// Moods returns the mood samples, one per date.
func (s *JournalStore) Moods() []domain.MoodEntry { return s.moods.Get() }

// SubscribeMoods registers fn for every mood change.
func (s *JournalStore) SubscribeMoods(fn func([]domain.MoodEntry)) func() {
	return s.moods.Subscribe(fn)
}

// AddMood records a sample for today's UTC date.
func (s *JournalStore) AddMood(mood int, note string) (domain.MoodEntry, error) {
	return s.AddMoodOn(s.now().UTC().Format(domain.DateLayout), mood, note)
}

// AddMoodOn upserts the sample for date. An existing sample keeps its id and
// has its mood and note overwritten.
func (s *JournalStore) AddMoodOn(date string, mood int, note string) (domain.MoodEntry, error) {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return domain.MoodEntry{}, ErrInvalidDate
	}
	if mood < domain.MinMood || mood > domain.MaxMood {
		return domain.MoodEntry{}, ErrMoodOutOfRange
	}

	var result domain.MoodEntry
	s.moods.Update(func(cur []domain.MoodEntry) []domain.MoodEntry {
		next := slices.Clone(cur)
		if i := slices.IndexFunc(next, func(m domain.MoodEntry) bool { return m.Date == date }); i >= 0 {
			next[i].Mood = mood
			next[i].Note = note
			result = next[i]
			return next
		}
		result = domain.MoodEntry{ID: s.newID(), Date: date, Mood: mood, Note: note}
		return append(next, result)
	})
	return result, nil
}

// MoodOn returns the sample recorded for date.
func (s *JournalStore) MoodOn(date string) (domain.MoodEntry, bool) {
	moods := s.moods.Get()
	if i := slices.IndexFunc(moods, func(m domain.MoodEntry) bool { return m.Date == date }); i >= 0 {
		return moods[i], true
	}
	return domain.MoodEntry{}, false
}

// ClearMoods removes every sample.
func (s *JournalStore) ClearMoods() {
	s.moods.Set([]domain.MoodEntry{})
}

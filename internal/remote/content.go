package remote

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/SelJom/ClarityAI/internal/domain"
)

// remoteIDPrefix namespaces journal ids that originate on the server so they
// never collide with client-generated ids.
const remoteIDPrefix = "remote-"

// Insight is a generated observation about a journal.
type Insight struct {
	ID             string             `json:"id"`
	JournalID      string             `json:"journalId"`
	Summary        string             `json:"summary"`
	SentimentScore float64            `json:"sentimentScore"`
	EmotionTags    map[string]float64 `json:"emotionTags,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// NewInsight is the body of POST /insights.
type NewInsight struct {
	JournalID      int64              `json:"journal_id"`
	JournalPageID  *int64             `json:"journal_page_id,omitempty"`
	Summary        string             `json:"summary"`
	SentimentScore float64            `json:"sentiment_score"`
	EmotionTags    map[string]float64 `json:"emotion_tags"`
}

// ContentService wraps the content (agent) service.
type ContentService struct {
	client *Client
}

// NewContentService creates a ContentService on c.
func NewContentService(c *Client) *ContentService {
	return &ContentService{client: c}
}

// Configured reports whether the service has a base URL.
func (s *ContentService) Configured() bool {
	return s != nil && s.client.Configured()
}

// JournalHistory fetches the server-side journal of userID mapped to local
// entries. Server ids are prefixed so they never collide with local ids.
func (s *ContentService) JournalHistory(ctx context.Context, userID string) ([]domain.JournalEntry, error) {
	body, err := s.client.Get(ctx, "/v1/journal/"+url.PathEscape(userID))
	if err != nil {
		return nil, err
	}

	var entries []domain.JournalEntry
	gjson.GetBytes(body, "entries").ForEach(func(_, e gjson.Result) bool {
		id := e.Get("id").String()
		content := e.Get("content").String()
		if id == "" || content == "" {
			return true
		}
		entries = append(entries, domain.JournalEntry{
			ID:        remoteIDPrefix + id,
			Content:   content,
			CreatedAt: parseTime(e.Get("created_at").String()),
			Tag:       domain.TagJournal,
		})
		return true
	})
	return entries, nil
}

// Insights lists the insights of a journal. Both a bare array and an
// {"insights": [...]} envelope are accepted.
func (s *ContentService) Insights(ctx context.Context, journalID string) ([]Insight, error) {
	body, err := s.client.Get(ctx, "/journals/"+url.PathEscape(journalID)+"/insights")
	if err != nil {
		return nil, err
	}

	list := gjson.ParseBytes(body)
	if !list.IsArray() {
		list = list.Get("insights")
	}
	insights := []Insight{}
	list.ForEach(func(_, r gjson.Result) bool {
		insights = append(insights, insightFrom(r))
		return true
	})
	return insights, nil
}

// CreateInsight stores a new insight and returns the server's copy.
func (s *ContentService) CreateInsight(ctx context.Context, in NewInsight) (Insight, error) {
	if in.EmotionTags == nil {
		in.EmotionTags = map[string]float64{}
	}
	body, err := s.client.Post(ctx, "/insights", in)
	if err != nil {
		return Insight{}, err
	}
	out := insightFrom(gjson.ParseBytes(body))
	if out.Summary == "" {
		out.Summary = in.Summary
	}
	if out.JournalID == "" {
		out.JournalID = fmt.Sprint(in.JournalID)
	}
	return out, nil
}

func insightFrom(r gjson.Result) Insight {
	in := Insight{
		ID:             r.Get("id").String(),
		JournalID:      r.Get("journal_id").String(),
		Summary:        r.Get("summary").String(),
		SentimentScore: r.Get("sentiment_score").Float(),
		CreatedAt:      parseTime(r.Get("created_at").String()),
	}
	if tags := r.Get("emotion_tags"); tags.IsObject() {
		in.EmotionTags = map[string]float64{}
		tags.ForEach(func(k, v gjson.Result) bool {
			in.EmotionTags[k.String()] = v.Float()
			return true
		})
	}
	return in
}

// Server timestamps may omit the zone; those are taken as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

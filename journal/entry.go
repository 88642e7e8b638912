package journal

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-journal-client/internal/errors"
)

// Sentiment is the mood attached to an entry.
type Sentiment string

const (
	Happy   Sentiment = "HAPPY"
	Sad     Sentiment = "SAD"
	Angry   Sentiment = "ANGRY"
	Neutral Sentiment = "NEUTRAL"
	Anxious Sentiment = "ANXIOUS"

	DefaultSentiment = Happy
)

var sentimentLabels = map[Sentiment]string{
	Happy:   "Joyful",
	Sad:     "Melancholy",
	Angry:   "Frustrated",
	Neutral: "Contemplative",
	Anxious: "Apprehensive",
}

// Sentiments lists the selectable moods in display order.
func Sentiments() []Sentiment {
	return []Sentiment{Happy, Sad, Angry, Neutral, Anxious}
}

// ParseSentiment accepts a sentiment name or its label, case-insensitively. Blank means default.
func ParseSentiment(s string) (Sentiment, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultSentiment, nil
	}
	for _, candidate := range Sentiments() {
		if strings.EqualFold(s, string(candidate)) || strings.EqualFold(s, sentimentLabels[candidate]) {
			return candidate, nil
		}
	}
	return "", errors.Wrapf(errors.ErrInvalidInput, "unknown sentiment %q", s)
}

// Label is the human friendly name for the sentiment.
func (s Sentiment) Label() string {
	if l, ok := sentimentLabels[s]; ok {
		return l
	}
	return string(s)
}

// EntryID identifies an entry. The backend may encode it as a plain string, a number, or
// a document id object such as {"$oid": "..."}.
type EntryID string

func (id *EntryID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*id = ""
		return nil
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = EntryID(s)
		return nil
	case strings.HasPrefix(raw, "{"):
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		for _, key := range []string{"$oid", "_id", "id"} {
			if v, ok := obj[key]; ok {
				return id.UnmarshalJSON(v)
			}
		}
		return errors.Wrapf(errors.ErrInvalidEntryID, "unrecognised id object %s", raw)
	default:
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return errors.Wrapf(errors.ErrInvalidEntryID, "unrecognised id %s", raw)
		}
		*id = EntryID(raw)
		return nil
	}
}

func (id EntryID) String() string {
	return string(id)
}

// Entry is a journal entry as returned by the backend.
type Entry struct {
	ID        EntryID   `json:"_id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
	Date      string    `json:"date,omitempty"` // Backend formatted; shown as received
}

// UnmarshalJSON also accepts "id" when "_id" is absent.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type alias Entry
	aux := struct {
		*alias
		AltID EntryID `json:"id,omitempty"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = aux.AltID
	}
	return nil
}

// Draft is the writable part of an entry.
type Draft struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Sentiment Sentiment `json:"sentiment"`
}

// DraftOf returns the editable fields of e.
func DraftOf(e Entry) Draft {
	return Draft{Title: e.Title, Content: e.Content, Sentiment: e.Sentiment}
}

func (d Draft) normalised() (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" || strings.TrimSpace(d.Content) == "" {
		return d, errors.ErrEmptyEntry
	}
	if d.Sentiment == "" {
		d.Sentiment = DefaultSentiment
	}
	return d, nil
}

package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// SentinelDate is written for documents whose publish time is missing or unparseable
const SentinelDate = "0000-00-00"

const dateLayout = "2006-01-02"

// Document is a corpus entry. Aliases are corpus ids merged into this one
// during de-duplication; DocID plus Aliases form one identity.
type Document struct {
	DocID       int64       `json:"doc_id"`
	Title       string      `json:"title"`
	Abstract    []string    `json:"abstract"`
	Journal     string      `json:"journal,omitempty"`
	PublishTime PublishTime `json:"publish_time"`
	Aliases     []int64     `json:"aliases,omitempty"`
}

// Identities returns the corpus id followed by the aliases in stored order
func (d *Document) Identities() []int64 {
	ids := make([]int64, 0, len(d.Aliases)+1)
	ids = append(ids, d.DocID)
	return append(ids, d.Aliases...)
}

// PublishTime is a publication date that may be unknown
type PublishTime struct {
	t     time.Time
	valid bool
}

// NewPublishTime wraps a known date
func NewPublishTime(t time.Time) PublishTime {
	return PublishTime{t: t.UTC().Truncate(24 * time.Hour), valid: true}
}

// ParsePublishTime accepts the date shapes seen in corpus dumps. Anything it
// cannot read yields the sentinel.
func ParsePublishTime(s string) PublishTime {
	s = strings.TrimSpace(s)
	if s == "" || s == SentinelDate {
		return PublishTime{}
	}
	for _, layout := range []string{dateLayout, time.RFC3339, "2006-01-02 15:04:05", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewPublishTime(t)
		}
	}
	return PublishTime{}
}

// Valid reports whether the date is known
func (p PublishTime) Valid() bool { return p.valid }

// Time returns the date; the zero time when unknown
func (p PublishTime) Time() time.Time { return p.t }

// String renders YYYY-MM-DD or the sentinel
func (p PublishTime) String() string {
	if !p.valid {
		return SentinelDate
	}
	return p.t.Format(dateLayout)
}

// Before orders unknown dates first
func (p PublishTime) Before(o PublishTime) bool {
	switch {
	case !p.valid && !o.valid:
		return false
	case !p.valid:
		return true
	case !o.valid:
		return false
	}
	return p.t.Before(o.t)
}

// MarshalJSON implements json.Marshaler
func (p PublishTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts a date string, epoch milliseconds, or null
func (p *PublishTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = PublishTime{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ParsePublishTime(s)
		return nil
	}
	// pandas writes datetimes as epoch milliseconds
	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*p = PublishTime{}
		return nil
	}
	*p = NewPublishTime(time.UnixMilli(int64(ms)))
	return nil
}

package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Prayer is one of the five daily prayers. The set is closed.
type Prayer int

const (
	Fajr Prayer = iota
	Dhuhr
	Asr
	Maghrib
	Isha

	PrayerCount = 5
)

var prayerNames = [PrayerCount]string{"fajr", "dhuhr", "asr", "maghrib", "isha"}

// AllPrayers lists the prayers in canonical order.
var AllPrayers = [PrayerCount]Prayer{Fajr, Dhuhr, Asr, Maghrib, Isha}

const dateLayout = "2006-01-02"

type (
	// Prayers holds one completion flag per prayer, indexed by Prayer.
	Prayers [PrayerCount]bool

	// EnteredNumber is a numeric field exactly as the user typed it.
	// It is interpreted with ParseAmountOrZero or ParsePagesOrZero.
	EnteredNumber string

	DailyRecord struct {
		ID             string        `json:"id"`
		Date           string        `json:"date"`
		RiseTime       string        `json:"rise"`
		SleepTime      string        `json:"sleep"`
		Prayers        Prayers       `json:"salat"`
		ScripturePages EnteredNumber `json:"quran"`
		Expense        EnteredNumber `json:"expense"`
		Note           string        `json:"badwork"`
		CreatedAt      time.Time     `json:"createdAt"`
	}
)

var (
	ErrEmptyDate     = errors.New("empty date")
	ErrInvalidDate   = errors.New("invalid date")
	ErrDuplicateDate = errors.New("duplicate date")
	ErrNoteTooLong   = errors.New("note too long")
)

const maxNoteLength = 2000

// String returns the canonical lowercase name.
func (p Prayer) String() string {
	if p < 0 || int(p) >= PrayerCount {
		return fmt.Sprintf("prayer(%d)", int(p))
	}
	return prayerNames[p]
}

// ParsePrayer resolves a canonical name, case-insensitively.
func ParsePrayer(name string) (Prayer, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range prayerNames {
		if n == name {
			return Prayer(i), true
		}
	}
	return 0, false
}

// Count returns how many prayers are marked.
func (p Prayers) Count() int {
	n := 0
	for _, done := range p {
		if done {
			n++
		}
	}
	return n
}

// Completed returns the marked prayers in canonical order.
func (p Prayers) Completed() []Prayer {
	out := make([]Prayer, 0, PrayerCount)
	for _, pr := range AllPrayers {
		if p[pr] {
			out = append(out, pr)
		}
	}
	return out
}

func (p Prayers) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, done := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:%t", prayerNames[i], done)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the keyed object form. Unknown names are ignored and
// absent ones stay false.
func (p *Prayers) UnmarshalJSON(data []byte) error {
	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode prayers: %w", err)
	}
	*p = Prayers{}
	for name, done := range raw {
		if pr, ok := ParsePrayer(name); ok {
			p[pr] = done
		}
	}
	return nil
}

// UnmarshalJSON accepts a string, a number or null.
func (n *EnteredNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = EnteredNumber(s)
		return nil
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("decode number: %w", err)
		}
		*n = EnteredNumber(num.String())
		return nil
	}
}

// NormalizeDate turns a calendar label into YYYY-MM-DD. Timestamps keep
// their literal date part; no timezone conversion happens.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyDate
	}
	if i := strings.IndexAny(s, "T "); i > 0 {
		s = s[:i]
	}
	for _, layout := range []string{dateLayout, "2006-1-2"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// dateKey is the comparison key for a record date. Labels that do not
// normalize are compared as trimmed text.
func dateKey(s string) string {
	if d, err := NormalizeDate(s); err == nil {
		return d
	}
	return strings.TrimSpace(s)
}

// Month returns the YYYY-MM label of the record date, or "" when the date
// is malformed.
func (r DailyRecord) Month() string {
	d, err := NormalizeDate(r.Date)
	if err != nil {
		return ""
	}
	return d[:7]
}

// Validate checks the fields needed before a record is stored. Numeric
// and time fields are never rejected.
func (r DailyRecord) Validate() error {
	if _, err := NormalizeDate(r.Date); err != nil {
		return err
	}
	if len(r.Note) > maxNoteLength {
		return fmt.Errorf("%w (max %d characters)", ErrNoteTooLong, maxNoteLength)
	}
	return nil
}

package domain

import (
	"context"
	"time"
)

// Coordinate is a geographic position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CatalogEntry is one image in the catalog together with its title,
// creation date, and geolocation. Only Title is mutable after creation.
type CatalogEntry struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Image       []byte     `json:"image"` // Self-contained encoded payload
	ContentType string     `json:"contentType"`
	CreatedDate Date       `json:"date"`
	Location    Coordinate `json:"location"`
}

// Clone returns a deep copy of the entry. Image bytes are copied so callers
// across the navigation boundary receive the record by value.
func (e CatalogEntry) Clone() CatalogEntry {
	c := e
	c.Image = append([]byte(nil), e.Image...)
	return c
}

// Date is a calendar date with no time component. It serializes as
// "YYYY-MM-DD", matching the persisted catalog format.
type Date struct {
	t time.Time
}

const dateLayout = "2006-01-02"

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

func (d Date) String() string    { return d.t.Format(dateLayout) }
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }
func (d Date) Time() time.Time   { return d.t }
func (d Date) IsZero() bool      { return d.t.IsZero() }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrInvalidInput
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// KeyValueStore is the catalog's durability boundary: an asynchronous
// key-value store where absence of a key is a valid first-run outcome
// (reported as ErrNotFound) and Set overwrites wholesale.
// The initial implementation stores values in SQLite; this interface
// allows swapping to a file, a remote store, or another backend later.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// LocationExtractor derives a geolocation from raw image bytes. It never
// fails: any unreadable or absent metadata maps to a fallback coordinate.
type LocationExtractor interface {
	ExtractLocation(data []byte) Coordinate
}

// DecisionProvider supplies the outcome of a destructive-action
// confirmation. The call may suspend for as long as the user takes to
// decide. Only a (true, nil) result counts as an affirmative; an error is
// indistinguishable from an explicit cancel.
type DecisionProvider interface {
	ConfirmDelete(ctx context.Context, entry CatalogEntry) (bool, error)
}

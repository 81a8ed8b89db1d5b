package log

import (
	"errors"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter selects events when reading back a log stream. Zero fields
// match everything.
type Filter struct {
	// Component restricts events to a single emitting component.
	Component *Component

	// Category restricts events to a single category.
	Category *Category

	// ConsumerID restricts events to a single consumer.
	ConsumerID string

	// RunID restricts events to a single recovery run.
	RunID string

	// After excludes events at or before this time.
	After time.Time

	// Before excludes events at or after this time.
	Before time.Time
}

func (f *Filter) matches(event Event) bool {
	if f == nil {
		return true
	}
	if f.Component != nil && event.Component != *f.Component {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.ConsumerID != "" && event.ConsumerID != f.ConsumerID {
		return false
	}
	if f.RunID != "" && event.RunID != f.RunID {
		return false
	}
	if !f.After.IsZero() && !event.Timestamp.After(f.After) {
		return false
	}
	if !f.Before.IsZero() && !event.Timestamp.Before(f.Before) {
		return false
	}
	return true
}

// Reader reads events back from a CBOR log stream, optionally filtered.
type Reader struct {
	decoder *cbor.Decoder
	filter  *Filter
}

// NewReader creates a Reader over r. A nil filter matches all events.
func NewReader(r io.Reader, filter *Filter) *Reader {
	return &Reader{
		decoder: NewDecoder(r),
		filter:  filter,
	}
}

// Next returns the next event matching the filter, or io.EOF when the
// stream is exhausted. Undecodable records are skipped only if the
// decoder can resynchronize; otherwise the error is returned.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.decoder.Decode(&event); err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			return Event{}, err
		}
		if r.filter.matches(event) {
			return event, nil
		}
	}
}

// ReadAll reads all remaining matching events.
func (r *Reader) ReadAll() ([]Event, error) {
	var events []Event
	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, event)
	}
}

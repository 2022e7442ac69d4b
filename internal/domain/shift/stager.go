package shift

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
)

// Entry is a staged interval with an identifier assigned when it was added
type Entry struct {
	ID string `json:"id"`
	Interval
	seq   uint64
	start int
}

// Submission is the result of a successful batch submit
type Submission struct {
	RequestID string `json:"request_id"`
	Count     int    `json:"count"`
	Message   string `json:"message"`
}

// Submitter sends a staged batch to the shift request backend
type Submitter interface {
	Submit(ctx context.Context, employeeID, note string, entries []Interval) (*Submission, error)
}

// Stager collects availability intervals for one person until they are
// submitted together. It is not safe for concurrent use.
type Stager struct {
	entries []Entry
	nextSeq uint64
	newID   func() string
}

// NewStager creates an empty stager
func NewStager() *Stager {
	return &Stager{newID: uuid.NewString}
}

func (s *Stager) intervals() []Interval {
	out := make([]Interval, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Interval
	}
	return out
}

// Check validates candidate against the currently staged intervals
func (s *Stager) Check(candidate Interval) error {
	return Check(candidate, s.intervals())
}

// CanAdd reports whether candidate passes validation
func (s *Stager) CanAdd(candidate Interval) bool {
	return s.Check(candidate) == nil
}

// Add stages candidate and returns the staged set in display order.
// Times are stored in zero-padded HH:MM form. Nothing is staged when
// validation fails.
func (s *Stager) Add(candidate Interval) ([]Entry, error) {
	if err := s.Check(candidate); err != nil {
		return s.Entries(), err
	}
	normalized, err := candidate.Normalize()
	if err != nil {
		return s.Entries(), err
	}
	s.nextSeq++
	s.entries = append(s.entries, Entry{
		ID:       s.newID(),
		Interval: normalized,
		seq:      s.nextSeq,
		start:    normalized.startMinutes(),
	})
	return s.Entries(), nil
}

// Remove drops the entry with the given id and returns the staged set in
// display order.
func (s *Stager) Remove(id string) ([]Entry, error) {
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return s.Entries(), nil
		}
	}
	return s.Entries(), fmt.Errorf("staged entry %q: %w", id, errs.ErrNotFound)
}

// Entries returns the staged set sorted by date, start time, then the order
// entries were added.
func (s *Stager) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].start != out[j].start {
			return out[i].start < out[j].start
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// Len returns the number of staged entries
func (s *Stager) Len() int {
	return len(s.entries)
}

// SubmitAll sends every staged entry in one call. The stager is cleared only
// when the submitter succeeds; on failure it is left untouched for a retry.
func (s *Stager) SubmitAll(ctx context.Context, submitter Submitter, employeeID, note string) (*Submission, error) {
	if len(s.entries) == 0 {
		return nil, fmt.Errorf("nothing staged: %w", errs.ErrInvalidArgument)
	}

	ordered := s.Entries()
	batch := make([]Interval, len(ordered))
	for i, e := range ordered {
		batch[i] = e.Interval
	}

	result, err := submitter.Submit(ctx, employeeID, note, batch)
	if err != nil {
		return nil, err
	}

	s.entries = nil
	return result, nil
}

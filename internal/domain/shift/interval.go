// Package shift validates and stages availability intervals before they are
// submitted as one shift request.
package shift

import (
	"fmt"
	"sort"
	"strings"

	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
	"github.com/garyjia/brokerage-backoffice/pkg/utils"
)

// Interval is one availability window on a calendar date.
// Date is YYYY-MM-DD, Start and End are HH:MM; the window is half-open [Start, End).
type Interval struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s %s-%s", iv.Date, iv.Start, iv.End)
}

// span holds the parsed minutes of an interval
type span struct {
	start, end int
}

func (iv Interval) parse() (span, error) {
	if strings.TrimSpace(iv.Date) == "" || strings.TrimSpace(iv.Start) == "" || strings.TrimSpace(iv.End) == "" {
		return span{}, fmt.Errorf("date, start and end are required: %w", errs.ErrInvalidArgument)
	}
	if _, err := utils.ParseDate(iv.Date); err != nil {
		return span{}, fmt.Errorf("%v: %w", err, errs.ErrInvalidArgument)
	}
	start, err := utils.ParseClock(iv.Start)
	if err != nil {
		return span{}, fmt.Errorf("%v: %w", err, errs.ErrInvalidArgument)
	}
	end, err := utils.ParseClock(iv.End)
	if err != nil {
		return span{}, fmt.Errorf("%v: %w", err, errs.ErrInvalidArgument)
	}
	return span{start: start, end: end}, nil
}

// Validate checks required fields, formats and start < end
func (iv Interval) Validate() error {
	s, err := iv.parse()
	if err != nil {
		return err
	}
	if s.end <= s.start {
		return fmt.Errorf("%s: end must be after start: %w", iv, errs.ErrInvalidInterval)
	}
	return nil
}

// Normalize validates the interval and returns it with Start and End in
// zero-padded HH:MM form, so "9:00" becomes "09:00".
func (iv Interval) Normalize() (Interval, error) {
	if err := iv.Validate(); err != nil {
		return iv, err
	}
	s, _ := iv.parse()
	return Interval{Date: iv.Date, Start: utils.FormatClock(s.start), End: utils.FormatClock(s.end)}, nil
}

// startMinutes returns the parsed start time, or -1 when it does not parse
func (iv Interval) startMinutes() int {
	s, err := iv.parse()
	if err != nil {
		return -1
	}
	return s.start
}

// Overlaps reports whether two intervals share a date and intersect.
// Touching endpoints (one ends when the other starts) do not overlap.
// Both intervals must be valid.
func (iv Interval) Overlaps(other Interval) bool {
	if iv.Date != other.Date {
		return false
	}
	a, errA := iv.parse()
	b, errB := other.parse()
	if errA != nil || errB != nil {
		return false
	}
	return !(b.end <= a.start || a.end <= b.start)
}

// Hours returns the interval length in hours, rounded to two decimals
func (iv Interval) Hours() float64 {
	s, err := iv.parse()
	if err != nil || s.end <= s.start {
		return 0
	}
	return utils.RoundTo(float64(s.end-s.start)/60, 2)
}

// Check validates candidate against the intervals already staged for the
// same person. Input errors wrap errs.ErrInvalidArgument, ordering and
// overlap errors wrap errs.ErrInvalidInterval.
func Check(candidate Interval, staged []Interval) error {
	if err := candidate.Validate(); err != nil {
		return err
	}
	for _, existing := range staged {
		if existing.Overlaps(candidate) {
			return fmt.Errorf("%s overlaps %s: %w", candidate, existing, errs.ErrInvalidInterval)
		}
	}
	return nil
}

// CanAdd reports whether candidate may be staged next to staged
func CanAdd(candidate Interval, staged []Interval) bool {
	return Check(candidate, staged) == nil
}

// ValidateBatch checks a whole submission: every entry valid and no two
// entries on the same date overlapping.
func ValidateBatch(entries []Interval) error {
	if len(entries) == 0 {
		return fmt.Errorf("at least one entry is required: %w", errs.ErrInvalidArgument)
	}
	for i, entry := range entries {
		if err := Check(entry, entries[:i]); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeBatch validates a submission and returns a copy with every entry
// in canonical HH:MM form, ordered by date then start time.
func NormalizeBatch(entries []Interval) ([]Interval, error) {
	if err := ValidateBatch(entries); err != nil {
		return nil, err
	}
	out := make([]Interval, len(entries))
	for i, entry := range entries {
		n, err := entry.Normalize()
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].startMinutes() < out[j].startMinutes()
	})
	return out, nil
}

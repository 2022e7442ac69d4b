package shift

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
)

type fakeSubmitter struct {
	calls   int
	got     []Interval
	failErr error
}

func (f *fakeSubmitter) Submit(ctx context.Context, employeeID, note string, entries []Interval) (*Submission, error) {
	f.calls++
	f.got = append([]Interval(nil), entries...)
	if f.failErr != nil {
		return nil, f.failErr
	}
	return &Submission{RequestID: "req-1", Count: len(entries)}, nil
}

func iv(date, start, end string) Interval {
	return Interval{Date: date, Start: start, End: end}
}

func TestInterval_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      Interval
		wantErr error
	}{
		{"valid", iv("2024-08-01", "09:00", "12:00"), nil},
		{"missing date", iv("", "09:00", "12:00"), errs.ErrInvalidArgument},
		{"missing end", iv("2024-08-01", "09:00", ""), errs.ErrInvalidArgument},
		{"bad date", iv("2024/08/01", "09:00", "12:00"), errs.ErrInvalidArgument},
		{"bad clock", iv("2024-08-01", "9am", "12:00"), errs.ErrInvalidArgument},
		{"end before start", iv("2024-08-01", "10:00", "09:00"), errs.ErrInvalidInterval},
		{"zero length", iv("2024-08-01", "10:00", "10:00"), errs.ErrInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestInterval_Overlaps(t *testing.T) {
	base := iv("2024-08-01", "09:00", "12:00")

	assert.False(t, base.Overlaps(iv("2024-08-01", "12:00", "15:00")), "touching end")
	assert.False(t, base.Overlaps(iv("2024-08-01", "07:00", "09:00")), "touching start")
	assert.True(t, base.Overlaps(iv("2024-08-01", "11:00", "13:00")))
	assert.True(t, base.Overlaps(iv("2024-08-01", "10:00", "11:00")), "contained")
	assert.True(t, base.Overlaps(iv("2024-08-01", "08:00", "13:00")), "containing")
	assert.False(t, base.Overlaps(iv("2024-08-02", "10:00", "11:00")), "other date")
}

func TestInterval_Hours(t *testing.T) {
	assert.Equal(t, 3.0, iv("2024-08-01", "09:00", "12:00").Hours())
	assert.Equal(t, 1.33, iv("2024-08-01", "09:00", "10:20").Hours())
	assert.Equal(t, 0.0, iv("2024-08-01", "10:00", "09:00").Hours())
}

func TestCanAdd(t *testing.T) {
	staged := []Interval{iv("2024-08-01", "09:00", "12:00")}

	assert.True(t, CanAdd(iv("2024-08-01", "12:00", "15:00"), staged))
	assert.False(t, CanAdd(iv("2024-08-01", "11:00", "13:00"), staged))
	assert.False(t, CanAdd(iv("2024-08-01", "10:00", "09:00"), nil))
	assert.True(t, CanAdd(iv("2024-08-02", "09:00", "12:00"), staged))
}

func TestStager_Add(t *testing.T) {
	s := NewStager()

	entries, err := s.Add(iv("2024-08-01", "09:00", "12:00"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)

	entries, err = s.Add(iv("2024-08-01", "12:00", "15:00"))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	t.Run("overlap is rejected without mutation", func(t *testing.T) {
		entries, err := s.Add(iv("2024-08-01", "11:00", "13:00"))
		assert.ErrorIs(t, err, errs.ErrInvalidInterval)
		assert.Len(t, entries, 2)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("reversed interval is rejected", func(t *testing.T) {
		_, err := s.Add(iv("2024-08-01", "10:00", "09:00"))
		assert.ErrorIs(t, err, errs.ErrInvalidInterval)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("missing field is rejected", func(t *testing.T) {
		_, err := s.Add(iv("2024-08-01", "", "09:00"))
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
		assert.Equal(t, 2, s.Len())
	})
}

func TestStager_EntriesSorted(t *testing.T) {
	s := NewStager()
	for _, in := range []Interval{
		iv("2024-08-02", "09:00", "10:00"),
		iv("2024-08-01", "13:00", "14:00"),
		iv("2024-08-01", "09:00", "10:00"),
	} {
		_, err := s.Add(in)
		require.NoError(t, err)
	}

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, iv("2024-08-01", "09:00", "10:00"), entries[0].Interval)
	assert.Equal(t, iv("2024-08-01", "13:00", "14:00"), entries[1].Interval)
	assert.Equal(t, iv("2024-08-02", "09:00", "10:00"), entries[2].Interval)
}

func TestStager_SingleDigitHourSortsByTime(t *testing.T) {
	s := NewStager()
	_, err := s.Add(iv("2024-08-01", "10:00", "11:00"))
	require.NoError(t, err)
	got, err := s.Add(iv("2024-08-01", "9:00", "9:30"))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, iv("2024-08-01", "09:00", "09:30"), got[0].Interval)
	assert.Equal(t, iv("2024-08-01", "10:00", "11:00"), got[1].Interval)

	sub := &fakeSubmitter{}
	_, err = s.SubmitAll(context.Background(), sub, "emp-1", "")
	require.NoError(t, err)
	require.Len(t, sub.got, 2)
	assert.Equal(t, "09:00", sub.got[0].Start)
}

func TestInterval_Normalize(t *testing.T) {
	got, err := iv("2024-08-01", "9:05", "17:00").Normalize()
	require.NoError(t, err)
	assert.Equal(t, iv("2024-08-01", "09:05", "17:00"), got)

	_, err = iv("2024-08-01", "12:00", "9:00").Normalize()
	assert.ErrorIs(t, err, errs.ErrInvalidInterval)
}

func TestNormalizeBatch_OrdersByParsedStart(t *testing.T) {
	got, err := NormalizeBatch([]Interval{
		iv("2024-08-02", "8:00", "9:00"),
		iv("2024-08-01", "13:00", "14:00"),
		iv("2024-08-01", "9:00", "10:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, []Interval{
		iv("2024-08-01", "09:00", "10:00"),
		iv("2024-08-01", "13:00", "14:00"),
		iv("2024-08-02", "08:00", "09:00"),
	}, got)
}

func TestStager_Remove(t *testing.T) {
	s := NewStager()
	first, err := s.Add(iv("2024-08-01", "09:00", "12:00"))
	require.NoError(t, err)
	_, err = s.Add(iv("2024-08-02", "09:00", "12:00"))
	require.NoError(t, err)

	entries, err := s.Remove(first[0].ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-08-02", entries[0].Date)

	_, err = s.Remove(first[0].ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Equal(t, 1, s.Len())

	// the freed slot can be reused
	_, err = s.Add(iv("2024-08-01", "10:00", "11:00"))
	assert.NoError(t, err)
}

func TestStager_SubmitAll(t *testing.T) {
	ctx := context.Background()

	t.Run("success clears the stager", func(t *testing.T) {
		s := NewStager()
		_, err := s.Add(iv("2024-08-01", "12:00", "15:00"))
		require.NoError(t, err)
		_, err = s.Add(iv("2024-08-01", "09:00", "12:00"))
		require.NoError(t, err)

		sub := &fakeSubmitter{}
		result, err := s.SubmitAll(ctx, sub, "emp-1", "summer")
		require.NoError(t, err)
		assert.Equal(t, 2, result.Count)
		assert.Equal(t, 1, sub.calls)
		assert.Equal(t, "09:00", sub.got[0].Start)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("failure leaves the stager untouched", func(t *testing.T) {
		s := NewStager()
		_, err := s.Add(iv("2024-08-01", "09:00", "12:00"))
		require.NoError(t, err)
		before := s.Entries()

		sub := &fakeSubmitter{failErr: errs.Upstream("submit shift request", errors.New("db down"))}
		_, err = s.SubmitAll(ctx, sub, "emp-1", "")
		assert.ErrorIs(t, err, errs.ErrUpstream)
		assert.Equal(t, before, s.Entries())
	})

	t.Run("empty stager is rejected", func(t *testing.T) {
		sub := &fakeSubmitter{}
		_, err := NewStager().SubmitAll(ctx, sub, "emp-1", "")
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
		assert.Equal(t, 0, sub.calls)
	})
}

func TestValidateBatch(t *testing.T) {
	assert.NoError(t, ValidateBatch([]Interval{
		iv("2024-08-01", "09:00", "12:00"),
		iv("2024-08-01", "12:00", "15:00"),
		iv("2024-08-02", "09:00", "12:00"),
	}))

	err := ValidateBatch([]Interval{
		iv("2024-08-01", "09:00", "12:00"),
		iv("2024-08-01", "11:00", "13:00"),
	})
	assert.ErrorIs(t, err, errs.ErrInvalidInterval)

	assert.ErrorIs(t, ValidateBatch(nil), errs.ErrInvalidArgument)
}

package market

import (
	"testing"
	"time"

	"github.com/wonny/newslens/internal/contracts"
)

func day(s string) time.Time {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return ts
}

// tradingWeek builds a series of consecutive weekday closes starting Monday
// 2024-03-04.
func tradingWeek(closes ...float64) Series {
	dates := []string{
		"2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07", "2024-03-08",
		"2024-03-11", "2024-03-12", "2024-03-13", "2024-03-14", "2024-03-15",
	}
	points := make([]contracts.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = contracts.PricePoint{Date: day(dates[i]), Close: c}
	}
	return NewSeries(points)
}

func TestIndexAtOrBefore(t *testing.T) {
	series := tradingWeek(100, 101, 102, 103, 104)

	tests := []struct {
		name string
		date string
		want int
	}{
		{name: "exact trading day", date: "2024-03-06", want: 2},
		{name: "weekend forward-fills to friday", date: "2024-03-09", want: 4},
		{name: "after last day", date: "2024-03-20", want: 4},
		{name: "before first day", date: "2024-03-01", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := series.IndexAtOrBefore(day(tt.date)); got != tt.want {
				t.Errorf("IndexAtOrBefore(%s) = %d, want %d", tt.date, got, tt.want)
			}
		})
	}
}

func TestReturnFrom(t *testing.T) {
	series := tradingWeek(100, 101, 102, 103, 104, 105, 106, 107, 108, 110)

	t.Run("daily return", func(t *testing.T) {
		got := series.ReturnFrom(9, 1)
		if got == nil {
			t.Fatal("expected a value")
		}
		want := (110.0 - 108.0) / 108.0
		if *got != want {
			t.Errorf("ReturnFrom(9, 1) = %v, want %v", *got, want)
		}
	})

	t.Run("weekly return", func(t *testing.T) {
		got := series.ReturnFrom(9, 5)
		if got == nil {
			t.Fatal("expected a value")
		}
		want := (110.0 - 104.0) / 104.0
		if *got != want {
			t.Errorf("ReturnFrom(9, 5) = %v, want %v", *got, want)
		}
	})

	t.Run("insufficient history is nil, never a shorter window", func(t *testing.T) {
		short := tradingWeek(100, 101, 102)
		if got := short.ReturnFrom(2, 5); got != nil {
			t.Errorf("ReturnFrom with 3 days of history = %v, want nil", *got)
		}
	})

	t.Run("index out of range", func(t *testing.T) {
		if got := series.ReturnFrom(42, 1); got != nil {
			t.Error("out-of-range index should return nil")
		}
	})

	t.Run("zero base price", func(t *testing.T) {
		s := tradingWeek(0, 50)
		if got := s.ReturnFrom(1, 1); got != nil {
			t.Error("zero base close should return nil")
		}
	})
}

func TestNewSeriesSortsAscending(t *testing.T) {
	points := []contracts.PricePoint{
		{Date: day("2024-03-06"), Close: 3},
		{Date: day("2024-03-04"), Close: 1},
		{Date: day("2024-03-05"), Close: 2},
	}
	series := NewSeries(points)

	if series.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", series.Len())
	}
	if idx := series.IndexAtOrBefore(day("2024-03-04")); idx != 0 {
		t.Errorf("earliest date should land at index 0, got %d", idx)
	}
	got := series.ReturnFrom(2, 2)
	if got == nil || *got != (3.0-1.0)/1.0 {
		t.Errorf("ReturnFrom over sorted series = %v, want 2", got)
	}
}

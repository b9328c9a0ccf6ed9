package market

import (
	"sort"
	"time"

	"github.com/wonny/newslens/internal/contracts"
)

// Series is a chronological close-price series for one symbol.
// ⭐ 거래일 오프셋 계산의 기준: 인덱스 간격이 곧 거래일 간격.
type Series struct {
	points []contracts.PricePoint
}

// NewSeries builds a series sorted by ascending date
func NewSeries(points []contracts.PricePoint) Series {
	sorted := make([]contracts.PricePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return Series{points: sorted}
}

// Len returns the number of trading days in the series
func (s Series) Len() int {
	return len(s.points)
}

// IndexAtOrBefore returns the position of the last trading day at or before
// date (forward-fill lookup), or -1 when the series has no such day.
// Point-in-time: 이 인덱스 이후의 데이터는 절대 쓰지 않는다.
func (s Series) IndexAtOrBefore(date time.Time) int {
	// First index strictly after date
	idx := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Date.After(date)
	})
	return idx - 1
}

// ReturnFrom computes the fractional return from offset trading days before
// idx to idx: (P_t − P_{t−k}) / P_{t−k}. Returns nil when the trailing
// history is shorter than offset, never a value from a shorter window.
func (s Series) ReturnFrom(idx, offset int) *float64 {
	if idx < offset || idx >= len(s.points) {
		return nil
	}

	base := s.points[idx-offset].Close
	if base == 0 {
		return nil
	}

	value := (s.points[idx].Close - base) / base
	return &value
}

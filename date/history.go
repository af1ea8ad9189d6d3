package date

import (
	"iter"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// History stores a chronological series of values, each associated with a specific date.
// It ensures that dates are unique and the series is always sorted.
// The zero value is an empty history ready to use.
type History struct {
	days   []Date
	values []decimal.Decimal
}

// Len returns the number of items in the history.
func (h *History) Len() int { return len(h.days) }

// chronological is a private implementation to make this history chronologically sorted.
type chronological struct{ *History }

func (s chronological) Len() int           { return len(s.days) }
func (s chronological) Less(i, j int) bool { return s.days[i].Before(s.days[j]) }

func (s chronological) Swap(i, j int) {
	s.days[i], s.days[j] = s.days[j], s.days[i]
	s.values[i], s.values[j] = s.values[j], s.values[i]
}

// Append adds a point to the history.
//
// Existing value at that date are overwritten.
func (h *History) Append(on Date, q decimal.Decimal) *History {
	if i := slices.Index(h.days, on); i >= 0 {
		// Last write wins.
		h.values[i] = q
		return h
	}
	h.days, h.values = append(h.days, on), append(h.values, q)
	sort.Stable(chronological{h})
	return h
}

// Seed adds a point only if the history has no value for that day yet.
// It reports whether the point was added.
func (h *History) Seed(on Date, q decimal.Decimal) bool {
	if slices.Contains(h.days, on) {
		return false
	}
	h.Append(on, q)
	return true
}

// Values returns an iterator over all date/value pairs in the history, in chronological order.
func (h *History) Values() iter.Seq2[Date, decimal.Decimal] {
	return func(yield func(Date, decimal.Decimal) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// Get returns the value at 'day' and true or zero value and false.
func (h *History) Get(day Date) (decimal.Decimal, bool) {
	i := slices.Index(h.days, day)
	if i >= 0 {
		return h.values[i], true
	}
	return decimal.Zero, false
}

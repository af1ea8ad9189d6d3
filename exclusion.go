package btcfolio

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
)

// ExclusionSet lists trade timestamps that must be ignored by the
// reconciliation, typically sentinel rows injected while testing an account.
type ExclusionSet map[Timestamp]struct{}

// NewExclusionSet returns a set holding ts.
func NewExclusionSet(ts ...Timestamp) ExclusionSet {
	e := make(ExclusionSet, len(ts))
	for _, t := range ts {
		e[t] = struct{}{}
	}
	return e
}

// ParseExclusions parses a comma separated list of epoch milliseconds.
func ParseExclusions(list string) (ExclusionSet, error) {
	e := make(ExclusionSet)
	for _, field := range strings.Split(list, ",") {
		if strings.TrimSpace(field) == "" {
			continue
		}
		ts, err := ParseTimestamp(field)
		if err != nil {
			return nil, err
		}
		e[ts] = struct{}{}
	}
	return e, nil
}

// LoadExclusions reads a JSON array of epoch milliseconds.
func LoadExclusions(path string) (ExclusionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read exclusions: %w", err)
	}
	var ts []Timestamp
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("cannot parse exclusions %q: %w", path, err)
	}
	return NewExclusionSet(ts...), nil
}

// Add adds every timestamp of o.
func (e ExclusionSet) Add(o ExclusionSet) {
	for t := range o {
		e[t] = struct{}{}
	}
}

// Contains reports whether ts is excluded.
func (e ExclusionSet) Contains(ts Timestamp) bool {
	_, ok := e[ts]
	return ok
}

// Timestamps returns the sorted timestamps.
func (e ExclusionSet) Timestamps() []Timestamp {
	ts := make([]Timestamp, 0, len(e))
	for t := range e {
		ts = append(ts, t)
	}
	slices.Sort(ts)
	return ts
}

// Filter returns the trades that are not excluded, in their original order,
// and the number of removed trades.
func (e ExclusionSet) Filter(trades []Trade) (kept []Trade, removed int) {
	kept = make([]Trade, 0, len(trades))
	for _, t := range trades {
		if e.Contains(t.Timestamp) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	return kept, removed
}

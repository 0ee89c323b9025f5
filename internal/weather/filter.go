package weather

import (
	"fmt"
	"strings"

	"github.com/dolthub/swiss"
)

// EmptySelection decides what a filter with no selections matches.
type EmptySelection string

const (
	// ShowAll renders every record when nothing is selected.
	ShowAll EmptySelection = "all"
	// ShowNone renders an empty scene until something is selected.
	ShowNone EmptySelection = "none"
)

// ParseEmptySelection parses "all" or "none". An empty string means ShowAll.
func ParseEmptySelection(s string) (EmptySelection, error) {
	switch EmptySelection(strings.ToLower(strings.TrimSpace(s))) {
	case "", ShowAll:
		return ShowAll, nil
	case ShowNone:
		return ShowNone, nil
	default:
		return "", fmt.Errorf("invalid empty selection policy %q", s)
	}
}

// Filter is the user-selected subset constraint. Each dimension is a
// membership set; a nil set leaves that dimension unconstrained.
type Filter struct {
	countries  *swiss.Map[string, struct{}]
	timestamps *swiss.Map[int64, struct{}]
	policy     EmptySelection
}

// NewFilter builds a filter from the selected country codes and timestamps.
// Duplicates collapse and blank country codes are ignored.
func NewFilter(countries []string, timestamps []int64) Filter {
	var f Filter

	for _, c := range countries {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if f.countries == nil {
			f.countries = swiss.NewMap[string, struct{}](uint32(len(countries)))
		}
		f.countries.Put(c, struct{}{})
	}

	if len(timestamps) > 0 {
		f.timestamps = swiss.NewMap[int64, struct{}](uint32(len(timestamps)))
		for _, ts := range timestamps {
			f.timestamps.Put(ts, struct{}{})
		}
	}

	return f
}

// WithPolicy returns a copy of f using the given empty-selection policy.
func (f Filter) WithPolicy(p EmptySelection) Filter {
	f.policy = p
	return f
}

// IsEmpty reports whether no dimension is constrained.
func (f Filter) IsEmpty() bool {
	return f.countries == nil && f.timestamps == nil
}

// MatchesNothing reports whether the filter rejects every record outright.
func (f Filter) MatchesNothing() bool {
	return f.policy == ShowNone && f.IsEmpty()
}

// Matches reports whether rec satisfies every constrained dimension.
func (f Filter) Matches(rec Record) bool {
	if f.MatchesNothing() {
		return false
	}
	if f.countries != nil && !f.countries.Has(rec.CountryCode) {
		return false
	}
	if f.timestamps != nil && !f.timestamps.Has(rec.Timestamp) {
		return false
	}
	return true
}

// CountryCount returns the number of distinct selected country codes.
func (f Filter) CountryCount() int {
	if f.countries == nil {
		return 0
	}
	return f.countries.Count()
}

// TimestampCount returns the number of distinct selected timestamps.
func (f Filter) TimestampCount() int {
	if f.timestamps == nil {
		return 0
	}
	return f.timestamps.Count()
}

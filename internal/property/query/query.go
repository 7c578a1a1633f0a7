// Package query implements the in-memory filter and sort pipeline over
// a property list. All functions are pure: they take a snapshot of the
// list plus a filter state and return a new slice, leaving the input
// untouched.
package query

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/SashaDiz/real-estate-directory/internal/property/domain"
)

// All disables a single filter dimension.
const All = "all"

// Filters narrows the property list. Zero values and "all" mean the
// dimension is not applied. Range values use the "min-max" or "min+"
// syntax, e.g. "500000-1000000" or "5000000+", both ends inclusive.
type Filters struct {
	Search      string
	Type        string
	Status      string
	PriceRange  string
	AreaRange   string
	ReturnRange string
}

// IsZero reports whether no filter dimension is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// returnValue extracts the numeric prefix of the free-text investment
// return annotation ("up to 25% per year" -> 25). Only the leading
// number of the stripped digits counts, so "1.5-2.5% monthly" reads as
// 1.52 rather than failing on the second dot. Unparseable text counts
// as 0.
func returnValue(s string) float64 {
	digits := nonNumeric.ReplaceAllString(s, "")
	end, dotted := 0, false
	for end < len(digits) {
		if digits[end] == '.' {
			if dotted {
				break
			}
			dotted = true
		}
		end++
	}
	v, err := strconv.ParseFloat(digits[:end], 64)
	if err != nil {
		return 0
	}
	return v
}

type numericRange struct {
	min, max float64
	openEnd  bool
}

func parseRange(s string) (numericRange, bool) {
	if s == "" || s == All {
		return numericRange{}, false
	}
	if rest, ok := strings.CutSuffix(s, "+"); ok {
		min, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return numericRange{}, false
		}
		return numericRange{min: min, openEnd: true}, true
	}
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return numericRange{}, false
	}
	min, errLo := strconv.ParseFloat(lo, 64)
	max, errHi := strconv.ParseFloat(hi, 64)
	if errLo != nil || errHi != nil {
		return numericRange{}, false
	}
	return numericRange{min: min, max: max}, true
}

func (r numericRange) contains(v float64) bool {
	if r.openEnd {
		return v >= r.min
	}
	return v >= r.min && v <= r.max
}

func matchesSearch(p *domain.Property, term string) bool {
	return strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Location), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

// Filter applies the full pipeline: featured listings are stably moved
// ahead of non-featured ones, then each set dimension narrows the list
// in turn. The input slice is not modified.
func Filter(properties []*domain.Property, f Filters) []*domain.Property {
	out := make([]*domain.Property, len(properties))
	copy(out, properties)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsFeatured && !out[j].IsFeatured
	})

	keep := func(match func(*domain.Property) bool) {
		filtered := out[:0]
		for _, p := range out {
			if match(p) {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}

	if f.Search != "" {
		term := strings.ToLower(f.Search)
		keep(func(p *domain.Property) bool { return matchesSearch(p, term) })
	}
	if f.Type != "" && f.Type != All {
		keep(func(p *domain.Property) bool { return p.Type == f.Type })
	}
	if f.Status != "" && f.Status != All {
		keep(func(p *domain.Property) bool { return string(p.Status) == f.Status })
	}
	if r, ok := parseRange(f.PriceRange); ok {
		keep(func(p *domain.Property) bool { return r.contains(p.Price) })
	}
	if r, ok := parseRange(f.AreaRange); ok {
		keep(func(p *domain.Property) bool { return r.contains(p.Area) })
	}
	if r, ok := parseRange(f.ReturnRange); ok {
		keep(func(p *domain.Property) bool { return r.contains(returnValue(p.InvestmentReturn)) })
	}
	return out
}

// Sort keys used by the admin view.
const (
	SortRecentlyModified = "recently-modified"
	SortRecentlyAdded    = "recently-added"
	SortTitleAZ          = "title-az"
	SortTitleZA          = "title-za"
	SortPriceHighLow     = "price-high-low"
	SortPriceLowHigh     = "price-low-high"
	SortAreaHighLow      = "area-high-low"
	SortAreaLowHigh      = "area-low-high"
)

// Sort returns a copy of properties ordered by the given key. The sort
// is stable, so ties keep their input order. An unknown key returns
// the list unchanged.
func Sort(properties []*domain.Property, key string) []*domain.Property {
	out := make([]*domain.Property, len(properties))
	copy(out, properties)

	var less func(a, b *domain.Property) bool
	switch key {
	case SortRecentlyModified:
		less = func(a, b *domain.Property) bool {
			return lastModified(b).Before(lastModified(a))
		}
	case SortRecentlyAdded:
		less = func(a, b *domain.Property) bool { return b.CreatedAt.Before(a.CreatedAt) }
	case SortTitleAZ:
		less = func(a, b *domain.Property) bool { return a.Title < b.Title }
	case SortTitleZA:
		less = func(a, b *domain.Property) bool { return b.Title < a.Title }
	case SortPriceHighLow:
		less = func(a, b *domain.Property) bool { return a.Price > b.Price }
	case SortPriceLowHigh:
		less = func(a, b *domain.Property) bool { return a.Price < b.Price }
	case SortAreaHighLow:
		less = func(a, b *domain.Property) bool { return a.Area > b.Area }
	case SortAreaLowHigh:
		less = func(a, b *domain.Property) bool { return a.Area < b.Area }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func lastModified(p *domain.Property) time.Time {
	if !p.UpdatedAt.IsZero() {
		return p.UpdatedAt
	}
	return p.CreatedAt
}

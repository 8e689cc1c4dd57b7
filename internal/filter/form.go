package filter

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"jobmate/board-service/internal/listing"
)

// Form holds the current filter criteria for one listing view.
type Form struct {
	mu sync.RWMutex
	c  Criteria
}

// NewForm returns a Form holding Defaults().
func NewForm() *Form {
	return &Form{c: Defaults()}
}

// Criteria returns a copy of the current criteria.
func (f *Form) Criteria() Criteria {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.c
}

// Set replaces the current criteria.
func (f *Form) Set(c Criteria) {
	f.mu.Lock()
	f.c = c
	f.mu.Unlock()
}

// Reset restores Defaults().
func (f *Form) Reset() {
	f.Set(Defaults())
}

// ParseQuery builds Criteria from URL query parameters named after the form
// fields. It never fails: a malformed field is treated as unconstrained.
// An absent minimumSalary keeps the default of 0; a present but empty or
// non-numeric one becomes NaN.
func ParseQuery(q url.Values) Criteria {
	c := Defaults()
	c.Title = strings.TrimSpace(q.Get("title"))
	c.Location = strings.TrimSpace(q.Get("location"))

	if q.Has("minimumSalary") {
		c.MinimumSalary = parseSalary(q.Get("minimumSalary"))
	}
	if t, err := listing.ParseType(q.Get("type")); err == nil {
		c.Type = string(t)
	}
	if l, err := listing.ParseExperienceLevel(q.Get("experienceLevel")); err == nil {
		c.ExperienceLevel = string(l)
	}
	c.ShowHidden = parseBool(q.Get("showHidden"))
	c.OnlyShowFavorites = parseBool(q.Get("onlyShowFavorites"))
	return c
}

func parseSalary(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

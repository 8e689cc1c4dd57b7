// Package filter derives the visible subset of a listing collection from the
// filter form criteria and the profile's hidden/favorite overlays.
//
// Everything here is pure: inputs are never modified and the output keeps
// the relative order of the input collection.
package filter

import (
	"math"
	"strings"

	"jobmate/board-service/internal/listing"
	"jobmate/board-service/internal/preference"
)

// Criteria mirrors the listing filter form.
//
// MinimumSalary uses NaN for "no constraint". Type and ExperienceLevel use
// the empty string for "any".
type Criteria struct {
	Title             string
	Location          string
	MinimumSalary     float64
	Type              string
	ExperienceLevel   string
	ShowHidden        bool
	OnlyShowFavorites bool
}

// Defaults returns the criteria a freshly mounted or reset form holds.
func Defaults() Criteria {
	return Criteria{}
}

// Unconstrained is the MinimumSalary sentinel meaning "any salary".
func Unconstrained() float64 { return math.NaN() }

// Apply returns the listings that satisfy every active predicate of c.
// A listing is dropped when it is hidden (unless ShowHidden) and, with
// OnlyShowFavorites set, when it is not a favorite.
func Apply(listings []listing.JobListing, hiddenIDs, favoriteIDs []string, c Criteria) []listing.JobListing {
	hidden := preference.Set(hiddenIDs)
	favorites := preference.Set(favoriteIDs)
	title := strings.ToLower(c.Title)
	location := strings.ToLower(c.Location)

	out := make([]listing.JobListing, 0, len(listings))
	for _, l := range listings {
		if !containsFold(l.Title, title) {
			continue
		}
		if !containsFold(l.Location, location) {
			continue
		}
		if !math.IsNaN(c.MinimumSalary) && l.Salary < c.MinimumSalary {
			continue
		}
		if c.Type != "" && string(l.Type) != c.Type {
			continue
		}
		if c.ExperienceLevel != "" && string(l.ExperienceLevel) != c.ExperienceLevel {
			continue
		}
		if _, ok := hidden[l.ID]; ok && !c.ShowHidden {
			continue
		}
		if _, ok := favorites[l.ID]; !ok && c.OnlyShowFavorites {
			continue
		}
		out = append(out, l)
	}
	return out
}

// containsFold reports whether s contains the already lower-cased needle.
// An empty needle matches everything.
func containsFold(s, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), needle)
}

// Package listing defines job listings, their enumerated attributes, and the
// persistence and snapshot layers that feed the board views.
package listing

import (
	"fmt"
	"time"
)

// Type is the employment type of a listing.
type Type string

const (
	TypeFullTime   Type = "Full Time"
	TypePartTime   Type = "Part Time"
	TypeInternship Type = "Internship"
)

// Types lists every employment type in display order.
var Types = []Type{TypeFullTime, TypePartTime, TypeInternship}

// ExperienceLevel is the seniority tier a listing targets.
type ExperienceLevel string

const (
	LevelJunior ExperienceLevel = "Junior"
	LevelMid    ExperienceLevel = "Mid-Level"
	LevelSenior ExperienceLevel = "Senior"
)

// ExperienceLevels lists every tier in display order.
var ExperienceLevels = []ExperienceLevel{LevelJunior, LevelMid, LevelSenior}

// JobListing is a published (or draft) job posting.
// ID is stable across reloads and unique within a fetched collection; it is
// the join key for client preference overlays.
type JobListing struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	CompanyName      string          `json:"companyName"`
	Location         string          `json:"location"`
	ApplyURL         string          `json:"applyUrl"`
	Type             Type            `json:"type"`
	ExperienceLevel  ExperienceLevel `json:"experienceLevel"`
	Salary           float64         `json:"salary"`
	ShortDescription string          `json:"shortDescription"`
	Description      string          `json:"description"`
	ExpiresAt        *time.Time      `json:"expiresAt"`
}

// ParseType converts a raw string to a Type, returning an error for
// unknown values.
func ParseType(s string) (Type, error) {
	t := Type(s)
	switch t {
	case TypeFullTime, TypePartTime, TypeInternship:
		return t, nil
	}
	return "", fmt.Errorf("unknown listing type %q", s)
}

// ParseExperienceLevel converts a raw string to an ExperienceLevel.
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	l := ExperienceLevel(s)
	switch l {
	case LevelJunior, LevelMid, LevelSenior:
		return l, nil
	}
	return "", fmt.Errorf("unknown experience level %q", s)
}

// IsPublished reports whether the listing has an expiry in the future.
func (l JobListing) IsPublished(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.After(now)
}

package models

import (
	"sort"
	"strings"
	"time"
)

// HalalPlace is a venue shown on the map.
type HalalPlace struct {
	ID           int64         `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Category     PlaceCategory `json:"category" yaml:"category"`
	Latitude     float64       `json:"latitude" yaml:"latitude"`
	Longitude    float64       `json:"longitude" yaml:"longitude"`
	Address      string        `json:"address" yaml:"address"`
	Phone        *string       `json:"phone,omitempty" yaml:"phone"`
	Rating       *float64      `json:"rating,omitempty" yaml:"rating"`
	HalalLevel   HalalLevel    `json:"halalLevel" yaml:"halalLevel"`
	Description  *string       `json:"description,omitempty" yaml:"description"`
	OpeningHours *string       `json:"openingHours,omitempty" yaml:"openingHours"`
	Website      *string       `json:"website,omitempty" yaml:"website"`
	CreatedAt    time.Time     `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt" yaml:"updatedAt"`

	// DistanceKm is set only when the query carried a location.
	DistanceKm *float64 `json:"distanceKm,omitempty" yaml:"-"`
}

// PlaceFilter holds the store-level predicates of a place query. Zero values
// match everything.
type PlaceFilter struct {
	Category   PlaceCategory
	HalalLevel HalalLevel
	Query      string
}

// Match reports whether p satisfies every set predicate.
func (f PlaceFilter) Match(p HalalPlace) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.HalalLevel != "" && p.HalalLevel != f.HalalLevel {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Address), q) {
			return false
		}
	}
	return true
}

// SortPlaces orders places by halal level ascending, rating descending with
// unrated places last, then name ascending.
func SortPlaces(places []HalalPlace) {
	sort.SliceStable(places, func(i, j int) bool {
		a, b := places[i], places[j]
		if a.HalalLevel != b.HalalLevel {
			return a.HalalLevel < b.HalalLevel
		}
		switch {
		case a.Rating != nil && b.Rating == nil:
			return true
		case a.Rating == nil && b.Rating != nil:
			return false
		case a.Rating != nil && b.Rating != nil && *a.Rating != *b.Rating:
			return *a.Rating > *b.Rating
		}
		return a.Name < b.Name
	})
}

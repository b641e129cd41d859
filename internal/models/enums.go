package models

// FilterAll disables a filter when passed as a query value.
const FilterAll = "all"

// PlaceCategory is the kind of venue.
type PlaceCategory string

const (
	PlaceRestaurant PlaceCategory = "restaurant"
	PlaceMarket     PlaceCategory = "market"
	PlacePrayerRoom PlaceCategory = "prayer_room"
)

var placeCategories = []PlaceCategory{PlaceRestaurant, PlaceMarket, PlacePrayerRoom}

func (c PlaceCategory) Valid() bool {
	for _, v := range placeCategories {
		if c == v {
			return true
		}
	}
	return false
}

// HalalLevel is the certification tier of a venue. The string values sort
// alphabetically in trust order: certified < reliable < unknown.
type HalalLevel string

const (
	HalalCertified HalalLevel = "certified"
	HalalReliable  HalalLevel = "reliable"
	HalalUnknown   HalalLevel = "unknown"
)

var halalLevels = []HalalLevel{HalalCertified, HalalReliable, HalalUnknown}

func (l HalalLevel) Valid() bool {
	for _, v := range halalLevels {
		if l == v {
			return true
		}
	}
	return false
}

// PostCategory is the board section a post belongs to.
type PostCategory string

const (
	PostFood       PostCategory = "food"
	PostPrayerRoom PostCategory = "prayer_room"
	PostLifeInfo   PostCategory = "life_info"
	PostOther      PostCategory = "other"
)

var postCategories = []PostCategory{PostFood, PostPrayerRoom, PostLifeInfo, PostOther}

func (c PostCategory) Valid() bool {
	for _, v := range postCategories {
		if c == v {
			return true
		}
	}
	return false
}

// ParsePlaceCategory parses an optional filter value. Empty and "all" yield
// the zero value, which matches every place.
func ParsePlaceCategory(s string) (PlaceCategory, error) {
	if s == "" || s == FilterAll {
		return "", nil
	}
	c := PlaceCategory(s)
	if !c.Valid() {
		return "", Invalid("category", "unknown category %q", s)
	}
	return c, nil
}

func ParseHalalLevel(s string) (HalalLevel, error) {
	if s == "" || s == FilterAll {
		return "", nil
	}
	l := HalalLevel(s)
	if !l.Valid() {
		return "", Invalid("halalLevel", "unknown halal level %q", s)
	}
	return l, nil
}

func ParsePostCategory(s string) (PostCategory, error) {
	if s == "" || s == FilterAll {
		return "", nil
	}
	c := PostCategory(s)
	if !c.Valid() {
		return "", Invalid("category", "unknown category %q", s)
	}
	return c, nil
}

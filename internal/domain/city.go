package domain

import (
	"fmt"
	"sort"
)

// CityFeatureName is the column name of the encoded city in a city-aware vector
const CityFeatureName = "City"

// CitySentinel is returned by Resolve for names outside the lookup
const CitySentinel = -1

// CityLookup maps city names to the integer codes assigned at training time
type CityLookup map[string]int

// DefaultCities returns the 26 cities of the training set, encoded alphabetically
func DefaultCities() CityLookup {
	return CityLookup{
		"Ahmedabad":          0,
		"Aizawl":             1,
		"Amaravati":          2,
		"Amritsar":           3,
		"Bengaluru":          4,
		"Bhopal":             5,
		"Brajrajnagar":       6,
		"Chandigarh":         7,
		"Chennai":            8,
		"Coimbatore":         9,
		"Delhi":              10,
		"Ernakulam":          11,
		"Gurugram":           12,
		"Guwahati":           13,
		"Hyderabad":          14,
		"Jaipur":             15,
		"Jorapokhar":         16,
		"Kochi":              17,
		"Kolkata":            18,
		"Lucknow":            19,
		"Mumbai":             20,
		"Patna":              21,
		"Shillong":           22,
		"Talcher":            23,
		"Thiruvananthapuram": 24,
		"Visakhapatnam":      25,
	}
}

// Resolve returns the code for name, or CitySentinel and false
func (l CityLookup) Resolve(name string) (int, bool) {
	code, ok := l[name]
	if !ok {
		return CitySentinel, false
	}
	return code, true
}

// Names returns the city names ordered by code
func (l CityLookup) Names() []string {
	names := make([]string, 0, len(l))
	for n := range l {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return l[names[i]] < l[names[j]] })
	return names
}

// Validate checks that codes are distinct and dense from zero
func (l CityLookup) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("%w: city lookup is empty", ErrInvalidTable)
	}
	seen := make([]string, len(l))
	for name, code := range l {
		if name == "" {
			return fmt.Errorf("%w: empty city name", ErrInvalidTable)
		}
		if code < 0 || code >= len(l) {
			return fmt.Errorf("%w: city %q has code %d outside [0, %d]", ErrInvalidTable, name, code, len(l)-1)
		}
		if seen[code] != "" {
			return fmt.Errorf("%w: cities %q and %q share code %d", ErrInvalidTable, seen[code], name, code)
		}
		seen[code] = name
	}
	return nil
}

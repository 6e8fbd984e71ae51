package domain

import "fmt"

const (
	// AQIMin and AQIMax bound the tabulated prediction range
	AQIMin = 0
	AQIMax = 500

	UnknownLabel     = "Unknown"
	UnknownIndicator = "❓"
)

// Band is a contiguous AQI interval with its severity category
type Band struct {
	Lower     int    `json:"lower"`
	Upper     int    `json:"upper"`
	Label     string `json:"label"`
	Indicator string `json:"indicator"`
}

// BandTable is ordered by ascending Lower
type BandTable []Band

// DefaultBands returns the six-band AQI table
func DefaultBands() BandTable {
	return BandTable{
		{Lower: 0, Upper: 50, Label: "Good", Indicator: "😊"},
		{Lower: 51, Upper: 100, Label: "Moderate", Indicator: "😊"},
		{Lower: 101, Upper: 150, Label: "Unhealthy for Sensitive Groups", Indicator: "😷"},
		{Lower: 151, Upper: 200, Label: "Unhealthy", Indicator: "😷"},
		{Lower: 201, Upper: 300, Label: "Very Unhealthy", Indicator: "😷"},
		{Lower: 301, Upper: 500, Label: "Hazardous", Indicator: "☠️"},
	}
}

// Validate checks the table is six disjoint bands covering [AQIMin, AQIMax] without gaps
func (t BandTable) Validate() error {
	if len(t) != 6 {
		return fmt.Errorf("%w: expected 6 AQI bands, got %d", ErrInvalidTable, len(t))
	}
	if t[0].Lower != AQIMin {
		return fmt.Errorf("%w: first band starts at %d, want %d", ErrInvalidTable, t[0].Lower, AQIMin)
	}
	if last := t[len(t)-1]; last.Upper != AQIMax {
		return fmt.Errorf("%w: last band ends at %d, want %d", ErrInvalidTable, last.Upper, AQIMax)
	}
	for i, b := range t {
		if b.Label == "" {
			return fmt.Errorf("%w: band %d has no label", ErrInvalidTable, i)
		}
		if b.Lower > b.Upper {
			return fmt.Errorf("%w: band %q has lower %d > upper %d", ErrInvalidTable, b.Label, b.Lower, b.Upper)
		}
		if i > 0 && b.Lower != t[i-1].Upper+1 {
			return fmt.Errorf("%w: band %q starts at %d, want %d", ErrInvalidTable, b.Label, b.Lower, t[i-1].Upper+1)
		}
	}
	return nil
}

// Classification is the outcome of mapping a prediction onto the band table
type Classification struct {
	Label     string `json:"label"`
	Indicator string `json:"indicator"`
	Lower     *int   `json:"lower,omitempty"`
	Upper     *int   `json:"upper,omitempty"`
}

// Known reports whether a band matched
func (c Classification) Known() bool {
	return c.Label != UnknownLabel
}

// UnknownClassification is returned for predictions outside every band
func UnknownClassification() Classification {
	return Classification{Label: UnknownLabel, Indicator: UnknownIndicator}
}

// ClassificationOf wraps a matched band
func ClassificationOf(b Band) Classification {
	lower, upper := b.Lower, b.Upper
	return Classification{Label: b.Label, Indicator: b.Indicator, Lower: &lower, Upper: &upper}
}

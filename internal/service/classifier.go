package service

import (
	"fmt"
	"math"

	"github.com/smartcity/aqi/internal/domain"
)

// Classifier maps model output onto the AQI band table
type Classifier struct {
	bands domain.BandTable
}

// NewClassifier validates the table; a bad table is a startup failure
func NewClassifier(bands domain.BandTable) (*Classifier, error) {
	if err := bands.Validate(); err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	return &Classifier{bands: bands}, nil
}

// Bands returns the band table
func (c *Classifier) Bands() domain.BandTable {
	return c.bands
}

// Classify returns the band containing p, or Unknown when none does.
// Non-final bands cover [Lower, Upper+1) so fractional predictions between
// integer bounds still land in a band; the final band is closed at Upper.
func (c *Classifier) Classify(p float64) domain.Classification {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return domain.UnknownClassification()
	}

	last := len(c.bands) - 1
	for i, b := range c.bands {
		if p < float64(b.Lower) {
			continue
		}
		if p < float64(b.Upper+1) && (i < last || p <= float64(b.Upper)) {
			return domain.ClassificationOf(b)
		}
	}
	return domain.UnknownClassification()
}

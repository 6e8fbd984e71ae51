package domain

import "fmt"

// Feature is a single model input collected from the user
type Feature struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Variant selects which trained model family the service is serving
type Variant string

const (
	VariantStandard Variant = "standard"
	VariantCity     Variant = "city"
)

// ParseVariant maps a config string onto a known variant
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantStandard, VariantCity:
		return Variant(s), nil
	}
	return "", fmt.Errorf("domain: unknown model variant %q", s)
}

// FeatureCatalog is the ordered list of inputs a model was trained on.
// The order is the column order of the training matrix; it is not
// recoverable from the model artifact itself.
type FeatureCatalog struct {
	Variant  Variant   `json:"variant"`
	Features []Feature `json:"features"`
	// CityAware catalogs prepend the encoded city to the vector.
	CityAware bool `json:"city_aware"`
}

var pollutantLabels = map[string]string{
	"PM2.5":   "Particulate Matter 2.5 micrometers or smaller",
	"PM10":    "Particulate Matter 10 micrometers or smaller",
	"NO":      "Nitric Oxide",
	"NO2":     "Nitrogen Dioxide",
	"NOx":     "Nitrogen Oxides (NO + NO2)",
	"NH3":     "Ammonia",
	"CO":      "Carbon Monoxide",
	"SO2":     "Sulfur Dioxide",
	"O3":      "Ozone",
	"Benzene": `"Benzene" volatile organic compound (VOC)`,
	"Toluene": `"Toluene" volatile organic compound (VOC)`,
}

func features(names ...string) []Feature {
	out := make([]Feature, 0, len(names))
	for _, n := range names {
		out = append(out, Feature{Name: n, Label: pollutantLabels[n]})
	}
	return out
}

// StandardCatalog returns the 11-pollutant catalog
func StandardCatalog() FeatureCatalog {
	return FeatureCatalog{
		Variant:  VariantStandard,
		Features: features("PM2.5", "PM10", "NO", "NO2", "NOx", "NH3", "CO", "SO2", "O3", "Benzene", "Toluene"),
	}
}

// CityCatalog returns the city-aware catalog (city code first, then six pollutants)
func CityCatalog() FeatureCatalog {
	return FeatureCatalog{
		Variant:   VariantCity,
		Features:  features("PM2.5", "PM10", "NO2", "CO", "SO2", "O3"),
		CityAware: true,
	}
}

// CatalogFor returns the catalog for a variant
func CatalogFor(v Variant) (FeatureCatalog, error) {
	switch v {
	case VariantStandard:
		return StandardCatalog(), nil
	case VariantCity:
		return CityCatalog(), nil
	}
	return FeatureCatalog{}, fmt.Errorf("domain: unknown model variant %q", v)
}

// VectorLen is the length of an assembled feature vector
func (c FeatureCatalog) VectorLen() int {
	if c.CityAware {
		return len(c.Features) + 1
	}
	return len(c.Features)
}

// ColumnNames returns the vector's column names in order
func (c FeatureCatalog) ColumnNames() []string {
	names := make([]string, 0, c.VectorLen())
	if c.CityAware {
		names = append(names, CityFeatureName)
	}
	for _, f := range c.Features {
		names = append(names, f.Name)
	}
	return names
}

// Has reports whether name is a catalog feature
func (c FeatureCatalog) Has(name string) bool {
	for _, f := range c.Features {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Validate checks that the catalog is non-empty with unique, labelled names
func (c FeatureCatalog) Validate() error {
	if len(c.Features) == 0 {
		return fmt.Errorf("%w: feature catalog %q is empty", ErrInvalidTable, c.Variant)
	}
	seen := make(map[string]struct{}, len(c.Features))
	for i, f := range c.Features {
		if f.Name == "" || f.Label == "" {
			return fmt.Errorf("%w: feature %d has no name or label", ErrInvalidTable, i)
		}
		if f.Name == CityFeatureName {
			return fmt.Errorf("%w: feature name %q is reserved", ErrInvalidTable, f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: duplicate feature %q", ErrInvalidTable, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

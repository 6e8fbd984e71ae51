package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/smartcity/aqi/internal/domain"
)

// Assembler turns a submitted input record into the model's feature vector
type Assembler struct {
	catalog domain.FeatureCatalog
	cities  domain.CityLookup
}

// NewAssembler validates the catalog (and city lookup, for city-aware catalogs)
func NewAssembler(catalog domain.FeatureCatalog, cities domain.CityLookup) (*Assembler, error) {
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("assembler: %w", err)
	}
	if catalog.CityAware {
		if err := cities.Validate(); err != nil {
			return nil, fmt.Errorf("assembler: %w", err)
		}
	}
	return &Assembler{catalog: catalog, cities: cities}, nil
}

// Catalog returns the catalog the assembler builds vectors for
func (a *Assembler) Catalog() domain.FeatureCatalog {
	return a.catalog
}

// Cities returns the city lookup, nil for catalogs that are not city-aware
func (a *Assembler) Cities() domain.CityLookup {
	if !a.catalog.CityAware {
		return nil
	}
	return a.cities
}

// ResolveCity returns the training code for city. An unknown city is an
// error, the sentinel never reaches the model.
func (a *Assembler) ResolveCity(city string) (int, error) {
	name := strings.TrimSpace(city)
	if name == "" {
		return domain.CitySentinel, domain.NewFieldError(domain.CityFeatureName, "is required")
	}
	code, ok := a.cities.Resolve(name)
	if !ok {
		return domain.CitySentinel, fmt.Errorf("%w: %q", domain.ErrUnknownCity, name)
	}
	return code, nil
}

// Assemble builds the vector in catalog order, prefixed with the city code
// for city-aware catalogs. city is ignored otherwise.
func (a *Assembler) Assemble(record domain.InputRecord, city string) ([]float64, error) {
	var unknown []string
	for name := range record {
		if !a.catalog.Has(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, domain.NewFieldError(unknown[0], "is not a model feature")
	}

	vector := make([]float64, 0, a.catalog.VectorLen())
	if a.catalog.CityAware {
		code, err := a.ResolveCity(city)
		if err != nil {
			return nil, err
		}
		vector = append(vector, float64(code))
	}

	for _, f := range a.catalog.Features {
		v, ok := record[f.Name]
		if !ok {
			return nil, domain.NewFieldError(f.Name, "is missing")
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, domain.NewFieldError(f.Name, "must be a finite number")
		}
		if v < 0 {
			return nil, domain.NewFieldError(f.Name, "must not be negative")
		}
		vector = append(vector, v)
	}

	return vector, nil
}

// Echo returns the record as table rows in catalog order
func (a *Assembler) Echo(record domain.InputRecord) []domain.InputEcho {
	rows := make([]domain.InputEcho, 0, len(a.catalog.Features))
	for _, f := range a.catalog.Features {
		rows = append(rows, domain.InputEcho{Feature: f.Name, Label: f.Label, Value: record[f.Name]})
	}
	return rows
}

// ParseInputs converts loosely typed form values into an input record.
// Accepted values are JSON numbers and numeric strings.
func ParseInputs(raw map[string]any) (domain.InputRecord, error) {
	record := make(domain.InputRecord, len(raw))
	for name, value := range raw {
		v, err := parseValue(value)
		if err != nil {
			return nil, domain.NewFieldError(name, err.Error())
		}
		record[name] = v
	}
	return record, nil
}

func parseValue(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v.String())
		}
		return f, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, errors.New("is empty")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		return f, nil
	case nil:
		return 0, errors.New("is empty")
	default:
		return 0, fmt.Errorf("unsupported value of type %T", value)
	}
}

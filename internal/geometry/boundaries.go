// Package geometry resolves domain records to world administrative
// boundaries. The boundary dataset is fetched once per process and shared
// read-only by every choropleth binding.
package geometry

import (
	"encoding/json"
	"strings"
)

// Feature is one administrative region: its canonical code, display name,
// and polygon rings (each already simplified to the vertex limit).
type Feature struct {
	Code  string
	Name  string
	Rings [][][2]float64 // lon/lat
}

// Boundaries is the parsed, immutable world boundary dataset.
type Boundaries struct {
	Features []Feature
	byCode   map[string]int
}

// NewBoundaries builds a dataset from prepared features, indexing them by
// canonical code.
func NewBoundaries(features []Feature) *Boundaries {
	b := &Boundaries{byCode: make(map[string]int, len(features))}
	for _, f := range features {
		f.Code = CanonicalCode(f.Code)
		b.byCode[f.Code] = len(b.Features)
		b.Features = append(b.Features, f)
	}
	return b
}

// Find matches a region code against the dataset through CanonicalCode.
func (b *Boundaries) Find(code string) (Feature, bool) {
	idx, ok := b.byCode[CanonicalCode(code)]
	if !ok {
		return Feature{}, false
	}
	return b.Features[idx], true
}

// parseBoundaries decodes a GeoJSON FeatureCollection. Features without a
// usable code or geometry are skipped rather than failing the whole parse.
func parseBoundaries(raw []byte) (*Boundaries, error) {
	var fc struct {
		Features []struct {
			Properties map[string]any  `json:"properties"`
			Geometry   json.RawMessage `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, err
	}

	var features []Feature
	for _, f := range fc.Features {
		code := featureCode(f.Properties)
		if code == "" {
			continue
		}
		rings := parseGeometry(f.Geometry)
		if len(rings) == 0 {
			continue
		}
		features = append(features, Feature{
			Code:  code,
			Name:  featureName(f.Properties),
			Rings: rings,
		})
	}
	return NewBoundaries(features), nil
}

// featureCode probes the property keys used by the common public boundary
// datasets.
func featureCode(props map[string]any) string {
	for _, key := range []string{"ISO_A2", "ISO3166-1-Alpha-2", "iso_a2", "id", "code"} {
		if v, ok := props[key].(string); ok && strings.TrimSpace(v) != "" && v != "-99" {
			return v
		}
	}
	return ""
}

func featureName(props map[string]any) string {
	for _, key := range []string{"ADMIN", "name", "NAME"} {
		if v, ok := props[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// parseGeometry accepts Polygon and MultiPolygon geometries, simplifying
// every ring as it is read.
func parseGeometry(raw json.RawMessage) [][][2]float64 {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil
	}

	switch head.Type {
	case "Polygon":
		var g struct {
			Coordinates [][][2]float64 `json:"coordinates"`
		}
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil
		}
		return simplifyAll(g.Coordinates)
	case "MultiPolygon":
		var g struct {
			Coordinates [][][][2]float64 `json:"coordinates"`
		}
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil
		}
		var rings [][][2]float64
		for _, poly := range g.Coordinates {
			rings = append(rings, simplifyAll(poly)...)
		}
		return rings
	default:
		return nil
	}
}

func simplifyAll(rings [][][2]float64) [][][2]float64 {
	out := make([][][2]float64, 0, len(rings))
	for _, ring := range rings {
		if len(ring) < 4 {
			continue
		}
		out = append(out, SimplifyRing(ring))
	}
	return out
}

package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Geometry type names as they appear in GeoJSON and in metadata counts.
const (
	TypePoint           = "Point"
	TypeLineString      = "LineString"
	TypeMultiLineString = "MultiLineString"
)

// Properties holds the canonical property set of a feature. Values are scalars.
type Properties map[string]any

// Feature is one normalized incident: a geometry plus canonical properties.
// Only constructed when a valid geometry exists.
type Feature struct {
	Geometry   geom.T
	Properties Properties
}

// GeometryType returns the GeoJSON type name of the feature geometry.
func (f *Feature) GeometryType() string {
	return GeometryType(f.Geometry)
}

// Source returns the "source" property, or "" if absent.
func (f *Feature) Source() string {
	s, _ := f.Properties["source"].(string)
	return s
}

// MarshalJSON encodes the feature as a GeoJSON Feature object.
func (f *Feature) MarshalJSON() ([]byte, error) {
	if f.Geometry == nil {
		return nil, eris.New("model: feature without geometry")
	}
	gf := &geojson.Feature{
		Geometry:   f.Geometry,
		Properties: f.Properties,
	}
	return gf.MarshalJSON()
}

// GeometryType returns the GeoJSON type name for the supported variants, or ""
// for anything else.
func GeometryType(g geom.T) string {
	switch g.(type) {
	case *geom.Point:
		return TypePoint
	case *geom.LineString:
		return TypeLineString
	case *geom.MultiLineString:
		return TypeMultiLineString
	default:
		return ""
	}
}

// Metadata describes one fusion run.
type Metadata struct {
	Generated     string         `json:"generated"`
	TotalFeatures int            `json:"total_features"`
	Sources       map[string]int `json:"sources"`
	GeometryTypes map[string]int `json:"geometry_types"`
	Rejected      map[string]int `json:"rejected"`
	RunID         string         `json:"run_id,omitempty"`
	DocID         string         `json:"doc_id,omitempty"`
}

// Summary is the standalone statistics document written next to the collection.
type Summary struct {
	DateGeneration string         `json:"date_generation"`
	Sources        map[string]int `json:"sources"`
	GeometryTypes  map[string]int `json:"geometry_types"`
	Total          int            `json:"total"`
}

// Summary derives the summary document from the run metadata.
func (m Metadata) Summary() Summary {
	return Summary{
		DateGeneration: m.Generated,
		Sources:        m.Sources,
		GeometryTypes:  m.GeometryTypes,
		Total:          m.TotalFeatures,
	}
}

// FeatureCollection is the unified output of a run.
type FeatureCollection struct {
	Features []*Feature
	Metadata Metadata
}

// MarshalJSON encodes the collection as
// {"type": "FeatureCollection", "features": [...], "metadata": {...}}.
func (c *FeatureCollection) MarshalJSON() ([]byte, error) {
	features := c.Features
	if features == nil {
		features = []*Feature{}
	}
	return json.Marshal(struct {
		Type     string     `json:"type"`
		Features []*Feature `json:"features"`
		Metadata Metadata   `json:"metadata"`
	}{
		Type:     "FeatureCollection",
		Features: features,
		Metadata: c.Metadata,
	})
}

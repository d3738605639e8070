// Package geometry derives a go-geom geometry from a provider record using a
// fixed priority of fallback rules.
package geometry

import (
	"encoding/json"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/inforoute-cli/internal/model"
)

// Sentinel errors. Both mean "no usable geometry" to callers.
var (
	ErrMalformed   = eris.New("geometry: malformed")
	ErrUnsupported = eris.New("geometry: unsupported type")
)

// Rule identifies which resolution rule produced (or refused) a geometry.
type Rule int

const (
	RuleNone Rule = iota
	RuleSerialized
	RuleNested
	RuleStartEnd
	RulePoint
)

// String returns the rule name used in logs.
func (r Rule) String() string {
	switch r {
	case RuleSerialized:
		return "serialized"
	case RuleNested:
		return "nested"
	case RuleStartEnd:
		return "start_end"
	case RulePoint:
		return "point"
	default:
		return "none"
	}
}

// Resolver holds the candidate field names for each rule. Within a list the
// first present key wins.
type Resolver struct {
	SerializedKeys []string
	NestedKeys     []string
	LatKeys        []string
	LonKeys        []string
	EndLatKeys     []string
	EndLonKeys     []string
	PointKeys      []string
}

// Default is the resolver used by every adapter unless overridden.
var Default = Resolver{
	SerializedKeys: []string{"geojson", "GeoJSON", "geometry_json"},
	NestedKeys:     []string{"geo_shape", "geometry", "shape"},
	LatKeys:        []string{"Latitude", "latitude", "lat"},
	LonKeys:        []string{"Longitude", "longitude", "lon", "lng"},
	EndLatKeys:     []string{"Latitude_fin", "latitude_fin", "lat_fin"},
	EndLonKeys:     []string{"Longitude_fin", "longitude_fin", "lon_fin"},
	PointKeys:      []string{"geo_point_2d", "point", "coordonnees"},
}

// Resolve derives a geometry with the default resolver.
func Resolve(f model.Fields) (geom.T, Rule, error) {
	return Default.Resolve(f)
}

// Resolve applies the rules in order; the first rule whose fields are present
// decides the outcome, there is no merging across rules. A nil geometry with a
// nil error means the record carries no geometry-bearing field at all.
//
//  1. serialized GeoJSON text
//  2. nested geometry object (bare geometry or Feature wrapper)
//  3. start and end coordinate pairs, as a two-point LineString
//  4. a single coordinate pair, direct or combined, as a Point
func (r Resolver) Resolve(f model.Fields) (geom.T, Rule, error) {
	if v, ok := firstSet(f, r.SerializedKeys); ok {
		raw, isText := v.(string)
		if !isText {
			return nil, RuleSerialized, eris.Wrapf(ErrMalformed, "serialized geometry is %T, not text", v)
		}
		g, err := Parse([]byte(raw))
		return g, RuleSerialized, err
	}

	if obj, ok := firstObject(f, r.NestedKeys); ok {
		g, err := fromObject(obj)
		return g, RuleNested, err
	}

	lat, lon, hasStart := r.startPair(f)
	if hasStart {
		endLat, okLat := firstCoord(f, r.EndLatKeys)
		endLon, okLon := firstCoord(f, r.EndLonKeys)
		if okLat && okLon {
			ls := geom.NewLineStringFlat(geom.XY, []float64{lon, lat, endLon, endLat})
			return ls, RuleStartEnd, nil
		}
		return geom.NewPointFlat(geom.XY, []float64{lon, lat}), RulePoint, nil
	}

	return nil, RuleNone, nil
}

// startPair returns the direct latitude/longitude pair, falling back to a
// combined point field.
func (r Resolver) startPair(f model.Fields) (lat, lon float64, ok bool) {
	lat, okLat := firstCoord(f, r.LatKeys)
	lon, okLon := firstCoord(f, r.LonKeys)
	if okLat && okLon {
		return lat, lon, true
	}
	for _, key := range r.PointKeys {
		v, present := f[key]
		if !present || v == nil {
			continue
		}
		if lat, lon, ok := combinedPoint(v); ok {
			return lat, lon, true
		}
	}
	return 0, 0, false
}

// Parse decodes serialized GeoJSON geometry text. Only Point, LineString and
// MultiLineString are accepted; the result is always in XY layout.
func Parse(data []byte) (geom.T, error) {
	var g geom.T
	if err := geojson.Unmarshal(data, &g); err != nil {
		return nil, eris.Wrap(ErrMalformed, err.Error())
	}
	return normalize(g)
}

func fromObject(obj map[string]any) (geom.T, error) {
	if t, _ := obj["type"].(string); t == "Feature" {
		inner, ok := obj["geometry"].(map[string]any)
		if !ok {
			return nil, eris.Wrap(ErrMalformed, "feature wrapper without geometry")
		}
		obj = inner
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, eris.Wrap(ErrMalformed, err.Error())
	}
	return Parse(data)
}

// normalize checks the variant and coordinate counts and drops any Z/M
// ordinates.
func normalize(g geom.T) (geom.T, error) {
	if g == nil {
		return nil, eris.Wrap(ErrMalformed, "null geometry")
	}
	stride := g.Stride()
	switch t := g.(type) {
	case *geom.Point:
		flat := toXY(t.FlatCoords(), stride)
		if len(flat) != 2 {
			return nil, eris.Wrap(ErrMalformed, "point needs exactly one position")
		}
		return geom.NewPointFlat(geom.XY, flat), nil
	case *geom.LineString:
		flat := toXY(t.FlatCoords(), stride)
		if len(flat) < 4 {
			return nil, eris.Wrap(ErrMalformed, "linestring needs at least two positions")
		}
		return geom.NewLineStringFlat(geom.XY, flat), nil
	case *geom.MultiLineString:
		mls := geom.NewMultiLineString(geom.XY)
		for i := 0; i < t.NumLineStrings(); i++ {
			flat := toXY(t.LineString(i).FlatCoords(), stride)
			if len(flat) < 4 {
				return nil, eris.Wrapf(ErrMalformed, "multilinestring member %d needs at least two positions", i)
			}
			if err := mls.Push(geom.NewLineStringFlat(geom.XY, flat)); err != nil {
				return nil, eris.Wrap(ErrMalformed, err.Error())
			}
		}
		if mls.NumLineStrings() == 0 {
			return nil, eris.Wrap(ErrMalformed, "empty multilinestring")
		}
		return mls, nil
	default:
		return nil, eris.Wrapf(ErrUnsupported, "%T", g)
	}
}

func toXY(flat []float64, stride int) []float64 {
	if stride < 2 {
		return nil
	}
	out := make([]float64, 0, len(flat)/stride*2)
	for i := 0; i+1 < len(flat); i += stride {
		if !finite(flat[i]) || !finite(flat[i+1]) {
			return nil
		}
		out = append(out, flat[i], flat[i+1])
	}
	return out
}

// combinedPoint reads {lat, lon} objects and [lat, lon] arrays.
func combinedPoint(v any) (lat, lon float64, ok bool) {
	switch t := v.(type) {
	case map[string]any:
		p := model.Fields(t)
		lat, okLat := firstCoord(p, []string{"lat", "latitude", "Latitude"})
		lon, okLon := firstCoord(p, []string{"lon", "lng", "longitude", "Longitude"})
		return lat, lon, okLat && okLon
	case []any:
		if len(t) != 2 {
			return 0, 0, false
		}
		p := model.Fields{"lat": t[0], "lon": t[1]}
		lat, okLat := p.Float("lat")
		lon, okLon := p.Float("lon")
		return lat, lon, okLat && okLon && lat != 0 && lon != 0
	default:
		return 0, 0, false
	}
}

// firstCoord returns the first non-zero finite coordinate among keys. Zero is
// treated as absent.
func firstCoord(f model.Fields, keys []string) (float64, bool) {
	for _, key := range keys {
		if x, ok := f.Float(key); ok && x != 0 {
			return x, true
		}
	}
	return 0, false
}

// firstSet returns the first value that is not nil, false, zero or the empty
// string. Whitespace-only text counts as set.
func firstSet(f model.Fields, keys []string) (any, bool) {
	for _, key := range keys {
		switch v := f[key].(type) {
		case nil:
		case string:
			if v != "" {
				return v, true
			}
		case bool:
			if v {
				return v, true
			}
		case float64:
			if v != 0 {
				return v, true
			}
		case json.Number:
			if n, err := v.Float64(); err != nil || n != 0 {
				return v, true
			}
		default:
			return v, true
		}
	}
	return nil, false
}

func firstObject(f model.Fields, keys []string) (map[string]any, bool) {
	for _, key := range keys {
		if obj, ok := f.Object(key); ok {
			return obj, true
		}
	}
	return nil, false
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

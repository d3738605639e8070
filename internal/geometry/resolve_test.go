package geometry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/inforoute-cli/internal/model"
)

func TestResolve_PointFromLatLon(t *testing.T) {
	g, rule, err := Resolve(model.Fields{"Latitude": 48.1, "Longitude": -1.6})
	require.NoError(t, err)
	assert.Equal(t, RulePoint, rule)

	p, ok := g.(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, []float64{-1.6, 48.1}, p.FlatCoords())
}

func TestResolve_LineStringFromStartEnd(t *testing.T) {
	g, rule, err := Resolve(model.Fields{
		"Latitude":      48.1,
		"Longitude":     -1.6,
		"Latitude_fin":  48.2,
		"Longitude_fin": -1.7,
	})
	require.NoError(t, err)
	assert.Equal(t, RuleStartEnd, rule)

	ls, ok := g.(*geom.LineString)
	require.True(t, ok)
	assert.Equal(t, 2, ls.NumCoords())
	assert.Equal(t, []float64{-1.6, 48.1, -1.7, 48.2}, ls.FlatCoords())
}

func TestResolve_EndPairIncompleteFallsBackToPoint(t *testing.T) {
	g, rule, err := Resolve(model.Fields{
		"Latitude":     48.1,
		"Longitude":    -1.6,
		"Latitude_fin": 48.2,
	})
	require.NoError(t, err)
	assert.Equal(t, RulePoint, rule)
	assert.IsType(t, &geom.Point{}, g)
}

func TestResolve_NumericStrings(t *testing.T) {
	g, _, err := Resolve(model.Fields{"latitude": "47,21", "longitude": " -1.55 "})
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, []float64{-1.55, 47.21}, g.FlatCoords())
}

func TestResolve_ZeroCoordinateIsAbsent(t *testing.T) {
	g, rule, err := Resolve(model.Fields{"Latitude": 0.0, "Longitude": -1.6})
	require.NoError(t, err)
	assert.Nil(t, g)
	assert.Equal(t, RuleNone, rule)
}

func TestResolve_CombinedPointObject(t *testing.T) {
	g, rule, err := Resolve(model.Fields{
		"geo_point_2d": map[string]any{"lat": 48.11, "lon": -1.68},
	})
	require.NoError(t, err)
	assert.Equal(t, RulePoint, rule)
	assert.Equal(t, []float64{-1.68, 48.11}, g.FlatCoords())
}

func TestResolve_CombinedPointArray(t *testing.T) {
	g, _, err := Resolve(model.Fields{"geo_point_2d": []any{48.11, -1.68}})
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, []float64{-1.68, 48.11}, g.FlatCoords())
}

func TestResolve_SerializedTakesPrecedence(t *testing.T) {
	g, rule, err := Resolve(model.Fields{
		"geojson":   `{"type":"LineString","coordinates":[[-1.5,47.2],[-1.4,47.3],[-1.3,47.4]]}`,
		"Latitude":  48.1,
		"Longitude": -1.6,
	})
	require.NoError(t, err)
	assert.Equal(t, RuleSerialized, rule)

	ls, ok := g.(*geom.LineString)
	require.True(t, ok)
	assert.Equal(t, 3, ls.NumCoords())
}

func TestResolve_SerializedMultiLineString(t *testing.T) {
	g, _, err := Resolve(model.Fields{
		"geojson": `{"type":"MultiLineString","coordinates":[[[-1.5,47.2],[-1.4,47.3]],[[-1.0,47.0],[-1.1,47.1]]]}`,
	})
	require.NoError(t, err)

	mls, ok := g.(*geom.MultiLineString)
	require.True(t, ok)
	assert.Equal(t, 2, mls.NumLineStrings())
}

func TestResolve_SerializedDropsAltitude(t *testing.T) {
	g, _, err := Resolve(model.Fields{"geojson": `{"type":"Point","coordinates":[-1.6,48.1,35]}`})
	require.NoError(t, err)
	assert.Equal(t, geom.XY, g.Layout())
	assert.Equal(t, []float64{-1.6, 48.1}, g.FlatCoords())
}

func TestResolve_SerializedMalformedIsNotPropagated(t *testing.T) {
	g, rule, err := Resolve(model.Fields{
		"geojson":   `{"type":"Point","coordinates":`,
		"Latitude":  48.1,
		"Longitude": -1.6,
	})
	assert.Nil(t, g)
	assert.Equal(t, RuleSerialized, rule)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestResolve_SerializedBlankOrNonText(t *testing.T) {
	for name, v := range map[string]any{
		"whitespace": "   ",
		"number":     12.5,
		"object":     map[string]any{"type": "Point"},
	} {
		t.Run(name, func(t *testing.T) {
			g, rule, err := Resolve(model.Fields{"geojson": v, "Latitude": 48.1, "Longitude": -1.6})
			assert.Nil(t, g)
			assert.Equal(t, RuleSerialized, rule)
			assert.True(t, errors.Is(err, ErrMalformed))
		})
	}
}

func TestResolve_SerializedEmptyIsAbsent(t *testing.T) {
	for _, v := range []any{nil, "", false, 0.0} {
		g, rule, err := Resolve(model.Fields{"geojson": v, "Latitude": 48.1, "Longitude": -1.6})
		require.NoError(t, err)
		assert.Equal(t, RulePoint, rule)
		assert.NotNil(t, g)
	}
}

func TestResolve_SerializedUnsupportedType(t *testing.T) {
	g, _, err := Resolve(model.Fields{
		"geojson": `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`,
	})
	assert.Nil(t, g)
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestResolve_SingleCoordinateLineStringRejected(t *testing.T) {
	_, _, err := Resolve(model.Fields{"geojson": `{"type":"LineString","coordinates":[[-1.5,47.2]]}`})
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestResolve_NestedGeometry(t *testing.T) {
	g, rule, err := Resolve(model.Fields{
		"geo_shape": map[string]any{
			"type":        "LineString",
			"coordinates": []any{[]any{-1.68, 48.11}, []any{-1.67, 48.12}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, RuleNested, rule)
	assert.Equal(t, model.TypeLineString, model.GeometryType(g))
}

func TestResolve_NestedFeatureWrapper(t *testing.T) {
	g, _, err := Resolve(model.Fields{
		"geo_shape": map[string]any{
			"type":       "Feature",
			"properties": map[string]any{},
			"geometry": map[string]any{
				"type":        "Point",
				"coordinates": []any{-1.68, 48.11},
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{-1.68, 48.11}, g.FlatCoords())
}

func TestResolve_NestedUnsupportedDoesNotFallThrough(t *testing.T) {
	g, rule, err := Resolve(model.Fields{
		"geo_shape": map[string]any{
			"type":        "Polygon",
			"coordinates": []any{[]any{[]any{0.0, 0.0}, []any{1.0, 0.0}, []any{1.0, 1.0}, []any{0.0, 0.0}}},
		},
		"geo_point_2d": map[string]any{"lat": 48.11, "lon": -1.68},
	})
	assert.Nil(t, g)
	assert.Equal(t, RuleNested, rule)
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestResolve_NoGeometry(t *testing.T) {
	g, rule, err := Resolve(model.Fields{"Route": "D137", "Commune": "Rennes"})
	require.NoError(t, err)
	assert.Nil(t, g)
	assert.Equal(t, RuleNone, rule)
}

func TestResolver_CustomKeys(t *testing.T) {
	r := Default
	r.LatKeys = []string{"y"}
	r.LonKeys = []string{"x"}

	g, _, err := r.Resolve(model.Fields{"y": 47.0, "x": -2.0})
	require.NoError(t, err)
	assert.Equal(t, []float64{-2.0, 47.0}, g.FlatCoords())
}

func TestRule_String(t *testing.T) {
	tests := []struct {
		rule Rule
		want string
	}{
		{RuleNone, "none"},
		{RuleSerialized, "serialized"},
		{RuleNested, "nested"},
		{RuleStartEnd, "start_end"},
		{RulePoint, "point"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.rule.String())
	}
}

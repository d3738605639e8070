package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/inforoute-cli/internal/model"
)

func fixedClock(ts string) func() time.Time {
	return func() time.Time {
		t, _ := time.Parse(time.RFC3339, ts)
		return t
	}
}

func datexRecord(end string, severity string) model.RawRecord {
	f := model.Fields{
		"Latitude":              48.05,
		"Longitude":             -1.75,
		"Route":                 "N24",
		"Cause":                 "Inondation",
		"subtype":               "flooding",
		"severity":              severity,
		"Description":           "Chaussée inondée",
		"Date_debut":            "2026-01-10T08:00:00+01:00",
		"source_identification": "DIR Ouest",
	}
	if end != "" {
		f["Date_fin"] = end
	}
	return model.RawRecord{ID: "GUID-1", Fields: f}
}

func TestDIRO_ActiveWhenEndInFuture(t *testing.T) {
	a := NewDIRO(fixedClock("2026-01-10T12:00:00Z"))
	res := a.Map(datexRecord("2026-01-11T00:00:00+01:00", "high"))
	require.True(t, res.OK())

	p := res.Feature.Properties
	assert.Equal(t, "diro-GUID-1", p["id"])
	assert.Equal(t, "DIR Ouest", p["source"])
	assert.Equal(t, "Haute", p["priorite"])
	assert.Equal(t, StatutActif, p["statut"])
	assert.Equal(t, true, p["is_active"])
	assert.Equal(t, "N24", p["route"])
	assert.Equal(t, "Inondation", p["cause"])
	assert.Equal(t, "flooding", p["type_coupure"])
}

func TestDIRO_FinishedWhenEndPassed(t *testing.T) {
	a := NewDIRO(fixedClock("2026-01-12T00:00:00Z"))
	res := a.Map(datexRecord("2026-01-11T00:00:00+01:00", "low"))
	require.True(t, res.OK())

	p := res.Feature.Properties
	assert.Equal(t, "Basse", p["priorite"])
	assert.Equal(t, StatutTermine, p["statut"])
	assert.Equal(t, false, p["is_active"])
}

func TestDIRO_NoEndDateIsActive(t *testing.T) {
	a := NewDIRO(fixedClock("2030-01-01T00:00:00Z"))
	res := a.Map(datexRecord("", ""))
	require.True(t, res.OK())
	assert.Equal(t, StatutActif, res.Feature.Properties["statut"])
	assert.Equal(t, "Moyenne", res.Feature.Properties["priorite"])
}

func TestDIRO_RejectionPassesThrough(t *testing.T) {
	observeWarnings(t)

	a := NewDIRO(nil)
	res := a.Map(model.RawRecord{ID: "x", Fields: model.Fields{"Route": "N12"}})
	require.False(t, res.OK())
	assert.Equal(t, ReasonNoGeometry, res.Rejection.Reason)
	assert.Equal(t, "diro", res.Rejection.Source)
}

func TestPrioriteFromSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"highest", "Haute"},
		{"veryHigh", "Haute"},
		{"high", "Haute"},
		{"medium", "Moyenne"},
		{"", "Moyenne"},
		{"unknown", "Moyenne"},
		{"low", "Basse"},
		{"lowest", "Basse"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, PrioriteFromSeverity(tt.in))
		})
	}
}

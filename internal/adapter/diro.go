package adapter

import (
	"strings"
	"time"

	"github.com/sells-group/inforoute-cli/internal/model"
)

// Status values derived for DATEX II records.
const (
	StatutActif   = "Actif"
	StatutTermine = "Terminé"
)

// DIROSchema maps flood records extracted from the DIR Ouest DATEX II
// publication (national road network).
func DIROSchema() Schema {
	return Schema{
		Key:   KeyDIRO,
		Label: "DIR Ouest",
		Fields: []Field{
			{Name: "route", Keys: []string{"Route"}, Default: "N/A"},
			{Name: "cause", Keys: []string{"Cause"}, Kind: KindCause, Default: "Inondation"},
			{Name: "type_coupure", Keys: []string{"subtype"}},
			{Name: "sens_circulation", Keys: []string{"Sens_circulation"}, Default: DefaultSensCirculation},
			{Name: "gestionnaire", Keys: []string{"source_identification"}, Default: "DIR Ouest"},
			{Name: "description", Keys: []string{"Description"}},
			{Name: "severite", Keys: []string{"severity"}},
			{Name: "date_heure", Keys: []string{"Date_debut"}, Kind: KindDate},
			{Name: "date_debut", Keys: []string{"Date_debut"}, Kind: KindDate},
			{Name: "date_fin", Keys: []string{"Date_fin"}, Kind: KindDate},
		},
	}
}

// DIROAdapter maps DATEX II flood records. Unlike the department tables it
// derives priorite from the DATEX severity and statut from the end date.
type DIROAdapter struct {
	base *SchemaAdapter
	now  func() time.Time
}

// NewDIRO returns the DIR Ouest adapter. A nil clock defaults to time.Now.
func NewDIRO(now func() time.Time) *DIROAdapter {
	if now == nil {
		now = time.Now
	}
	return &DIROAdapter{base: NewSchemaAdapter(DIROSchema()), now: now}
}

// Key returns the source tag.
func (a *DIROAdapter) Key() string { return a.base.Key() }

// Label returns the source display label.
func (a *DIROAdapter) Label() string { return a.base.Label() }

// Schema returns the field mapping schema.
func (a *DIROAdapter) Schema() Schema { return a.base.Schema() }

// Map converts one DATEX II record.
func (a *DIROAdapter) Map(rec model.RawRecord) Result {
	res := a.base.Map(rec)
	if !res.OK() {
		return res
	}

	props := res.Feature.Properties
	severity, _ := rec.Fields.String("severity")
	props["priorite"] = PrioriteFromSeverity(severity)

	active := true
	if end, ok := rec.Fields.String("Date_fin"); ok {
		if t, err := time.Parse(time.RFC3339, end); err == nil {
			active = !a.now().After(t)
		}
	}
	props["is_active"] = active
	if active {
		props["statut"] = StatutActif
	} else {
		props["statut"] = StatutTermine
	}
	return res
}

// PrioriteFromSeverity maps a DATEX II overallSeverity onto the priorite scale.
func PrioriteFromSeverity(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "highest", "veryhigh", "high":
		return "Haute"
	case "low", "lowest":
		return "Basse"
	default:
		return DefaultPriorite
	}
}

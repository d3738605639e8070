package fusion

import (
	"time"

	"github.com/sells-group/inforoute-cli/internal/model"
)

// unknownSource buckets features whose source property is missing.
const unknownSource = "unknown"

// ReportOptions carries run identifiers copied verbatim into the metadata.
type ReportOptions struct {
	RunID string
	DocID string
}

// Report builds the run metadata from the final feature list. Counts come
// from a single pass grouping on the source property (translated to the
// source key) and the geometry type, so they partition the list exactly.
// Every source in stats is reported, with zero when it contributed nothing.
func Report(features []*model.Feature, stats []SourceStats, now time.Time, opts ReportOptions) model.Metadata {
	md := model.Metadata{
		Generated:     now.UTC().Format(time.RFC3339),
		TotalFeatures: len(features),
		Sources:       make(map[string]int, len(stats)),
		GeometryTypes: make(map[string]int, 3),
		Rejected:      make(map[string]int, len(stats)),
		RunID:         opts.RunID,
		DocID:         opts.DocID,
	}

	keyByLabel := make(map[string]string, len(stats))
	for _, s := range stats {
		md.Sources[s.Key] = 0
		md.Rejected[s.Key] = s.RejectedTotal()
		keyByLabel[s.Label] = s.Key
	}

	for _, f := range features {
		label := f.Source()
		key, ok := keyByLabel[label]
		switch {
		case ok:
		case label == "":
			key = unknownSource
		default:
			key = label
		}
		md.Sources[key]++
		md.GeometryTypes[f.GeometryType()]++
	}

	return md
}

package provider

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/inforoute-cli/internal/fetcher"
	"github.com/sells-group/inforoute-cli/internal/model"
)

// DefaultDatexURL is the Bison Futé DATEX II publication for the DIR
// networks (national roads).
const DefaultDatexURL = "https://tipi.bison-fute.gouv.fr/bison-fute-ouvert/publicationsDIR/Evenementiel-DIR/grt/RRN/content.xml"

const (
	keywordSubtype     = "flooding-detected-by-keywords"
	defaultSeverity    = "medium"
	defaultRoad        = "N/A"
	defaultDescription = "Pas de description"
	maxDescription     = 300
)

var (
	floodSubtypes = map[string]bool{"flooding": true, "flashFloods": true}
	floodKeywords = []string{"inond", "crue", "flood"}
	operatorTags  = []string{"DIR Ouest", "DIRO"}
	zonelessTimes = []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02T15:04"}
)

// DatexStats counts what each filter stage let through.
type DatexStats struct {
	TotalSituations          int            `json:"total_situations"`
	DIROuest                 int            `json:"dir_ouest"`
	EnvironmentalObstruction int            `json:"environmental_obstruction"`
	Inondations              int            `json:"inondations"`
	Actives                  int            `json:"actives"`
	Terminees                int            `json:"terminees"`
	SansCoords               int            `json:"sans_coords"`
	ParSeverite              map[string]int `json:"par_severite"`
	ParSubtype               map[string]int `json:"par_subtype"`
}

// DatexFloods collects flood events operated by DIR Ouest from a DATEX II
// situation publication.
type DatexFloods struct {
	fetcher fetcher.Fetcher
	url     string
	now     func() time.Time
}

// NewDatexFloods creates the collector. Empty url uses DefaultDatexURL and a
// nil clock uses time.Now.
func NewDatexFloods(f fetcher.Fetcher, url string, now func() time.Time) *DatexFloods {
	if url == "" {
		url = DefaultDatexURL
	}
	if now == nil {
		now = time.Now
	}
	return &DatexFloods{fetcher: f, url: url, now: now}
}

// URL returns the publication address.
func (d *DatexFloods) URL() string { return d.url }

// Collect downloads the publication and extracts the flood records.
func (d *DatexFloods) Collect(ctx context.Context) ([]model.RawRecord, error) {
	body, err := d.fetcher.Download(ctx, d.url, fetcher.WithHeader("Accept", "application/xml"))
	if err != nil {
		return nil, eris.Wrap(err, "datex: fetch publication")
	}
	defer body.Close() //nolint:errcheck

	records, stats, err := d.Extract(ctx, body)
	if err != nil {
		return nil, err
	}

	zap.L().Info("datex publication filtered",
		zap.String("component", "provider.datex"),
		zap.Int("total_situations", stats.TotalSituations),
		zap.Int("dir_ouest", stats.DIROuest),
		zap.Int("environmental_obstruction", stats.EnvironmentalObstruction),
		zap.Int("inondations", stats.Inondations),
		zap.Int("actives", stats.Actives),
		zap.Int("terminees", stats.Terminees),
		zap.Int("sans_coords", stats.SansCoords),
		zap.Any("par_severite", stats.ParSeverite),
		zap.Any("par_subtype", stats.ParSubtype),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// Extract streams situation elements from r and returns the kept records
// in document order together with the filter statistics.
func (d *DatexFloods) Extract(ctx context.Context, r io.Reader) ([]model.RawRecord, DatexStats, error) {
	stats := DatexStats{ParSeverite: map[string]int{}, ParSubtype: map[string]int{}}
	now := d.now()

	situations, errCh := fetcher.StreamXML[fetcher.Node](ctx, r, "situation")

	var out []model.RawRecord
	for sit := range situations {
		stats.TotalSituations++

		severity := defaultSeverity
		if n := sit.Find("overallSeverity"); n != nil && n.Content() != "" {
			severity = n.Content()
		}

		for _, rec := range sit.FindAll("situationRecord") {
			if raw, ok := d.extractRecord(sit.Attr("id"), severity, rec, now, &stats); ok {
				out = append(out, raw)
			}
		}
	}
	if err := <-errCh; err != nil {
		return nil, stats, eris.Wrap(err, "datex: parse publication")
	}
	return out, stats, nil
}

func (d *DatexFloods) extractRecord(sitID, severity string, rec *fetcher.Node, now time.Time, stats *DatexStats) (model.RawRecord, bool) {
	src := rec.Find("sourceIdentification")
	if src == nil || !containsAny(src.Content(), operatorTags) {
		return model.RawRecord{}, false
	}
	stats.DIROuest++

	recordType := rec.Attr("type")
	if !strings.Contains(recordType, "EnvironmentalObstruction") {
		return model.RawRecord{}, false
	}
	if i := strings.IndexByte(recordType, ':'); i >= 0 {
		recordType = recordType[i+1:]
	}
	stats.EnvironmentalObstruction++

	var subtype string
	if n := rec.Find("environmentalObstructionType"); n != nil {
		subtype = n.Content()
		if !floodSubtypes[subtype] {
			return model.RawRecord{}, false
		}
	} else {
		if !containsAny(strings.ToLower(rec.InnerText()), floodKeywords) {
			return model.RawRecord{}, false
		}
		subtype = keywordSubtype
	}
	stats.Inondations++
	stats.ParSubtype[subtype]++

	startNode := rec.Find("overallStartTime")
	if startNode == nil {
		return model.RawRecord{}, false
	}
	start, err := parseDatexTime(startNode.Content())
	if err != nil {
		return model.RawRecord{}, false
	}

	active := true
	var endValue any
	if n := rec.Find("overallEndTime"); n != nil {
		endValue = n.Content()
		if end, err := parseDatexTime(n.Content()); err == nil {
			endValue = end.Format(time.RFC3339)
			active = !now.After(end)
		}
	}
	if active {
		stats.Actives++
	} else {
		stats.Terminees++
	}

	lat, lon, ok := firstPosition(rec)
	if !ok {
		stats.SansCoords++
		return model.RawRecord{}, false
	}

	road := defaultRoad
	if n := rec.Find("roadNumber"); n != nil && n.Content() != "" {
		road = n.Content()
	}

	stats.ParSeverite[severity]++

	id := rec.Attr("id")
	if id == "" {
		id = sitID
	}

	return model.RawRecord{
		ID: id,
		Fields: model.Fields{
			"Latitude":              lat,
			"Longitude":             lon,
			"Route":                 road,
			"Description":           frenchComments(rec),
			"Cause":                 "Inondation",
			"subtype":               subtype,
			"severity":              severity,
			"Date_debut":            start.Format(time.RFC3339),
			"Date_fin":              endValue,
			"source_identification": src.Content(),
			"record_type":           recordType,
			"situation_id":          sitID,
		},
	}, true
}

// firstPosition returns the first latitude and longitude found in the record.
func firstPosition(rec *fetcher.Node) (float64, float64, bool) {
	latNode, lonNode := rec.Find("latitude"), rec.Find("longitude")
	if latNode == nil || lonNode == nil {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(latNode.Content(), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(lonNode.Content(), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// frenchComments joins the French public comments, truncated to
// maxDescription runes.
func frenchComments(rec *fetcher.Node) string {
	var parts []string
	for _, gpc := range rec.FindAll("generalPublicComment") {
		for _, v := range gpc.FindAll("value") {
			if v.Attr("lang") == "fr" && v.Content() != "" {
				parts = append(parts, v.Content())
			}
		}
	}
	if len(parts) == 0 {
		return defaultDescription
	}
	desc := strings.Join(parts, " | ")
	if utf8.RuneCountInString(desc) > maxDescription {
		desc = string([]rune(desc)[:maxDescription])
	}
	return desc
}

// parseDatexTime accepts RFC 3339 timestamps. Timestamps without an offset
// are read as UTC.
func parseDatexTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range zonelessTimes {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("datex: unparseable time %q", s)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

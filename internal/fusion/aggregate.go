package fusion

import (
	"go.uber.org/zap"

	"github.com/sells-group/inforoute-cli/internal/adapter"
	"github.com/sells-group/inforoute-cli/internal/model"
)

// Batch is the raw input of one source. Err records a failed fetch; the
// batch then contributes nothing.
type Batch struct {
	Adapter adapter.Adapter
	Records []model.RawRecord
	Err     error
}

// SourceStats describes what one source contributed to a run.
type SourceStats struct {
	Key      string
	Label    string
	Received int
	Accepted int
	Rejected map[adapter.Reason]int
	FetchErr error
}

// RejectedTotal returns the number of dropped records.
func (s SourceStats) RejectedTotal() int {
	n := 0
	for _, c := range s.Rejected {
		n += c
	}
	return n
}

// Result is the fused, sanitized feature list plus per-source stats, both in
// batch order.
type Result struct {
	Features []*model.Feature
	Stats    []SourceStats
}

// Fuse maps every batch through its adapter, drops rejections, sanitizes the
// survivors and concatenates the batches in the order given. Batches are
// independent: a failed or empty batch yields zero features.
func Fuse(batches []Batch) Result {
	log := zap.L().With(zap.String("component", "fusion.aggregate"))

	var res Result
	for _, b := range batches {
		stats := SourceStats{
			Key:      b.Adapter.Key(),
			Label:    b.Adapter.Label(),
			Received: len(b.Records),
			Rejected: make(map[adapter.Reason]int),
			FetchErr: b.Err,
		}

		features := mapBatch(b.Adapter, b.Records, &stats)
		res.Features = append(res.Features, features...)
		res.Stats = append(res.Stats, stats)

		log.Info("source fused",
			zap.String("source", stats.Key),
			zap.Int("received", stats.Received),
			zap.Int("accepted", stats.Accepted),
			zap.Int("rejected", stats.RejectedTotal()),
		)
	}
	return res
}

func mapBatch(a adapter.Adapter, records []model.RawRecord, stats *SourceStats) []*model.Feature {
	out := make([]*model.Feature, 0, len(records))
	for _, rec := range records {
		r := a.Map(rec)
		if !r.OK() {
			reason := adapter.ReasonMapping
			if r.Rejection != nil {
				reason = r.Rejection.Reason
			}
			stats.Rejected[reason]++
			continue
		}
		out = append(out, Sanitize(r.Feature))
	}
	stats.Accepted = len(out)
	return out
}

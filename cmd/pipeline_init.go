package main

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"

	"github.com/sells-group/inforoute-cli/internal/adapter"
	"github.com/sells-group/inforoute-cli/internal/config"
	"github.com/sells-group/inforoute-cli/internal/fetcher"
	"github.com/sells-group/inforoute-cli/internal/fusion"
	"github.com/sells-group/inforoute-cli/internal/output"
	"github.com/sells-group/inforoute-cli/internal/provider"
)

// selectSources restricts the enabled sources to names. An empty list keeps
// the configured selection.
func selectSources(c *config.Config, names []string) error {
	if len(names) == 0 {
		return nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := c.Source(n); !ok {
			known := adapter.DefaultRegistry(time.Now).AllNames()
			return eris.Errorf("unknown source %q (known: %s)", n, strings.Join(known, ", "))
		}
		want[n] = true
	}
	c.Sources.CD35.Enabled = want[adapter.KeyCD35]
	c.Sources.CD44.Enabled = want[adapter.KeyCD44]
	c.Sources.Rennes.Enabled = want[adapter.KeyRennes]
	c.Sources.DIRO.Enabled = want[adapter.KeyDIRO]
	return nil
}

// buildSources pairs every enabled adapter with its collector, in fusion
// order.
func buildSources(c *config.Config, f fetcher.Fetcher, now func() time.Time) ([]fusion.Source, error) {
	adapters, err := adapter.DefaultRegistry(now).Select(c.EnabledSources())
	if err != nil {
		return nil, err
	}

	grist := provider.GristConfig{
		BaseURL: c.Grist.BaseURL,
		DocID:   c.Grist.DocID,
		APIKey:  c.Grist.APIKey,
	}

	sources := make([]fusion.Source, 0, len(adapters))
	for _, a := range adapters {
		sc, _ := c.Source(a.Key())
		var col fusion.Collector
		if a.Key() == adapter.KeyDIRO {
			col = provider.NewDatexFloods(f, sc.URL, now)
		} else {
			col = provider.NewGristTable(f, grist, sc.Table)
		}
		sources = append(sources, fusion.Source{Adapter: a, Collector: col})
	}
	return sources, nil
}

// newEngine wires the HTTP fetcher, collectors and adapters into an engine.
func newEngine(c *config.Config, rec fusion.Recorder) (*fusion.Engine, error) {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  c.Fetch.UserAgent,
		Timeout:    time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		RatePerSec: c.Fetch.RatePerSec,
	})

	sources, err := buildSources(c, f, time.Now)
	if err != nil {
		return nil, err
	}

	return fusion.NewEngine(sources, fusion.EngineOptions{
		SourceTimeout: time.Duration(c.Fetch.SourceTimeoutSecs) * time.Second,
		MaxParallel:   c.Fetch.MaxParallel,
		DocID:         c.Grist.DocID,
		Recorder:      rec,
	}), nil
}

func newWriter(fs afero.Fs, c *config.Config) *output.Writer {
	return output.NewWriter(fs, output.Options{
		Dir:          c.Output.Dir,
		FeaturesFile: c.Output.FeaturesFile,
		SummaryFile:  c.Output.SummaryFile,
	})
}

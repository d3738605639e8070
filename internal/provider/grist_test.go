package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/inforoute-cli/internal/fetcher"
	"github.com/sells-group/inforoute-cli/internal/model"
)

func newFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 5 * time.Second, RatePerSec: 1000})
}

func TestGristTable_Collect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/o/inforoute/api/docs/doc123/tables/Signalements/records", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"records":[
			{"id": 1, "fields": {"Route": "D177", "Latitude": 48.1, "Longitude": -1.6, "Cause": ["L", "Inondation"]}},
			{"id": 2, "fields": {"geojson": "{\"type\":\"Point\",\"coordinates\":[-1.5,47.2]}"}},
			{"id": 3}
		]}`))
	}))
	defer srv.Close()

	g := NewGristTable(newFetcher(), GristConfig{BaseURL: srv.URL + "/o/inforoute/", DocID: "doc123", APIKey: "key"}, "Signalements")
	records, err := g.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "D177", records[0].Fields["Route"])
	assert.Equal(t, 48.1, records[0].Fields["Latitude"])
	assert.Equal(t, []any{"L", "Inondation"}, records[0].Fields["Cause"])
	assert.Equal(t, "2", records[1].ID)
	assert.Equal(t, model.Fields{}, records[2].Fields)
}

func TestGristTable_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewGristTable(newFetcher(), GristConfig{BaseURL: srv.URL, DocID: "d", APIKey: "bad"}, "Routes_CD44")
	_, err := g.Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Routes_CD44")
	assert.Contains(t, err.Error(), "401")
}

func TestGristTable_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	_, err := NewGristTable(newFetcher(), GristConfig{BaseURL: srv.URL, DocID: "d"}, "T").Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestGristTable_MissingRecordsArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"table not found"}`))
	}))
	defer srv.Close()

	_, err := NewGristTable(newFetcher(), GristConfig{BaseURL: srv.URL, DocID: "d"}, "T").Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no records array")
}

func TestGristTable_EmptyTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"records":[]}`))
	}))
	defer srv.Close()

	records, err := NewGristTable(newFetcher(), GristConfig{BaseURL: srv.URL, DocID: "d"}, "T").Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGristTable_RequiresDocAndTable(t *testing.T) {
	_, err := NewGristTable(newFetcher(), GristConfig{}, "T").Collect(context.Background())
	assert.Error(t, err)

	_, err = NewGristTable(newFetcher(), GristConfig{DocID: "d"}, "").Collect(context.Background())
	assert.Error(t, err)
}

func TestGristTable_URL(t *testing.T) {
	g := NewGristTable(nil, GristConfig{DocID: "abc"}, "Routes Rennes")
	assert.Equal(t, "https://grist.dataregion.fr/o/inforoute/api/docs/abc/tables/Routes%20Rennes/records", g.URL())
	assert.Equal(t, "Routes Rennes", g.Table())
}

func TestGristID(t *testing.T) {
	assert.Equal(t, "12", gristID(float64(12)))
	assert.Equal(t, "x", gristID(" x "))
	assert.Equal(t, "", gristID(nil))
	assert.Equal(t, "", gristID(true))
}

package ui

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cytodash/adapters/source"
	"cytodash/adapters/tabular"
	"cytodash/domain/core"
	"cytodash/domain/taxonomy"
	"cytodash/internal/dashboard"
	"cytodash/internal/ingestion"
	"cytodash/internal/testkit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newServerFor(t, testkit.PanelCSV)
}

func newServerFor(t *testing.T, csv string) *Server {
	t.Helper()
	loader := ingestion.NewLoader(
		tabular.NewDecoder(tabular.Options{}, nil),
		ingestion.NewNormalizer(ingestion.CoercionConfig{}, nil),
		nil,
	)
	ds, err := loader.Load(context.Background(), source.NewBytes("serum.csv", []byte(csv)))
	require.NoError(t, err)

	srv, err := NewServer(dashboard.New(ds, taxonomy.Default(), nil), nil, nil)
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealthz(t *testing.T) {
	w := get(t, newTestServer(t), "/healthz")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", gjson.Get(w.Body.String(), "status").String())
	assert.True(t, gjson.Get(w.Body.String(), "datasetLoaded").Bool())
}

func TestOverview(t *testing.T) {
	w := get(t, newTestServer(t), "/api/overview")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Equal(t, "serum.csv", gjson.Get(body, "source").String())
	assert.Equal(t, int64(5), gjson.Get(body, "patients").Int())
	assert.Equal(t, int64(6), gjson.Get(body, "analytes").Int())
	assert.Equal(t, int64(5), gjson.Get(body, "categories").Int())
	assert.Equal(t, int64(1), gjson.Get(body, "stats.textCells").Int())
}

func TestTimepointsAndCategories(t *testing.T) {
	srv := newTestServer(t)

	w := get(t, srv, "/api/timepoints")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `[0,1,3,5]`, gjson.Get(w.Body.String(), "timepoints").Raw)
	assert.Equal(t, "Hr3", gjson.Get(w.Body.String(), "labels.2").String())

	w = get(t, srv, "/api/categories")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "All", gjson.Get(w.Body.String(), "categories.0").String())
	assert.Equal(t, int64(6), gjson.Get(w.Body.String(), "categories.#").Int())

	w = get(t, srv, "/api/taxonomy")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Growth Factors", gjson.Get(w.Body.String(), "groups.0.name").String())
}

func TestHeaderOnlyTableSerializesEmptyLists(t *testing.T) {
	srv := newServerFor(t, "PATIENT,Group,Timepoint,IL-6 (57)\n")

	w := get(t, srv, "/api/timepoints")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", gjson.Get(w.Body.String(), "timepoints").Raw)
	assert.Equal(t, "[]", gjson.Get(w.Body.String(), "labels").Raw)

	w = get(t, srv, "/api/overview")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", gjson.Get(w.Body.String(), "timepoints").Raw)
}

func TestAnalytes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		target string
		want   []string
	}{
		{"/api/analytes", testkit.PanelAnalytes},
		{"/api/analytes?category=Pro-inflammatory", []string{"IL-6 (57)", "TNFa (75)"}},
		{"/api/analytes?category=All&q=IL-", []string{"IL-6 (57)", "IL-10 (27)"}},
		{"/api/analytes?category=Uncategorized", []string{"Mystery (99)"}},
		{"/api/analytes?category=Hormones", nil},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := get(t, srv, tt.target)
			require.Equal(t, http.StatusOK, w.Code)

			var got []string
			for _, a := range gjson.Get(w.Body.String(), "analytes.#.analyte").Array() {
				got = append(got, a.String())
			}
			assert.Equal(t, tt.want, got)
		})
	}

	w := get(t, srv, "/api/analytes?q=il-6")
	assert.Equal(t, "IL-6", gjson.Get(w.Body.String(), "analytes.0.displayName").String())
	assert.Equal(t, "Pro-inflammatory", gjson.Get(w.Body.String(), "analytes.0.category").String())
}

func TestSeries(t *testing.T) {
	srv := newTestServer(t)

	w := get(t, srv, "/api/series?analyte=IL-6%20(57)")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Equal(t, "Pro-inflammatory", gjson.Get(body, "category").String())
	assert.Equal(t, int64(4), gjson.Get(body, "series.points.#").Int())
	assert.Equal(t, 20.0, gjson.Get(body, "series.points.0.hcMean").Float())
	assert.Equal(t, 50.0, gjson.Get(body, "series.points.0.admciMean").Float())
	assert.Equal(t, int64(3), gjson.Get(body, "stats.0.hc.n").Int())

	w = get(t, srv, "/api/series?analyte=Mystery%20(99)")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, gjson.Null, gjson.Get(w.Body.String(), "series.points.0.admciMean").Type)
}

func TestSeries_UnknownAnalyte(t *testing.T) {
	w := get(t, newTestServer(t), "/api/series?analyte=IL-99")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", gjson.Get(w.Body.String(), "code").String())
}

func TestView_ResolvesDefaults(t *testing.T) {
	srv := newTestServer(t)

	w := get(t, srv, "/api/view")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "All", gjson.Get(w.Body.String(), "category").String())
	assert.Equal(t, "IL-6 (57)", gjson.Get(w.Body.String(), "selected").String())

	w = get(t, srv, "/api/view?category=Chemokines&analyte=IL-6%20(57)&log=true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MCP-1 (67)", gjson.Get(w.Body.String(), "selected").String())
	assert.True(t, gjson.Get(w.Body.String(), "logScale").Bool())
	assert.Equal(t, "Chemokines", gjson.Get(w.Body.String(), "group").String())

	w = get(t, srv, "/api/view?log=sometimes")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChart(t *testing.T) {
	srv := newTestServer(t)

	for _, target := range []string{"/api/chart.png", "/api/chart.png?analyte=TNFa%20(75)&log=true"} {
		w := get(t, srv, target)
		require.Equal(t, http.StatusOK, w.Code, target)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
	}

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/chart.png?log=maybe").Code)
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/chart.png?analyte=nope").Code)
}

func TestReport(t *testing.T) {
	srv := newTestServer(t)

	w := get(t, srv, "/api/report?analyte=IL-6%20(57)")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<table>")

	w = get(t, srv, "/api/report?analyte=IL-6%20(57)&format=markdown")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "| Hr0 | 20.00 pg/mL |")
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t)

	w := get(t, srv, "/?category=Anti-inflammatory")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "<h2>IL-10 <small>Anti-inflammatory</small></h2>")
	assert.Contains(t, body, "/api/chart.png?analyte=IL-10")
	assert.Contains(t, body, "serum.csv with 4 timepoints and 5 cytokine categories")
}

func TestIndex_EscapesAnalyteNames(t *testing.T) {
	srv := newServerFor(t, "PATIENT,Group,Timepoint,<script>alert(1)</script>\n"+
		"P1,HC,0,1.5\n"+
		"P2,AD/MCI,0,2.5\n")

	w := get(t, srv, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<script>alert(1)</script>")

	w = get(t, srv, "/api/report?analyte=%3Cscript%3Ealert(1)%3C%2Fscript%3E")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<script")
}

func TestLoadFailure(t *testing.T) {
	loadErr := core.NewSourceUnavailableError("serum.csv", io.ErrUnexpectedEOF)
	srv, err := NewServer(nil, loadErr, nil)
	require.NoError(t, err)

	for _, target := range []string{"/api/overview", "/api/timepoints", "/api/taxonomy", "/api/categories",
		"/api/analytes", "/api/series?analyte=IL-6", "/api/view", "/api/chart.png", "/api/report"} {
		w := get(t, srv, target)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, target)
		assert.Equal(t, "SOURCE_UNAVAILABLE", gjson.Get(w.Body.String(), "code").String(), target)
		assert.Contains(t, gjson.Get(w.Body.String(), "error").String(), "serum.csv", target)
	}

	w := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "datasetLoaded").Bool())

	w = get(t, srv, "/")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "could not be loaded")
}

func TestLoadFailure_Malformed(t *testing.T) {
	srv, err := NewServer(nil, core.NewHeaderError("Timepoint", "required column missing"), nil)
	require.NoError(t, err)

	w := get(t, srv, "/api/series")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "MALFORMED_INPUT", gjson.Get(w.Body.String(), "code").String())
}

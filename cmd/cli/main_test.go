package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"cytodash/domain/core"
	"cytodash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func writePanel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "serum.csv")
	require.NoError(t, os.WriteFile(path, []byte(testkit.PanelCSV), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PORT", "")
	t.Setenv("GIN_MODE", "")
	t.Setenv("SOURCE_TIMEOUT", "")

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalytesCmd(t *testing.T) {
	data := writePanel(t)

	out, err := run(t, "analytes", "--data", data, "--category", "Pro-inflammatory")
	require.NoError(t, err)

	assert.Contains(t, out, "ANALYTE")
	assert.Contains(t, out, "IL-6 (57)")
	assert.Contains(t, out, "TNFa (75)")
	assert.NotContains(t, out, "EGF (12)")

	out, err = run(t, "analytes", "--data", data, "--search", "mystery")
	require.NoError(t, err)
	assert.Contains(t, out, "Uncategorized")
}

func TestSeriesCmd(t *testing.T) {
	data := writePanel(t)

	out, err := run(t, "series", "IL-6 (57)", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "IL-6 (Pro-inflammatory)")
	assert.Contains(t, out, "20.00")

	out, err = run(t, "series", "Mystery (99)", "--data", data, "--json")
	require.NoError(t, err)
	assert.Equal(t, 1.5, gjson.Get(out, "series.points.0.hcMean").Float())
	assert.Equal(t, gjson.Null, gjson.Get(out, "series.points.0.admciMean").Type)
	assert.Equal(t, int64(2), gjson.Get(out, "stats.0.hc.n").Int())
}

func TestSeriesCmd_UnknownAnalyte(t *testing.T) {
	_, err := run(t, "series", "IL-99", "--data", writePanel(t))

	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))
}

func TestReportCmd(t *testing.T) {
	data := writePanel(t)

	out, err := run(t, "report", "IL-10 (27)", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "# IL-10")
	assert.Contains(t, out, "serum.csv with 4 timepoints and 5 cytokine categories")

	out, err = run(t, "report", "IL-10 (27)", "--data", data, "--html")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
}

func TestChartCmd(t *testing.T) {
	data := writePanel(t)
	png := filepath.Join(t.TempDir(), "il6.png")

	out, err := run(t, "chart", "IL-6 (57)", "--data", data, "-o", png, "--log")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+png)

	written, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(written, []byte("\x89PNG")))

	_, err = run(t, "chart", "IL-6 (57)", "--data", data)
	assert.Error(t, err)
}

func TestOverviewCmd(t *testing.T) {
	data := writePanel(t)

	out, err := run(t, "overview", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "Patients:     5")
	assert.Contains(t, out, "Timepoints:   Hr0, Hr1, Hr3, Hr5")
	assert.Contains(t, out, "Analytes:     6 (1 uncategorized)")

	out, err = run(t, "overview", "--data", data, "--json")
	require.NoError(t, err)
	assert.Equal(t, "serum.csv", gjson.Get(out, "source").String())
}

func TestZeroAsMissingFlag(t *testing.T) {
	data := writePanel(t)

	out, err := run(t, "series", "IL-10 (27)", "--data", data, "--json", "--zero-as-missing")
	require.NoError(t, err)

	// P2's literal zero at hour 1 no longer counts
	assert.Equal(t, 1.2, gjson.Get(out, "series.points.1.hcMean").Float())
}

func TestMissingDataFile(t *testing.T) {
	_, err := run(t, "overview", "--data", filepath.Join(t.TempDir(), "absent.csv"))

	require.Error(t, err)
	assert.True(t, core.IsSourceUnavailable(err))
}

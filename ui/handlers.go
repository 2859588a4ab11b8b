package ui

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"cytodash/domain/taxonomy"
	"cytodash/internal/chart"
	"cytodash/internal/dashboard"
	"cytodash/internal/errors"
	"cytodash/internal/report"

	"github.com/gin-gonic/gin"
)

// analyteInfo is one entry of the analyte picker
type analyteInfo struct {
	Analyte     string `json:"analyte"`
	DisplayName string `json:"displayName"`
	Category    string `json:"category"`
}

// requireDataset rejects API calls while no dataset is loaded
func (s *Server) requireDataset(c *gin.Context) {
	if s.dashboard == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error": s.loadErr.Error(),
			"code":  errors.GetCode(s.loadErr),
		})
		return
	}
	c.Next()
}

func (s *Server) respondError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errors.HTTPStatus(err), gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

// analyteParam returns the requested analyte or the default selection
func (s *Server) analyteParam(c *gin.Context) string {
	if a := strings.TrimSpace(c.Query("analyte")); a != "" {
		return a
	}
	return s.dashboard.DefaultAnalyte()
}

func logParam(c *gin.Context) (bool, error) {
	raw := c.Query("log")
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.InvalidInput("log must be true or false")
	}
	return v, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	status := gin.H{"status": "ok", "datasetLoaded": s.dashboard != nil}
	if s.loadErr != nil {
		status["loadError"] = s.loadErr.Error()
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleOverview(c *gin.Context) {
	c.JSON(http.StatusOK, s.dashboard.Overview())
}

func (s *Server) handleTimepoints(c *gin.Context) {
	tps := s.dashboard.Timepoints()
	labels := make([]string, len(tps))
	for i, tp := range tps {
		labels[i] = tp.Label()
	}
	c.JSON(http.StatusOK, gin.H{"timepoints": tps, "labels": labels})
}

func (s *Server) handleTaxonomy(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"groups": s.dashboard.Taxonomy().Groups()})
}

func (s *Server) handleCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": s.dashboard.Categories()})
}

func (s *Server) handleAnalytes(c *gin.Context) {
	category := c.DefaultQuery("category", taxonomy.CategoryAll)
	search := c.Query("q")

	keys := s.dashboard.FilterAnalytes(category, search)
	analytes := make([]analyteInfo, 0, len(keys))
	for _, k := range keys {
		analytes = append(analytes, analyteInfo{
			Analyte:     k,
			DisplayName: taxonomy.DisplayName(k),
			Category:    s.dashboard.CategoryOf(k),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"search":   search,
		"analytes": analytes,
	})
}

func (s *Server) handleSeries(c *gin.Context) {
	analyte := s.analyteParam(c)

	series, err := s.dashboard.Series(analyte)
	if err != nil {
		s.respondError(c, err)
		return
	}
	stats, err := s.dashboard.Stats(analyte)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"series":   series,
		"stats":    stats,
		"category": series.Category,
	})
}

func (s *Server) handleView(c *gin.Context) {
	var state dashboard.ViewState
	if err := c.ShouldBindQuery(&state); err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	c.JSON(http.StatusOK, s.dashboard.View(state))
}

func (s *Server) handleChart(c *gin.Context) {
	logScale, err := logParam(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	series, err := s.dashboard.Series(s.analyteParam(c))
	if err != nil {
		s.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, series, chart.Options{LogScale: logScale}); err != nil {
		s.logger.Error("[Server] chart for %s: %v", series.Analyte, err)
		s.respondError(c, errors.Wrap(err, "failed to render chart"))
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleReport(c *gin.Context) {
	r, err := report.Generate(s.dashboard, s.analyteParam(c))
	if err != nil {
		s.respondError(c, err)
		return
	}

	if c.Query("format") == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", r.Markdown())
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", r.HTML())
}

// indexPage feeds templates/index.html
type indexPage struct {
	Error      string
	Overview   dashboard.Overview
	Categories []string
	View       dashboard.View
	ChartURL   string
	Report     []byte
}

// handleIndex renders the dashboard page from the query string, so every
// selection is a plain link and needs no script.
func (s *Server) handleIndex(c *gin.Context) {
	if s.dashboard == nil {
		s.renderTemplate(c, http.StatusServiceUnavailable, "index.html", indexPage{Error: s.loadErr.Error()})
		return
	}

	var state dashboard.ViewState
	if err := c.ShouldBindQuery(&state); err != nil {
		s.logger.Debug("[Server] ignoring bad view query: %v", err)
		state = dashboard.ViewState{}
	}

	page := indexPage{
		Overview:   s.dashboard.Overview(),
		Categories: s.dashboard.Categories(),
		View:       s.dashboard.View(state),
	}

	if sel := page.View.Selected; sel != "" {
		q := url.Values{"analyte": {sel}, "log": {strconv.FormatBool(page.View.LogScale)}}
		page.ChartURL = "/api/chart.png?" + q.Encode()
		if r, err := report.Generate(s.dashboard, sel); err == nil {
			page.Report = r.HTML()
		}
	}

	s.renderTemplate(c, http.StatusOK, "index.html", page)
}

package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/socialpulse-cli/internal/analysis"
	"github.com/KaramelBytes/socialpulse-cli/internal/charts"
	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
	"github.com/KaramelBytes/socialpulse-cli/internal/views"
)

// filterQuery carries the filter parameters shared by every analysis route.
// Explicit parameters override the ones stored in a saved view.
type filterQuery struct {
	SearchBy string   `form:"search_by"`
	Value    string   `form:"value"`
	AgeMin   *int     `form:"age_min"`
	AgeMax   *int     `form:"age_max"`
	MinScore *float64 `form:"min_score"`
	View     string   `form:"view"`
}

type pageQuery struct {
	Limit  int `form:"limit,default=100" binding:"gte=1,lte=1000"`
	Offset int `form:"offset" binding:"gte=0"`
}

type topQuery struct {
	Top int `form:"top" binding:"gte=0,lte=500"`
}

type binsQuery struct {
	Bins int    `form:"bins" binding:"gte=0,lte=100"`
	By   string `form:"by"`
}

type chartQuery struct {
	Width  int `form:"width" binding:"omitempty,gte=200,lte=4000"`
	Height int `form:"height" binding:"omitempty,gte=200,lte=4000"`
}

func (s *Server) filterSpec(c *gin.Context) (pipeline.FilterSpec, error) {
	var (
		q    filterQuery
		spec pipeline.FilterSpec
	)
	if err := c.ShouldBindQuery(&q); err != nil {
		return spec, &badRequestError{err}
	}
	if q.View != "" {
		if s.opt.Views == nil {
			return spec, fmt.Errorf("%w: %s", views.ErrNotFound, q.View)
		}
		v, err := s.opt.Views.Get(q.View)
		if err != nil {
			return spec, err
		}
		spec = v.Filter
	}
	if q.SearchBy != "" {
		f, err := pipeline.ParseField(q.SearchBy)
		if err != nil {
			return spec, err
		}
		spec.SearchBy = f
	}
	if _, ok := c.GetQuery("value"); ok {
		spec.Value = q.Value
	}
	if q.AgeMin != nil {
		spec.AgeMin = q.AgeMin
	}
	if q.AgeMax != nil {
		spec.AgeMax = q.AgeMax
	}
	if q.MinScore != nil {
		spec.MinScore = q.MinScore
	}
	if err := spec.Validate(); err != nil {
		return spec, err
	}
	return spec, nil
}

// filtered loads the dataset and applies the request's filter. On failure
// the error reply has already been written.
func (s *Server) filtered(c *gin.Context) (*pipeline.LabeledDataset, pipeline.FilterSpec, []pipeline.Record, bool) {
	data, err := s.opt.Handle.Get()
	if err != nil {
		writeError(c, err)
		return nil, pipeline.FilterSpec{}, nil, false
	}
	spec, err := s.filterSpec(c)
	if err != nil {
		writeError(c, err)
		return nil, spec, nil, false
	}
	view, err := data.View(spec)
	if err != nil {
		writeError(c, err)
		return nil, spec, nil, false
	}
	return data, spec, view, true
}

func bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		writeError(c, &badRequestError{err})
		return false
	}
	return true
}

func (s *Server) health(c *gin.Context) {
	data, err := s.opt.Handle.Get()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, Response{Code: http.StatusServiceUnavailable, Message: "dataset unavailable"})
		return
	}
	success(c, gin.H{"status": "ok", "dataset": data.Name(), "rows": data.Len()})
}

func (s *Server) summary(c *gin.Context) {
	_, spec, view, ok := s.filtered(c)
	if !ok {
		return
	}
	success(c, gin.H{"filter": spec.Describe(), "summary": analysis.ComputeSummary(view)})
}

func (s *Server) rows(c *gin.Context) {
	var page pageQuery
	if !bind(c, &page) {
		return
	}
	_, _, view, ok := s.filtered(c)
	if !ok {
		return
	}
	start := min(page.Offset, len(view))
	end := min(start+page.Limit, len(view))
	success(c, gin.H{"total": len(view), "offset": start, "rows": view[start:end]})
}

func (s *Server) distribution(c *gin.Context) {
	g, err := pipeline.ParseGroupField(c.Param("field"))
	if err != nil {
		writeError(c, err)
		return
	}
	_, _, view, ok := s.filtered(c)
	if !ok {
		return
	}
	d, err := analysis.ComputeDistribution(view, g)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, d)
}

func (s *Server) means(c *gin.Context) {
	g, err := pipeline.ParseGroupField(c.Param("group"))
	if err != nil {
		writeError(c, err)
		return
	}
	n, err := pipeline.ParseNumericField(c.Param("value"))
	if err != nil {
		writeError(c, err)
		return
	}
	_, _, view, ok := s.filtered(c)
	if !ok {
		return
	}
	ms, err := analysis.ComputeGroupedMean(view, g, n)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, gin.H{"group": g.Label(), "value": n.Label(), "means": ms})
}

func (s *Server) correlations(c *gin.Context) {
	var names []string
	if raw := strings.TrimSpace(c.Query("fields")); raw != "" {
		names = strings.Split(raw, ",")
	}
	fields, err := pipeline.ParseNumericFields(names)
	if err != nil {
		writeError(c, err)
		return
	}
	var top topQuery
	if !bind(c, &top) {
		return
	}
	_, _, view, ok := s.filtered(c)
	if !ok {
		return
	}
	m, err := analysis.ComputeCorrelation(view, fields)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, gin.H{"matrix": m, "top_pairs": m.TopPairs(top.Top)})
}

func (s *Server) countries(c *gin.Context) {
	var top topQuery
	if !bind(c, &top) {
		return
	}
	if top.Top == 0 {
		top.Top = s.opt.TopCountries
	}
	_, _, view, ok := s.filtered(c)
	if !ok {
		return
	}
	aggs := analysis.ComputeCountryAggregates(view)
	success(c, gin.H{"countries": len(aggs), "top": analysis.TopCountries(aggs, top.Top)})
}

func (s *Server) insights(c *gin.Context) {
	data, err := s.opt.Handle.Get()
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, analysis.ComputeInsights(data.Records()))
}

func (s *Server) describe(c *gin.Context) {
	n, err := pipeline.ParseNumericField(c.Param("field"))
	if err != nil {
		writeError(c, err)
		return
	}
	by := c.Query("by")
	var g pipeline.GroupField
	if by != "" {
		if g, err = pipeline.ParseGroupField(by); err != nil {
			writeError(c, err)
			return
		}
	}
	_, _, view, ok := s.filtered(c)
	if !ok {
		return
	}
	if by == "" {
		d, err := analysis.Describe(view, n)
		if err != nil {
			writeError(c, err)
			return
		}
		success(c, d)
		return
	}
	ds, err := analysis.DescribeBy(view, n, g)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, ds)
}

func (s *Server) histogram(c *gin.Context) {
	n, err := pipeline.ParseNumericField(c.Param("field"))
	if err != nil {
		writeError(c, err)
		return
	}
	var q binsQuery
	if !bind(c, &q) {
		return
	}
	_, _, view, ok := s.filtered(c)
	if !ok {
		return
	}
	var h analysis.Histogram
	if q.By == "" {
		h, err = analysis.ComputeHistogram(view, n, q.Bins)
	} else {
		var g pipeline.GroupField
		if g, err = pipeline.ParseGroupField(q.By); err == nil {
			h, err = analysis.ComputeHistogramBy(view, n, q.Bins, g)
		}
	}
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, h)
}

func (s *Server) report(c *gin.Context) {
	var top topQuery
	if !bind(c, &top) {
		return
	}
	data, spec, view, ok := s.filtered(c)
	if !ok {
		return
	}
	opt := analysis.DefaultReportOptions()
	opt.TopCountries = s.opt.TopCountries
	if top.Top > 0 {
		opt.TopCountries = top.Top
	}
	rep, err := analysis.BuildReport(data.Name(), data.Records(), view, spec, opt)
	if err != nil {
		writeError(c, err)
		return
	}
	if strings.EqualFold(c.Query("format"), "markdown") {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(rep.Markdown()))
		return
	}
	success(c, rep)
}

func (s *Server) exportCSV(c *gin.Context) {
	data, _, view, ok := s.filtered(c)
	if !ok {
		return
	}
	withLevel := c.Query("with_level")
	opt := pipeline.ExportOptions{IncludeLevel: withLevel == "1" || strings.EqualFold(withLevel, "true")}
	var buf bytes.Buffer
	if err := pipeline.Export(&buf, data.Schema(), view, opt); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="export.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) chartList(c *gin.Context) {
	type entry struct {
		Name  string `json:"name"`
		Title string `json:"title"`
		Split string `json:"split,omitempty"`
	}
	figs := charts.Catalog()
	out := make([]entry, len(figs))
	for i, f := range figs {
		out[i] = entry{Name: f.Name, Title: f.Title, Split: f.Split}
	}
	success(c, out)
}

func (s *Server) chart(c *gin.Context) {
	fig, found := charts.Lookup(c.Param("name"))
	if !found {
		fail(c, http.StatusNotFound, fmt.Sprintf("unknown chart %q (use one of: %s)", c.Param("name"), strings.Join(charts.Names(), ", ")))
		return
	}
	var q chartQuery
	if !bind(c, &q) {
		return
	}
	_, _, view, ok := s.filtered(c)
	if !ok {
		return
	}
	opt := charts.CatalogOptions{Options: s.opt.Chart, TopCountries: s.opt.TopCountries}
	if q.Width > 0 {
		opt.Width = q.Width
	}
	if q.Height > 0 {
		opt.Height = q.Height
	}
	var buf bytes.Buffer
	if err := fig.Render(&buf, view, opt); err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) viewList(c *gin.Context) {
	if s.opt.Views == nil {
		success(c, []*views.View{})
		return
	}
	success(c, s.opt.Views.List())
}

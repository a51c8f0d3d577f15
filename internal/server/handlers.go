package server

import (
	"bytes"
	"errors"
	"html/template"
	"math"
	"net/http"
	"net/url"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	forecaster "github.com/ginilab/go-desforecaster"
	"github.com/ginilab/go-desforecaster/dataset"
	"github.com/ginilab/go-desforecaster/forecast/util"
	"github.com/ginilab/go-desforecaster/internal/logging"
)

var templateFuncs = template.FuncMap{
	"value": func(v float64) string {
		return util.FormatValue(v, 4, "-")
	},
	"valuePtr": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return util.FormatValue(*v, 4, "-")
	},
	"percent": func(v float64) string {
		return util.FormatValue(v, 2, "-") + "%"
	},
	"add": func(a, b int) int {
		return a + b
	},
}

type yearValue struct {
	Year  int      `json:"year"`
	Value *float64 `json:"value"`
}

func yearValues(years []int, y []float64) []yearValue {
	out := make([]yearValue, len(years))
	for i := range years {
		out[i].Year = years[i]
		if !math.IsNaN(y[i]) {
			v := y[i]
			out[i].Value = &v
		}
	}
	return out
}

type dashboardPage struct {
	Request   ForecastRequest
	MinAlpha  float64
	MaxAlpha  float64
	AlphaStep float64
	MinHor    int
	MaxHor    int
	Data      []yearValue
	Results   *forecaster.Results
	ChartURL  string
	Error     *APIError
	Stack     string
	RequestID string
}

func (s *Server) newDashboardPage(r *http.Request, req ForecastRequest) dashboardPage {
	return dashboardPage{
		Request:   req,
		MinAlpha:  MinAlpha,
		MaxAlpha:  MaxAlpha,
		AlphaStep: AlphaStep,
		MinHor:    MinHorizon,
		MaxHor:    MaxHorizon,
		RequestID: logging.RequestID(r.Context()),
	}
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "unable to render page", "page", name, "error", err)
		s.renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	apiErr.RequestID = logging.RequestID(r.Context())
	if apiErr.StatusCode >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "error", err, "code", apiErr.ErrorCode)
	} else {
		s.logger.WarnContext(r.Context(), "request rejected", "error", err, "code", apiErr.ErrorCode)
	}
	render.Render(w, r, apiErr)
}

// handleDashboard shows the data and controls. With run=1 the forecast for the requested alpha
// and horizon is computed and shown as well.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := s.newDashboardPage(r, s.defaultRequest())

	_, years, y, err := s.giniSeries()
	if err != nil {
		s.dashboardError(w, r, page, err)
		return
	}
	page.Data = yearValues(years, y)

	if q.Get("run") != "1" {
		s.renderPage(w, r, http.StatusOK, "dashboard.html", page)
		return
	}

	req, err := s.requestFromQuery(q)
	page.Request = req
	if err != nil {
		s.dashboardError(w, r, page, err)
		return
	}

	res, err := s.runForecast(r.Context(), req)
	if err != nil {
		s.dashboardError(w, r, page, err)
		return
	}
	page.Results = res
	page.ChartURL = "/chart/forecast?" + req.Query().Encode()
	s.renderPage(w, r, http.StatusOK, "dashboard.html", page)
}

func (s *Server) dashboardError(w http.ResponseWriter, r *http.Request, page dashboardPage, err error) {
	apiErr := toAPIError(err)
	page.Error = apiErr
	var compErr *ComputationError
	if errors.As(err, &compErr) {
		page.Stack = string(compErr.Stack)
	}
	s.logger.WarnContext(r.Context(), "dashboard error", "error", err, "code", apiErr.ErrorCode)
	s.renderPage(w, r, apiErr.StatusCode, "dashboard.html", page)
}

// handleReset drops the computed results by returning to the bare dashboard
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleForecastChart(w http.ResponseWriter, r *http.Request) {
	req, err := s.requestFromQuery(r.URL.Query())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	res, err := s.runForecast(r.Context(), req)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := forecaster.RenderFit(&buf, res); err != nil {
		s.renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

type preparationPage struct {
	Preparation *dataset.Preparation
	Columns     []string
	Column      string
	ChartURL    string
	Error       *APIError
	RequestID   string
}

func (s *Server) preparation() (*dataset.Preparation, error) {
	raw, err := s.rawTable()
	if err != nil {
		return nil, err
	}
	return dataset.Prepare(raw, s.cfg.Data.SelectedColumns)
}

// handlePreparation shows how the workbook was cleaned, column= selects the interpolation chart
func (s *Server) handlePreparation(w http.ResponseWriter, r *http.Request) {
	page := preparationPage{RequestID: logging.RequestID(r.Context())}

	prep, err := s.preparation()
	if err != nil {
		apiErr := toAPIError(err)
		page.Error = apiErr
		s.renderPage(w, r, apiErr.StatusCode, "preparation.html", page)
		return
	}
	page.Preparation = prep
	page.Columns = prep.Raw.Columns

	page.Column = r.URL.Query().Get("column")
	if page.Column == "" {
		page.Column = dataset.ColumnGiniDisp
	}
	if !prep.Raw.HasColumn(page.Column) {
		apiErr := NewAPIError(http.StatusNotFound, "UNKNOWN_COLUMN", "Column not found", page.Column)
		page.Error = apiErr
		s.renderPage(w, r, apiErr.StatusCode, "preparation.html", page)
		return
	}
	page.ChartURL = "/chart/interpolation?column=" + url.QueryEscape(page.Column)
	s.renderPage(w, r, http.StatusOK, "preparation.html", page)
}

func (s *Server) handleInterpolationChart(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("column")
	if column == "" {
		column = dataset.ColumnGiniDisp
	}

	raw, err := s.rawTable()
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	before := raw.Clone()
	before.SortByYear()
	beforeY, err := before.Column(column)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	afterY, err := dataset.Clean(raw).Column(column)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := forecaster.PlotInterpolation(&buf, column, before.Years(), beforeY, afterY); err != nil {
		s.renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

type dataResponse struct {
	YearColumn string      `json:"year_column"`
	Column     string      `json:"column"`
	Points     []yearValue `json:"points"`
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	clean, years, y, err := s.giniSeries()
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, dataResponse{
		YearColumn: clean.YearColumn,
		Column:     dataset.ColumnGiniDisp,
		Points:     yearValues(years, y),
	})
}

type forecastResponse struct {
	RunID string `json:"run_id"`
	*forecaster.Results
}

func (s *Server) handleForecastAPI(w http.ResponseWriter, r *http.Request) {
	req, err := s.requestFromBody(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	res, err := s.runForecast(r.Context(), req)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, forecastResponse{
		RunID:   uuid.NewString(),
		Results: res,
	})
}

func (s *Server) handlePreparationAPI(w http.ResponseWriter, r *http.Request) {
	prep, err := s.preparation()
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, prep)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

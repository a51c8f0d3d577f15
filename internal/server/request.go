package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	forecaster "github.com/ginilab/go-desforecaster"
)

// Control bounds of the dashboard
const (
	MinAlpha   = 0.01
	MaxAlpha   = 0.99
	AlphaStep  = 0.01
	MinHorizon = 1
	MaxHorizon = 20
)

// ForecastRequest holds the smoothing controls of a forecast run
type ForecastRequest struct {
	Alpha   float64 `json:"alpha" validate:"gte=0.01,lte=0.99"`
	Horizon int     `json:"horizon" validate:"gte=1,lte=20"`
}

// Options converts the request into forecaster options
func (fr ForecastRequest) Options() *forecaster.Options {
	return forecaster.NewOptions(fr.Alpha, fr.Horizon)
}

// Query encodes the request as dashboard query parameters
func (fr ForecastRequest) Query() url.Values {
	q := url.Values{}
	q.Set("alpha", strconv.FormatFloat(fr.Alpha, 'f', 2, 64))
	q.Set("horizon", strconv.Itoa(fr.Horizon))
	return q
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) defaultRequest() ForecastRequest {
	return ForecastRequest{
		Alpha:   s.cfg.Forecast.DefaultAlpha,
		Horizon: s.cfg.Forecast.DefaultHorizon,
	}
}

// requestFromQuery reads alpha and horizon from the query string, falling back to the
// configured defaults for absent parameters
func (s *Server) requestFromQuery(q url.Values) (ForecastRequest, error) {
	req := s.defaultRequest()
	if v := q.Get("alpha"); v != "" {
		alpha, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, NewAPIError(http.StatusBadRequest, "INVALID_PARAMETER",
				fmt.Sprintf("alpha %q is not a number", v), nil)
		}
		req.Alpha = alpha
	}
	if v := q.Get("horizon"); v != "" {
		horizon, err := strconv.Atoi(v)
		if err != nil {
			return req, NewAPIError(http.StatusBadRequest, "INVALID_PARAMETER",
				fmt.Sprintf("horizon %q is not a whole number", v), nil)
		}
		req.Horizon = horizon
	}
	if err := s.validate.Struct(req); err != nil {
		return req, err
	}
	return req, nil
}

// requestFromBody decodes a JSON body over the configured defaults, an empty body keeps them
func (s *Server) requestFromBody(r *http.Request) (ForecastRequest, error) {
	req := s.defaultRequest()
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		return req, NewAPIError(http.StatusBadRequest, "INVALID_JSON", "Request body contains invalid JSON", err.Error())
	}
	if err := s.validate.Struct(req); err != nil {
		return req, err
	}
	return req, nil
}

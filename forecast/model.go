package forecast

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ginilab/go-desforecaster/forecast/util"
)

// Model represents a serializeable format of a forecast storing the forecast options, fit scores,
// and the final level and slope used for projecting past the training data
type Model struct {
	Options      *Options `json:"options"`
	Observations int      `json:"observations"`
	Level        float64  `json:"level"`
	Slope        float64  `json:"slope"`
	Scores       *Scores  `json:"scores"`
}

// Model returns the serializeable format of the trained forecast
func (f *Forecast) Model() (Model, error) {
	if f == nil {
		return Model{}, ErrUninitializedForecast
	}
	if !f.trained {
		return Model{}, ErrUntrainedForecast
	}
	scores := f.Scores()
	return Model{
		Options:      f.opt,
		Observations: len(f.y),
		Level:        f.Level(),
		Slope:        f.Slope(),
		Scores:       &scores,
	}, nil
}

func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sForecast:\n", prefix, util.IndentExpand(indent, 0)); err != nil {
		return err
	}

	if m.Options != nil {
		if _, err := fmt.Fprintf(w, "%s%sAlpha: %.2f\n", prefix, util.IndentExpand(indent, 1), m.Options.Alpha); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s%sObservations: %d\n", prefix, util.IndentExpand(indent, 1), m.Observations); err != nil {
		return err
	}

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sLevel\tSlope\t\n", prefix, util.IndentExpand(indent, 1)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tbl, "%s%s%.4f\t%.4f\t\n", prefix, util.IndentExpand(indent, 1), m.Level, m.Slope); err != nil {
		return err
	}
	if err := tbl.Flush(); err != nil {
		return err
	}

	if m.Scores != nil {
		if _, err := fmt.Fprintf(w, "%s%sScores:\n", prefix, util.IndentExpand(indent, 0)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%sMAE: %.4f    MSE: %.4f    RMSE: %.4f    MAPE: %.2f%% (%s)    R2: %.3f\n",
			prefix, util.IndentExpand(indent, 1),
			m.Scores.MAE,
			m.Scores.MSE,
			m.Scores.RMSE,
			m.Scores.MAPE,
			MAPEBand(m.Scores.MAPE),
			m.Scores.R2,
		); err != nil {
			return err
		}
	}
	return nil
}

package forecaster

import (
	"fmt"
	"io"

	"github.com/ginilab/go-desforecaster/forecast"
)

// Model is a serializeable summary of a fit forecaster
type Model struct {
	Options   *Options       `json:"options"`
	StartYear int            `json:"start_year"`
	EndYear   int            `json:"end_year"`
	Series    forecast.Model `json:"series_model"`
}

// TablePrint writes the model in a human readable format
func (m Model) TablePrint(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Training Years: %d - %d\n", m.StartYear, m.EndYear); err != nil {
		return err
	}
	if m.Options != nil {
		if _, err := fmt.Fprintf(w, "Horizon: %d\n", m.Options.Horizon); err != nil {
			return err
		}
	}
	return m.Series.TablePrint(w, "", "  ")
}

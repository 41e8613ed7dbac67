// Package export serializes state summaries for download endpoints and the
// offline report CLI.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/couchcryptid/waterbody-recon/internal/domain"
)

// csvHeader is the fixed column order consumers of the CSV download rely on.
var csvHeader = []string{
	"State", "Grade", "Score", "Assessed", "Monitored", "Unmonitored",
	"Severe", "Impaired", "TotalWaterbodies",
}

// WriteCSV renders one row per state summary in input order. Ungraded states
// are included with their N/A grade and sentinel score.
func WriteCSV(w io.Writer, summaries []domain.StateSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range summaries {
		row := []string{
			s.Abbr,
			s.Grade.Letter,
			strconv.Itoa(s.Score),
			strconv.Itoa(s.Assessed),
			strconv.Itoa(s.Monitored),
			strconv.Itoa(s.Unmonitored),
			strconv.Itoa(s.Severity.High),
			strconv.Itoa(s.Categories.Impaired()),
			strconv.Itoa(s.Total),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

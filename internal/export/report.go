package export

import (
	"fmt"
	"io"

	"github.com/couchcryptid/waterbody-recon/internal/domain"
)

// WriteReport renders a plain-text national report: the aggregate header
// followed by one block per state summary.
func WriteReport(w io.Writer, national domain.NationalAggregate, summaries []domain.StateSummary) error {
	bw := &errWriter{w: w}

	bw.printf("National Waterbody Report\n")
	bw.printf("Generated: %s\n\n", national.GeneratedAt.Format("2006-01-02 15:04 UTC"))
	bw.printf("Assessed records: %d\n", national.TotalAssessed)
	bw.printf("Impaired records: %d\n", national.TotalImpaired)
	bw.printf("TMDL gap: %d%%\n", national.TMDLGapPct)
	bw.printf("Addressable causes: %d%%\n", national.AddressablePct)
	if len(national.TopCauses) > 0 {
		bw.printf("\nTop impairment causes:\n")
		for _, c := range national.TopCauses {
			bw.printf("  %s: %d\n", c.Cause, c.Count)
		}
	}

	for _, s := range summaries {
		bw.printf("\n%s\n", s.Abbr)
		bw.printf("  Grade: %s\n", s.Grade.Letter)
		if s.CanGrade {
			bw.printf("  Score: %d\n", s.Score)
		}
		bw.printf("  Source: %s\n", s.DataSource)
		bw.printf("  Waterbodies: %d (assessed %d, monitored %d, unmonitored %d)\n",
			s.Total, s.Assessed, s.Monitored, s.Unmonitored)
		bw.printf("  Impaired: %d\n", s.Categories.Impaired())
		if s.Cycle != "" {
			bw.printf("  Reporting cycle: %s (%s)\n", s.Cycle, s.CycleStatus)
		}
		for i, c := range s.TopCauses {
			if i == 0 {
				bw.printf("  Leading causes:\n")
			}
			bw.printf("    %s: %d\n", c.Cause, c.Count)
		}
	}

	return bw.err
}

// errWriter latches the first write error so the render path stays flat.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// Command report runs the reconciliation engine offline against fixture
// files and emits the CSV and plain-text exports, without standing up the
// service. Useful for inspecting grading output and for diffing engine
// changes against known inputs.
//
// Usage:
//
//	go run ./cmd/report \
//	  -registry data/mock/waterbodies.json \
//	  -assessments data/mock/assessments.json \
//	  -enrichment data/enrichment.yaml \
//	  -csv-out summaries.csv
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/couchcryptid/waterbody-recon/internal/adapter/flow"
	"github.com/couchcryptid/waterbody-recon/internal/adapter/registry"
	"github.com/couchcryptid/waterbody-recon/internal/domain"
	"github.com/couchcryptid/waterbody-recon/internal/export"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	registryPath := flag.String("registry", "", "path to registry JSON file")
	assessmentsPath := flag.String("assessments", "", "path to bulk assessments JSON file")
	enrichmentPath := flag.String("enrichment", "", "optional path to flow/EJ enrichment YAML")
	csvOut := flag.String("csv-out", "", "write CSV summary to this path (default: skip)")
	reportOut := flag.String("report-out", "", "write text report to this path (default: stdout)")
	flag.Parse()

	if *registryPath == "" || *assessmentsPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -registry, -assessments")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	entries, err := registry.Load(*registryPath)
	if err != nil {
		return err
	}

	bulk, err := loadAssessments(*assessmentsPath)
	if err != nil {
		return err
	}

	enrichment := flow.Data{}
	if *enrichmentPath != "" {
		enrichment, err = flow.Load(*enrichmentPath, logger)
		if err != nil {
			return err
		}
	}

	snap, err := domain.ComputeSnapshot(entries, bulk, enrichment.FlowByState, enrichment.EJByState, logger)
	if err != nil {
		logger.Warn("reconciliation fell back to registry view", "error", err)
	}

	if *csvOut != "" {
		if err := writeTo(*csvOut, func(w io.Writer) error {
			return export.WriteCSV(w, snap.Summaries)
		}); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		log.Printf("wrote CSV: %s", *csvOut)
	}

	writeReport := func(w io.Writer) error {
		return export.WriteReport(w, snap.National, snap.Summaries)
	}
	if *reportOut != "" {
		if err := writeTo(*reportOut, writeReport); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		log.Printf("wrote report: %s", *reportOut)
		return nil
	}
	return writeReport(os.Stdout)
}

// loadAssessments reads a bulk payload fixture: either the service response
// shape {"assessments": {...}} or a bare state-keyed map.
func loadAssessments(path string) (map[string][]domain.BulkAssessment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assessments: %w", err)
	}

	var wrapped struct {
		Assessments map[string][]domain.BulkAssessment `json:"assessments"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Assessments != nil {
		return wrapped.Assessments, nil
	}

	var bare map[string][]domain.BulkAssessment
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("parse assessments: %w", err)
	}
	return bare, nil
}

func writeTo(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

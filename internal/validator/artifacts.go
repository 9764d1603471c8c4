package validator

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fm-dev-mx/real-estate-insights/internal/models"
)

// Artifact file names. Both files are regenerated in full on every
// validation run; stale copies from earlier runs are overwritten.
const (
	criticalIDsFile = "critical_gap_ids.csv"
	gapLogFile      = "gap_report.log"
)

// WriteArtifacts renders the report to the report directory: a CSV list of
// property ids with critical gaps and a human-readable log of every gap
// grouped by record. A run over a non-empty record set always rewrites both
// files, so a clean run replaces the previous run's findings instead of
// leaving them stale. Only a run with no input records skips the write.
func (v *Validator) WriteArtifacts(reportDir string, report *models.GapReport) error {
	if report.RecordCount == 0 {
		return nil
	}
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	if err := writeCriticalIDs(filepath.Join(reportDir, criticalIDsFile), report); err != nil {
		return err
	}
	if err := writeGapLog(filepath.Join(reportDir, gapLogFile), report); err != nil {
		return err
	}

	v.logger.WithField("stage", "validation").Infof("Gap report artifacts written to %s", reportDir)
	return nil
}

func writeCriticalIDs(path string, report *models.GapReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"property_id"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, id := range report.CriticalIDs {
		if err := w.Write([]string{id}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func writeGapLog(path string, report *models.GapReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	fmt.Fprintf(f, "run %s: %d gaps across %d records with critical gaps\n\n",
		report.RunID, len(report.Entries), len(report.CriticalIDs))

	current := ""
	for _, entry := range report.Entries {
		if entry.PropertyID != current {
			current = entry.PropertyID
			fmt.Fprintf(f, "property %s:\n", current)
		}
		fmt.Fprintf(f, "  - %s (%s): %s\n", entry.FieldName, entry.Priority, entry.Status)
	}
	return nil
}

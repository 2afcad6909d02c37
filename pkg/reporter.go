package pkg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteSummary writes a text summary of the analysis to w.
func WriteSummary(w io.Writer, m *Mapping) error {
	lines := []string{
		"Photo Rename Report",
		"===================",
		"",
		"Summary:",
		fmt.Sprintf("  - Files to rename: %d", m.Renamed()),
		fmt.Sprintf("  - Files already in standard format (skipped): %d", m.Skipped),
		fmt.Sprintf("  - Files skipped due to errors: %d", len(m.Failed)),
	}
	if n := countBySource(m); len(n) > 0 {
		lines = append(lines,
			"",
			"Date sources:",
			fmt.Sprintf("  - Filename: %d", n[SourceFilename]),
			fmt.Sprintf("  - Embedded metadata: %d", n[SourceMetadata]),
			fmt.Sprintf("  - File modification time: %d", n[SourceModTime]),
		)
	}
	if len(m.Failed) > 0 {
		lines = append(lines, "", "Errors:")
		for _, f := range m.Failed {
			lines = append(lines, fmt.Sprintf("  - %s: %v", f.Path, f.Err))
		}
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func countBySource(m *Mapping) map[string]int {
	counts := make(map[string]int)
	for _, e := range m.Entries {
		counts[e.Source]++
	}
	return counts
}

// GenerateReport writes the summary of m to a text file at reportPath.
func GenerateReport(reportPath string, m *Mapping) error {
	// Ensure the directory for the report exists
	reportDir := filepath.Dir(reportPath)
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for report '%s': %w", reportDir, err)
	}

	file, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("failed to create report file '%s': %w", reportPath, err)
	}
	defer file.Close()

	if err := WriteSummary(file, m); err != nil {
		return fmt.Errorf("failed to write report file '%s': %w", reportPath, err)
	}
	return nil
}

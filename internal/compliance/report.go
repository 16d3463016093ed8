// SPDX-License-Identifier: AGPL-3.0-or-later

package compliance

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	sarifSchema  = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json"
	sarifVersion = "2.1.0"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true) // red
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))           // yellow
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))           // green
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))            // gray
)

// WriteText renders a human readable report.
func WriteText(w io.Writer, res Result) error {
	if len(res.Violations) == 0 {
		_, err := fmt.Fprintln(w, okStyle.Render("✓ No violations found"))
		return err
	}

	for _, v := range res.Violations {
		label := warnStyle.Render("WARN ")
		if v.Severity == SeverityError {
			label = errorStyle.Render("ERROR")
		}
		if _, err := fmt.Fprintf(w, "%s %s %s\n", label, v.Message, dimStyle.Render("["+v.Rule+"]")); err != nil {
			return err
		}
	}

	status := okStyle.Render("valid")
	if !res.Valid {
		status = errorStyle.Render("invalid")
	}
	_, err := fmt.Fprintf(w, "\n%d error(s), %d warning(s): %s\n",
		res.Count(SeverityError), res.Count(SeverityWarn), status)
	return err
}

// WriteJSON renders the result as indented JSON.
func WriteJSON(w io.Writer, res Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string `json:"name"`
	InformationURI string `json:"informationUri,omitempty"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

// WriteSARIF renders the result as a SARIF v2.1.0 log for code scanning upload.
func WriteSARIF(w io.Writer, res Result) error {
	results := make([]sarifResult, 0, len(res.Violations))
	for _, v := range res.Violations {
		level := "warning"
		if v.Severity == SeverityError {
			level = "error"
		}
		sr := sarifResult{
			RuleID:  v.Rule,
			Level:   level,
			Message: sarifMessage{Text: v.Message},
		}
		if v.File != "" {
			sr.Locations = []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: v.File},
				},
			}}
		}
		results = append(results, sr)
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: "repoforge"}},
			Results: results,
		}},
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sarif: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

package formatter

import (
	"encoding/json"
	"io"
	"time"

	"github.com/augustcaio/portfolio-gateway/pkg/version"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	opts Options
}

// JSONOutput represents the JSON output structure
type JSONOutput struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Degraded  bool      `json:"degraded"`
	Report
}

// Format writes the report in JSON format
func (f *JSONFormatter) Format(w io.Writer, report Report) error {
	output := JSONOutput{
		Timestamp: time.Now(),
		Version:   version.String(),
		Degraded:  report.Outcome.Degraded(),
		Report:    report,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// ShouldExit returns the exit code based on the report
func (f *JSONFormatter) ShouldExit(report Report) int {
	return exitCode(f.opts, report)
}

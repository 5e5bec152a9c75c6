package carta

import (
	"fmt"
	"strings"
)

// Pipeline stage names used in warnings and diagnostics
const (
	StageLayout         = "layout"
	StageClassification = "classification"
	StageAssembly       = "assembly"
)

// Warning describes a non-fatal issue encountered during parsing. Anomalies
// like an ambiguous column layout or an unresolved category reduce
// confidence instead of failing the parse; warnings record them for the
// caller.
type Warning struct {
	// Stage is the pipeline stage that raised the warning
	Stage string

	// Message describes the issue
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}

// FormatWarnings formats a warning list for display, one per line
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "\n")
}

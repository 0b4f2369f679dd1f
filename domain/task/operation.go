package task

import "strings"

// Operation represents the type of task operation.
type Operation string

// Operation values for the task queue system.
const (
	OperationAnalysis          Operation = "defectlens.analysis"
	OperationAnalyzeRepository Operation = "defectlens.analysis.run"
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return string(o)
}

// IsAnalysisOperation returns true if this is an analysis pipeline operation.
func (o Operation) IsAnalysisOperation() bool {
	return strings.HasPrefix(string(o), "defectlens.analysis.")
}

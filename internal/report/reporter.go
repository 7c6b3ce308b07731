// Package report collects violations for one file at a time and turns
// them into immutable scan results. Rendering lives in render.go; the
// reporter itself never writes output, which keeps cross-file ordering
// in the orchestrator's hands.
package report

import (
	"github.com/standardbeagle/lcr/internal/sourceindex"
	"github.com/standardbeagle/lcr/internal/types"
)

// generalTag marks emissions that did not come through a rule scope.
const generalTag = "general"

// Reporter accumulates violations for a single file between Flush
// calls. It is not safe for concurrent use; each file scan creates
// its own.
type Reporter struct {
	filePath   string
	sourceIdx  *sourceindex.SourceIndex
	violations []types.ViolationRecord
	counts     types.SeverityCounts
}

// NewReporter creates a reporter for filePath. The source index may be
// nil until the file is parsed; span-based lines then fall back to
// file-level.
func NewReporter(filePath string) *Reporter {
	return &Reporter{filePath: filePath}
}

// SetSourceIndex attaches the file's line table once parsing is done.
func (r *Reporter) SetSourceIndex(idx *sourceindex.SourceIndex) {
	r.sourceIdx = idx
}

// FilePath returns the path this reporter collects for.
func (r *Reporter) FilePath() string {
	return r.filePath
}

// Error records a file-level, untagged error violation.
func (r *Reporter) Error(message string) {
	r.push(types.ViolationRecord{
		Tag:      generalTag,
		RuleName: generalTag,
		Severity: types.SeverityError,
		Message:  message,
	})
}

// ErrorAtLine records an error violation at a 1-based line. Line 0
// degrades to a file-level record.
func (r *Reporter) ErrorAtLine(line int, message string) {
	r.push(types.ViolationRecord{
		Tag:      generalTag,
		RuleName: generalTag,
		Severity: types.SeverityError,
		Message:  message,
		Line:     line,
	})
}

// ErrorAtSpan records an error violation located by a byte span.
func (r *Reporter) ErrorAtSpan(span *types.Span, message string) {
	r.push(types.ViolationRecord{
		Tag:      generalTag,
		RuleName: generalTag,
		Severity: types.SeverityError,
		Message:  message,
		Line:     r.lineOf(span),
	})
}

// RuleScope identifies the rule a scoped reporter emits for.
type RuleScope struct {
	Name     string
	Tag      string
	Severity types.Severity
}

// RecordInput is the structured violation payload rules emit. Line
// wins over Span when both are set.
type RecordInput struct {
	Description string
	Code        string
	Suggestions []types.Suggestion
	Span        *types.Span
	Line        int
}

// ScopedReporter tags every emission with its rule's name, tag, and
// severity.
type ScopedReporter struct {
	parent *Reporter
	scope  RuleScope
}

// ForRule derives a reporter scoped to one rule.
func (r *Reporter) ForRule(scope RuleScope) *ScopedReporter {
	return &ScopedReporter{parent: r, scope: scope}
}

// Record emits a structured violation for the scoped rule.
func (s *ScopedReporter) Record(input RecordInput) {
	line := input.Line
	if line == 0 {
		line = s.parent.lineOf(input.Span)
	}
	s.parent.push(types.ViolationRecord{
		Tag:         s.scope.Tag,
		RuleName:    s.scope.Name,
		Severity:    s.scope.Severity,
		Message:     input.Description,
		Line:        line,
		Code:        input.Code,
		Suggestions: input.Suggestions,
	})
}

// Error records a message at the rule's severity, file-level.
func (s *ScopedReporter) Error(message string) {
	s.Record(RecordInput{Description: message})
}

// ErrorAtLine records a message at the rule's severity and a line.
func (s *ScopedReporter) ErrorAtLine(line int, message string) {
	s.Record(RecordInput{Description: message, Line: line})
}

// ErrorAtSpan records a message at the rule's severity and a span.
func (s *ScopedReporter) ErrorAtSpan(span *types.Span, message string) {
	s.Record(RecordInput{Description: message, Span: span})
}

// Flush snapshots the collected state into a FileScanResult and resets
// the reporter for reuse. Suggestions are deep-copied so later
// mutation cannot reach into the snapshot.
func (r *Reporter) Flush() types.FileScanResult {
	violations := make([]types.ViolationRecord, len(r.violations))
	for i, v := range r.violations {
		copied := v
		if len(v.Suggestions) > 0 {
			copied.Suggestions = append([]types.Suggestion(nil), v.Suggestions...)
		} else {
			copied.Suggestions = []types.Suggestion{}
		}
		violations[i] = copied
	}

	result := types.FileScanResult{
		FilePath:        r.filePath,
		SeverityCounts:  r.counts,
		TotalViolations: r.counts.Total(),
		ErrorViolations: r.counts.Error,
		Violations:      violations,
	}

	r.violations = nil
	r.counts = types.SeverityCounts{}
	return result
}

// push appends a violation and updates severity counters.
func (r *Reporter) push(v types.ViolationRecord) {
	if v.Suggestions == nil {
		v.Suggestions = []types.Suggestion{}
	}
	r.counts.Add(v.Severity)
	r.violations = append(r.violations, v)
}

// lineOf maps a span to a 1-based line, or 0 when no index or span is
// available.
func (r *Reporter) lineOf(span *types.Span) int {
	if span == nil || r.sourceIdx == nil {
		return 0
	}
	return r.sourceIdx.LineOfByte(span.Start)
}

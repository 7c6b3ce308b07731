package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/standardbeagle/lcr/internal/i18n"
	"github.com/standardbeagle/lcr/internal/types"
	"github.com/standardbeagle/lcr/pkg/pathutil"
)

// severityIcon marks each severity in text output.
func severityIcon(sev types.Severity) string {
	switch sev {
	case types.SeverityError:
		return "❌"
	case types.SeverityWarning:
		return "⚠️"
	case types.SeverityOptimizing:
		return "🛠️"
	default:
		return "•"
	}
}

// TextRenderer writes human-readable violations and notifications.
// The orchestrator drives it strictly in input order, so it never
// buffers.
type TextRenderer struct {
	w           io.Writer
	messages    *i18n.Provider
	projectRoot string
	now         func() time.Time
}

// NewTextRenderer creates a renderer writing to w. Paths are displayed
// relative to projectRoot when possible. now is injectable for tests.
func NewTextRenderer(w io.Writer, messages *i18n.Provider, projectRoot string, now func() time.Time) *TextRenderer {
	if now == nil {
		now = time.Now
	}
	return &TextRenderer{w: w, messages: messages, projectRoot: projectRoot, now: now}
}

// RenderFile writes every violation of one file result.
func (r *TextRenderer) RenderFile(result types.FileScanResult) {
	for _, v := range result.Violations {
		r.renderViolation(result.FilePath, v)
	}
}

// renderViolation writes one violation block:
//
//	[HH:MM:SS] <icon> [<tagLabel>]: <ruleName>
//	    File: path[:line]
//	    Description: message
//	    Code: <code>
//	    Suggestion: <joined>
func (r *TextRenderer) renderViolation(filePath string, v types.ViolationRecord) {
	stamp := r.now().Format("15:04:05")
	tagLabel := r.tagLabel(v.Tag)

	fmt.Fprintf(r.w, "[%s] %s [%s]: %s\n", stamp, severityIcon(v.Severity), tagLabel, v.RuleName)

	location := pathutil.ToRelative(filePath, r.projectRoot)
	if v.Line > 0 {
		location = fmt.Sprintf("%s:%d", location, v.Line)
	}
	fmt.Fprintf(r.w, "    %s: %s\n", r.messages.T("render.file"), location)
	fmt.Fprintf(r.w, "    %s: %s\n", r.messages.T("render.description"), v.Message)
	if v.Code != "" {
		fmt.Fprintf(r.w, "    %s: %s\n", r.messages.T("render.code"), v.Code)
	}
	if len(v.Suggestions) > 0 {
		texts := make([]string, len(v.Suggestions))
		for i, s := range v.Suggestions {
			texts[i] = s.Text
			if s.Link != "" {
				texts[i] = s.Text + " (" + s.Link + ")"
			}
		}
		separator := r.messages.T("render.suggestion.separator")
		fmt.Fprintf(r.w, "    %s: %s\n", r.messages.T("render.suggestion"), strings.Join(texts, separator))
	}
}

// RenderNotification writes one diagnostic line.
func (r *TextRenderer) RenderNotification(n types.Notification) {
	stamp := r.now().Format("15:04:05")
	if n.Detail != "" {
		fmt.Fprintf(r.w, "[%s] %s: %s (%s)\n", stamp, n.Level, n.Message, n.Detail)
		return
	}
	fmt.Fprintf(r.w, "[%s] %s: %s\n", stamp, n.Level, n.Message)
}

// tagLabel localises a rule tag, falling back to the untagged label.
func (r *TextRenderer) tagLabel(tag string) string {
	if tag == "" {
		return r.messages.T("tag.untagged")
	}
	if label := r.messages.T("tag." + tag); label != "tag."+tag {
		return label
	}
	return tag
}

// WriteJSON emits the structured scan document to w as a single JSON
// object followed by a newline.
func WriteJSON(w io.Writer, summary *types.ScanSummary) error {
	if summary.Files == nil {
		summary.Files = []types.FileScanResult{}
	}
	if summary.Notifications == nil {
		summary.Notifications = []types.Notification{}
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

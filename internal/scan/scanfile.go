package scan

import (
	"os"

	"github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/internal/i18n"
	"github.com/standardbeagle/lcr/internal/parser"
	"github.com/standardbeagle/lcr/internal/report"
	"github.com/standardbeagle/lcr/internal/rules"
	"github.com/standardbeagle/lcr/internal/types"
)

// readAndScanFile reads filePath and runs scanFile over its content.
func readAndScanFile(p *parser.TreeSitterParser, ruleSet []rules.Rule, messages *i18n.Provider, session *rules.Session, filePath string) (types.FileScanResult, []types.Notification, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return types.FileScanResult{}, nil, errors.NewScanError("read", filePath, err)
	}
	return scanFile(p, ruleSet, messages, session, filePath, content)
}

// scanFile runs the full per-file pipeline: parse, build the rule
// context, dispatch rules, flush. The returned notifications are the
// logs captured during this file's analysis, replayed by the
// orchestrator just before the file's violations.
func scanFile(p *parser.TreeSitterParser, ruleSet []rules.Rule, messages *i18n.Provider, session *rules.Session, filePath string, content []byte) (types.FileScanResult, []types.Notification, error) {
	parsed, err := p.Parse(filePath, content)
	if err != nil {
		return types.FileScanResult{}, nil, err
	}
	defer parsed.Close()

	reporter := report.NewReporter(filePath)
	ctx := rules.NewContext(parsed, filePath, reporter, messages, session)
	logs := rules.RunRules(ctx, ruleSet)

	return reporter.Flush(), logs, nil
}

// parseFailureResult records a file whose parse failed as an
// error-severity outcome without fabricating a violation.
func parseFailureResult(filePath string) types.FileScanResult {
	return types.FileScanResult{
		FilePath:        filePath,
		TotalViolations: 1,
		ErrorViolations: 1,
		Violations:      []types.ViolationRecord{},
	}
}

package scan

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/lcr/internal/config"
	"github.com/standardbeagle/lcr/internal/i18n"
	"github.com/standardbeagle/lcr/internal/report"
	"github.com/standardbeagle/lcr/internal/types"
)

// writeProject lays out files under a fresh root.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// runScan executes a scan with fixed settings for tests.
func runScan(t *testing.T, root string, cfg *config.Config, paths ...string) *types.ScanSummary {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
		cfg.Language = i18n.LanguageEn
		cfg.Workers = 1
	}
	var stderr bytes.Buffer
	return Run(Options{
		Paths:       paths,
		Config:      cfg,
		ProjectRoot: root,
		Stderr:      &stderr,
		Now:         func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
}

func TestScanNoPaths(t *testing.T) {
	root := t.TempDir()
	summary := runScan(t, root, nil)

	assert.Zero(t, summary.Summary.ScannedFiles)
	require.Len(t, summary.Notifications, 1)
	assert.Equal(t, types.NotifyInfo, summary.Notifications[0].Level)
	assert.Equal(t, 0, summary.ExitCode())
}

func TestScanAllPathsMissing(t *testing.T) {
	root := t.TempDir()
	summary := runScan(t, root, nil, filepath.Join(root, "nope.ts"))

	require.NotEmpty(t, summary.Notifications)
	assert.Equal(t, types.NotifyError, summary.Notifications[0].Level)
	assert.Equal(t, 1, summary.ExitCode())
}

func TestScanMissingPathContinues(t *testing.T) {
	root := writeProject(t, map[string]string{"a.ts": "const x = 1\n"})
	summary := runScan(t, root, nil, filepath.Join(root, "gone.ts"), filepath.Join(root, "a.ts"))

	assert.Equal(t, 1, summary.Summary.ScannedFiles)
	require.NotEmpty(t, summary.Notifications)
	assert.Equal(t, types.NotifyError, summary.Notifications[0].Level)
	assert.Equal(t, 0, summary.ExitCode())
}

func TestScanDeepImportSeed(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "import { x } from '../../../../shared/x'\n",
	})
	summary := runScan(t, root, nil, filepath.Join(root, "a.ts"))

	require.Len(t, summary.Files, 1)
	file := summary.Files[0]
	require.Len(t, file.Violations, 1)

	v := file.Violations[0]
	assert.Equal(t, "no-deep-relative-imports", v.RuleName)
	assert.Equal(t, types.SeverityWarning, v.Severity)
	assert.Equal(t, "../../../../shared/x", v.Code)
	assert.Equal(t, 1, v.Line)
	assert.GreaterOrEqual(t, len(v.Suggestions), 1)
	assert.Equal(t, 0, summary.ExitCode())
}

func TestScanDirectCycleSeed(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "import './b'\n",
		"b.ts": "import './a'\n",
	})
	summary := runScan(t, root, nil, filepath.Join(root, "a.ts"), filepath.Join(root, "b.ts"))

	require.Len(t, summary.Files, 2)
	for _, file := range summary.Files {
		var cycleViolations []types.ViolationRecord
		for _, v := range file.Violations {
			if v.RuleName == "no-circular-dependencies" {
				cycleViolations = append(cycleViolations, v)
			}
		}
		require.NotEmpty(t, cycleViolations, "no cycle violation on %s", file.FilePath)
		assert.Contains(t, cycleViolations[0].Code, "a.ts")
		assert.Contains(t, cycleViolations[0].Code, "b.ts")
	}
}

func TestScanDirectoryExpansion(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/a.ts":                  "const a = 1\n",
		"src/sub/b.tsx":             "const b = 2\n",
		"src/c.md":                  "# not code\n",
		"src/types.d.ts":            "declare const t: number\n",
		"src/node_modules/pkg/x.js": "const x = 1\n",
		"dist/bundle.js":            "const bundled = 1\n",
	})
	cfg := config.Default()
	cfg.Language = i18n.LanguageEn
	cfg.Workers = 1
	cfg.IgnorePatterns = []string{"dist/**"}

	summary := runScan(t, root, cfg, root)

	paths := make([]string, 0, len(summary.Files))
	for _, file := range summary.Files {
		rel, err := filepath.Rel(root, file.FilePath)
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"src/a.ts", "src/sub/b.tsx"}, paths)
}

func TestScanDuplicateInputs(t *testing.T) {
	root := writeProject(t, map[string]string{"a.ts": "try { f() } catch (e) { }\n"})
	path := filepath.Join(root, "a.ts")

	summary := runScan(t, root, nil, path, path, path)
	assert.Equal(t, 1, summary.Summary.ScannedFiles)
	require.Len(t, summary.Files, 1)
	assert.Len(t, summary.Files[0].Violations, 1)
}

func TestScanParseFailure(t *testing.T) {
	root := writeProject(t, map[string]string{
		"broken.ts": "const = = = {\n",
		"fine.ts":   "const ok = 1\n",
	})
	summary := runScan(t, root, nil, filepath.Join(root, "broken.ts"), filepath.Join(root, "fine.ts"))

	require.Len(t, summary.Files, 2)
	broken := summary.Files[0]
	assert.Equal(t, 1, broken.ErrorViolations)
	assert.Equal(t, 1, broken.TotalViolations)
	assert.Empty(t, broken.Violations)

	hasParseNote := false
	for _, n := range summary.Notifications {
		if n.Level == types.NotifyError {
			hasParseNote = true
		}
	}
	assert.True(t, hasParseNote)
	assert.Equal(t, 1, summary.ExitCode())
}

func TestScanRuleSettingsApplied(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "try { f() } catch (e) { }\nimport { x } from '../../../x'\n",
	})
	cfg := config.Default()
	cfg.Language = i18n.LanguageEn
	cfg.Workers = 1
	cfg.RuleSettings = map[string]any{
		"no-swallowed-errors":      "off",
		"no-deep-relative-imports": "error",
	}

	summary := runScan(t, root, cfg, filepath.Join(root, "a.ts"))

	require.Len(t, summary.Files, 1)
	require.Len(t, summary.Files[0].Violations, 1)
	v := summary.Files[0].Violations[0]
	assert.Equal(t, "no-deep-relative-imports", v.RuleName)
	assert.Equal(t, types.SeverityError, v.Severity)
	assert.Equal(t, 1, summary.ExitCode())
}

func TestScanAllRulesOff(t *testing.T) {
	root := writeProject(t, map[string]string{"a.ts": "const x = 1\n"})
	cfg := config.Default()
	cfg.Language = i18n.LanguageEn
	cfg.RuleSettings = map[string]any{
		"no-deep-relative-imports": "off",
		"no-circular-dependencies": "off",
		"no-swallowed-errors":      "off",
		"no-catastrophic-regex":    "off",
		"no-deep-clone-in-loop":    "off",
		"no-n2-array-lookup":       "off",
	}

	summary := runScan(t, root, cfg, filepath.Join(root, "a.ts"))
	assert.Zero(t, summary.Summary.ScannedFiles)

	warned := false
	for _, n := range summary.Notifications {
		if n.Level == types.NotifyWarn {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestScanSummaryTotalsConsistent(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "import { x } from '../../../x'\ntry { f() } catch (e) { }\n",
		"b.ts": "for (const s of xs) { /(a+)+$/.test(s) }\n",
	})
	summary := runScan(t, root, nil, filepath.Join(root, "a.ts"), filepath.Join(root, "b.ts"))

	total, errTotal, warnTotal, optTotal := 0, 0, 0, 0
	for _, file := range summary.Files {
		total += file.TotalViolations
		errTotal += file.ErrorViolations
		warnTotal += file.SeverityCounts.Warning
		optTotal += file.SeverityCounts.Optimizing
	}
	assert.Equal(t, total, summary.Summary.ViolationTotals.Total)
	assert.Equal(t, errTotal, summary.Summary.ViolationTotals.Error)
	assert.Equal(t, warnTotal, summary.Summary.ViolationTotals.Warning)
	assert.Equal(t, optTotal, summary.Summary.ViolationTotals.Optimizing)
}

// Worker parallelism is an optimisation only: summaries must be
// byte-identical across worker counts.
func TestScanParallelDeterminism(t *testing.T) {
	defer goleak.VerifyNone(t)

	files := map[string]string{}
	for i := 0; i < 50; i++ {
		name := string(rune('a'+i%26)) + string(rune('0'+i/26)) + ".ts"
		switch i % 4 {
		case 0:
			files["src/"+name] = "import { x } from '../../../../shared/x'\n"
		case 1:
			files["src/"+name] = "try { work() } catch (e) { }\n"
		case 2:
			files["src/"+name] = "for (const s of xs) { /(a+)+$/.test(s) }\n"
		default:
			files["src/"+name] = "items.map(i => JSON.parse(JSON.stringify(i)))\n"
		}
	}
	root := writeProject(t, files)

	render := func(workers int) string {
		cfg := config.Default()
		cfg.Language = i18n.LanguageEn
		cfg.Workers = workers
		summary := runScan(t, root, cfg, filepath.Join(root, "src"))

		var buf bytes.Buffer
		require.NoError(t, report.WriteJSON(&buf, summary))
		return buf.String()
	}

	serial := render(1)
	assert.Equal(t, serial, render(2))
	assert.Equal(t, serial, render(8))
}

func TestScanWorkerEnvOverride(t *testing.T) {
	root := writeProject(t, map[string]string{"a.ts": "const x = 1\n"})
	t.Setenv("AUTO_CR_WORKERS", "4")

	summary := runScan(t, root, nil, filepath.Join(root, "a.ts"))
	assert.Equal(t, 1, summary.Summary.ScannedFiles)
}

func TestScanHotCloneSeed(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "items.map(i => JSON.parse(JSON.stringify(i)))\n",
	})
	summary := runScan(t, root, nil, filepath.Join(root, "a.ts"))

	require.Len(t, summary.Files, 1)
	require.Len(t, summary.Files[0].Violations, 1)
	v := summary.Files[0].Violations[0]
	assert.Equal(t, "no-deep-clone-in-loop", v.RuleName)
	assert.Equal(t, "JSON.parse(JSON.stringify(...))", v.Code)
}

func TestScanViolationsInSourceOrder(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "import { x } from '../../../x'\n" +
			"try { f() } catch (e) { }\n" +
			"for (const s of xs) { ys.includes(s) }\n",
	})
	summary := runScan(t, root, nil, filepath.Join(root, "a.ts"))

	require.Len(t, summary.Files, 1)
	violations := summary.Files[0].Violations
	require.Len(t, violations, 3)

	// Rules run in registry order; lines within each rule ascend
	assert.Equal(t, "no-deep-relative-imports", violations[0].RuleName)
	assert.Equal(t, "no-swallowed-errors", violations[1].RuleName)
	assert.Equal(t, "no-n2-array-lookup", violations[2].RuleName)
}

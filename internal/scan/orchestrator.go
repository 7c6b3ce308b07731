// Package scan orchestrates a review run: path expansion and
// filtering, rule preparation, worker dispatch, and input-ordered
// result assembly.
package scan

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/lcr/internal/config"
	"github.com/standardbeagle/lcr/internal/debug"
	"github.com/standardbeagle/lcr/internal/i18n"
	"github.com/standardbeagle/lcr/internal/parser"
	"github.com/standardbeagle/lcr/internal/report"
	"github.com/standardbeagle/lcr/internal/resolver"
	"github.com/standardbeagle/lcr/internal/rules"
	"github.com/standardbeagle/lcr/internal/types"
	"github.com/standardbeagle/lcr/pkg/pathutil"
)

// workersEnvVar overrides worker selection; see Options.
const workersEnvVar = "AUTO_CR_WORKERS"

// Options carries one scan invocation's inputs.
type Options struct {
	Paths       []string
	Config      *config.Config
	ProjectRoot string

	// Stderr receives text-mode rendering and progress. Defaults to
	// os.Stderr.
	Stderr io.Writer
	// Now is injectable for deterministic text output in tests.
	Now func() time.Time
	// ProgressEnabled forces the progress line decision; resolved by
	// the CLI from the progress mode and TTY state.
	ProgressEnabled bool
}

// Run executes a full scan and returns its summary. All failure modes
// below a fatal worker error are folded into the summary as
// notifications.
func Run(opts Options) *types.ScanSummary {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.ProjectRoot == "" {
		opts.ProjectRoot = pathutil.Normalize(".")
	}

	messages := i18n.For(cfg.Language)
	summary := &types.ScanSummary{}

	var renderer *report.TextRenderer
	if cfg.OutputFormat != config.FormatJSON {
		renderer = report.NewTextRenderer(opts.Stderr, messages, opts.ProjectRoot, opts.Now)
	}
	notify := func(level types.NotificationLevel, message, detail string) {
		summary.Notify(level, message, detail)
		if renderer != nil {
			renderer.RenderNotification(types.Notification{Level: level, Message: message, Detail: detail})
		}
	}

	// Phase 1: validate
	if len(opts.Paths) == 0 {
		notify(types.NotifyInfo, messages.T("notify.noPaths"), "")
		return summary
	}

	// Phase 2: existence filter
	var existing []string
	for _, path := range opts.Paths {
		normalized := pathutil.Normalize(path)
		if _, err := os.Stat(normalized); err != nil {
			notify(types.NotifyError, messages.T("notify.pathMissing", path), "")
			continue
		}
		existing = append(existing, normalized)
	}
	if len(existing) == 0 {
		notify(types.NotifyError, messages.T("notify.allPathsMissing"), "")
		summary.Fatal = true
		return summary
	}

	// Phases 3+4: ignore matcher and expansion
	ignoreBase := cfg.IgnoreBaseDir
	if ignoreBase == "" {
		ignoreBase = opts.ProjectRoot
	}
	matcher := NewIgnoreMatcher(cfg.IgnorePatterns, ignoreBase)
	files := expandPaths(existing, matcher)
	debug.LogScan("expanded %d input paths to %d files", len(existing), len(files))

	// Phase 5: rule preparation
	ruleSet, ruleNotes := rules.ApplySettings(rules.Builtin(), cfg.RuleSettings, messages)
	for _, note := range ruleNotes {
		notify(note.Level, note.Message, note.Detail)
	}
	if cfg.RuleDir != "" {
		if _, err := os.Stat(cfg.RuleDir); err != nil {
			notify(types.NotifyWarn, messages.T("notify.customRules", cfg.RuleDir), err.Error())
		}
	}
	if len(ruleSet) == 0 {
		notify(types.NotifyWarn, messages.T("notify.noRules"), "")
		return summary
	}
	if len(files) == 0 {
		return summary
	}

	// Phase 6: worker-count selection
	workers := selectWorkerCount(cfg, len(files))
	debug.LogScan("scanning %d files with %d workers", len(files), workers)

	// Phase 7: dispatch
	workerInit := WorkerInit{
		RuleDir:      cfg.RuleDir,
		RuleSettings: cfg.RuleSettings,
		Language:     cfg.Language,
		TSConfigPath: cfg.TSConfigPath,
		ProjectRoot:  opts.ProjectRoot,
	}
	if workers <= 1 {
		runSerial(opts, summary, renderer, messages, ruleSet, workerInit, files)
	} else {
		runParallel(opts, summary, renderer, messages, workerInit, files, workers)
	}
	return summary
}

// selectWorkerCount applies the override chain: environment variable,
// explicit configuration, then the automatic heuristic. Explicit
// requests clamp to [0, fileCount]; 0 and 1 both dispatch serially.
func selectWorkerCount(cfg *config.Config, fileCount int) int {
	if raw := os.Getenv(workersEnvVar); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			return config.ClampWorkers(value, fileCount)
		}
	}
	if cfg.Workers >= 0 {
		return config.ClampWorkers(cfg.Workers, fileCount)
	}
	return config.AutoWorkerCount(fileCount)
}

// expandPaths turns the surviving input paths into the ordered,
// deduplicated list of scannable files. node_modules is always
// skipped; the ignore matcher applies at every directory entry.
func expandPaths(paths []string, matcher *IgnoreMatcher) []string {
	var files []string
	seen := make(map[string]bool)

	push := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		if matcher.Ignored(path) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			if types.IsScannablePath(path) {
				push(path)
			}
			continue
		}

		filepath.WalkDir(path, func(entry string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if d.Name() == "node_modules" || (entry != path && matcher.Ignored(entry)) {
					return filepath.SkipDir
				}
				return nil
			}
			if matcher.Ignored(entry) {
				return nil
			}
			if types.IsScannablePath(entry) {
				push(pathutil.Normalize(entry))
			}
			return nil
		})
	}
	return files
}

// fileOutcome pairs a finished file with its captured logs.
type fileOutcome struct {
	result types.FileScanResult
	logs   []types.Notification
}

// emit replays a file's logs and then its violations, in that order,
// folding both into the summary.
func emit(summary *types.ScanSummary, renderer *report.TextRenderer, outcome fileOutcome) {
	for _, log := range outcome.logs {
		summary.Notify(log.Level, log.Message, log.Detail)
		if renderer != nil {
			renderer.RenderNotification(log)
		}
	}
	summary.Accumulate(outcome.result)
	if renderer != nil {
		renderer.RenderFile(outcome.result)
	}
}

// runSerial scans files in input order on the calling goroutine. The
// file list is already deduplicated, so each path parses exactly once.
func runSerial(opts Options, summary *types.ScanSummary, renderer *report.TextRenderer, messages *i18n.Provider, ruleSet []rules.Rule, workerInit WorkerInit, files []string) {
	session := rules.NewSession(resolver.New(workerInit.ProjectRoot, workerInit.TSConfigPath))
	p := parser.Acquire()
	defer parser.Release(p)

	for i, file := range files {
		outcome := func() fileOutcome {
			result, logs, err := readAndScanFile(p, ruleSet, messages, session, file)
			if err != nil {
				return parseFailureOutcome(messages, file, err)
			}
			return fileOutcome{result: result, logs: logs}
		}()

		emit(summary, renderer, outcome)
		progress(opts, i+1, len(files))
	}
	progressDone(opts, len(files))
}

// parseFailureOutcome converts a per-file failure into the error
// notification plus the error-severity file outcome.
func parseFailureOutcome(messages *i18n.Provider, file string, err error) fileOutcome {
	return fileOutcome{
		result: parseFailureResult(file),
		logs: []types.Notification{{
			Level:   types.NotifyError,
			Message: messages.T("notify.parseFailed", file),
			Detail:  err.Error(),
		}},
	}
}

// runParallel fans files out across workers and reassembles results in
// input order behind an output cursor.
func runParallel(opts Options, summary *types.ScanSummary, renderer *report.TextRenderer, messages *i18n.Provider, workerInit WorkerInit, files []string, workers int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	requests := make(chan TaskRequest)
	responses := make(chan TaskResponse, workers)

	group, ctx := errgroup.WithContext(ctx)
	for id := 0; id < workers; id++ {
		w := newWorker(id, workerInit)
		group.Go(func() error { return w.run(ctx, requests, responses) })
	}

	// Feed analyze tasks in input order, then one shutdown per worker.
	group.Go(func() error {
		defer close(requests)
		for i, file := range files {
			select {
			case requests <- TaskRequest{Type: MessageAnalyze, ID: i, FilePath: file}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		for id := 0; id < workers; id++ {
			select {
			case requests <- TaskRequest{Type: MessageShutdown}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	pending := make(map[int]fileOutcome)
	cursor := 0
	received := 0
	fatal := false

	for received < len(files) {
		select {
		case <-ctx.Done():
			fatal = true
		case response := <-responses:
			received++
			if response.Type == MessageError {
				pending[response.ID] = parseFailureOutcome(messages, response.FilePath, fmt.Errorf("%s", response.Message))
			} else {
				pending[response.ID] = fileOutcome{result: response.Summary, logs: response.Logs}
			}
			for {
				outcome, ok := pending[cursor]
				if !ok {
					break
				}
				delete(pending, cursor)
				emit(summary, renderer, outcome)
				cursor++
				progress(opts, cursor, len(files))
			}
		}
		if fatal {
			break
		}
	}

	cancel()
	var workerErr error
	if err := group.Wait(); err != nil && err != context.Canceled {
		fatal = true
		workerErr = err
	}
	if fatal {
		detail := ""
		if workerErr != nil {
			detail = workerErr.Error()
		}
		summary.Fatal = true
		summary.Notify(types.NotifyError, messages.T("notify.workerFatal"), detail)
		if renderer != nil {
			renderer.RenderNotification(types.Notification{Level: types.NotifyError, Message: messages.T("notify.workerFatal"), Detail: detail})
		}
		return
	}
	progressDone(opts, len(files))
}

// progress writes the single-line completion counter when enabled.
func progress(opts Options, done, total int) {
	if opts.ProgressEnabled {
		fmt.Fprintf(opts.Stderr, "\rscanned %d/%d", done, total)
	}
}

// progressDone terminates the progress line.
func progressDone(opts Options, total int) {
	if opts.ProgressEnabled && total > 0 {
		fmt.Fprint(opts.Stderr, "\n")
	}
}

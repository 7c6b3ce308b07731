// Package config defines the pre-parsed configuration value the scan
// core consumes, plus the optional .lcr.kdl loader that produces it.
package config

import (
	"runtime"

	"github.com/standardbeagle/lcr/internal/i18n"
)

// OutputFormat selects text or structured output.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ProgressMode controls the stderr progress line in text mode.
type ProgressMode string

const (
	ProgressTTYOnly ProgressMode = "tty-only"
	ProgressYes     ProgressMode = "yes"
	ProgressNo      ProgressMode = "no"
)

// Config is the scan configuration after all external loading is done.
// The core never reads configuration files through any other path.
type Config struct {
	// RuleSettings maps rule names to their setting values: "off",
	// "warn"/"warning", "error", "optimizing", booleans, or 0/1/2.
	RuleSettings map[string]any

	// IgnorePatterns are ordered doublestar globs matched against both
	// absolute and base-relative POSIX paths.
	IgnorePatterns []string
	// IgnoreBaseDir anchors relative ignore matching; usually the
	// directory of the ignore file.
	IgnoreBaseDir string

	Language     i18n.Language
	OutputFormat OutputFormat
	Progress     ProgressMode

	// Workers <0 means auto-select per file count and CPU count.
	Workers int

	TSConfigPath string
	RuleDir      string
}

// Default returns the configuration used when nothing is loaded.
func Default() *Config {
	return &Config{
		RuleSettings: map[string]any{},
		Language:     i18n.DefaultLanguage,
		OutputFormat: FormatText,
		Progress:     ProgressTTYOnly,
		Workers:      -1,
	}
}

// AutoWorkerCount picks the worker count for fileCount files when no
// explicit count is configured: small scans stay single-threaded,
// larger ones use every core but one.
func AutoWorkerCount(fileCount int) int {
	if fileCount < 20 {
		return 1
	}
	workers := runtime.NumCPU() - 1
	if workers < 1 {
		workers = 1
	}
	if workers > fileCount {
		workers = fileCount
	}
	return workers
}

// ClampWorkers bounds an explicit worker request to [0, fileCount].
// A request of 0 is preserved: it means serial dispatch, the same as
// 1, and must read back as 0 in diagnostics.
func ClampWorkers(requested, fileCount int) int {
	if requested > fileCount {
		requested = fileCount
	}
	if requested < 0 {
		requested = 0
	}
	return requested
}

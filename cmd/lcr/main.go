package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lcr/internal/config"
	"github.com/standardbeagle/lcr/internal/i18n"
	"github.com/standardbeagle/lcr/internal/report"
	"github.com/standardbeagle/lcr/internal/scan"
	"github.com/standardbeagle/lcr/internal/types"
	"github.com/standardbeagle/lcr/internal/version"
	"github.com/standardbeagle/lcr/pkg/pathutil"
)

func main() {
	app := &cli.App{
		Name:                   "lcr",
		Usage:                  "Lightning fast code review for JavaScript and TypeScript",
		Version:                version.Info(),
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   ".lcr.kdl",
			},
			&cli.StringFlag{
				Name:  "ignore-path",
				Usage: "Ignore file with one glob pattern per line",
			},
			&cli.StringFlag{
				Name:  "tsconfig",
				Usage: "tsconfig.json used for alias and rootDirs resolution",
			},
			&cli.StringFlag{
				Name:    "rules",
				Aliases: []string{"r"},
				Usage:   "Directory of custom rules",
			},
			&cli.StringFlag{
				Name:    "lang",
				Usage:   "Message language: zh or en",
				EnvVars: []string{"AUTO_CR_LANG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text or json",
			},
			&cli.StringFlag{
				Name:  "progress",
				Usage: "Progress line: tty-only, yes, or no",
			},
			&cli.BoolFlag{
				Name:  "stdin",
				Usage: "Read additional paths from stdin",
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "Project root (defaults to the working directory)",
			},
		},
		Action: runScan,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runScan wires flags into the scan configuration, executes the scan,
// and maps the summary to an exit code.
func runScan(c *cli.Context) error {
	projectRoot := pathutil.Normalize(".")
	if rootFlag := c.String("root"); rootFlag != "" {
		projectRoot = pathutil.Normalize(rootFlag)
	}

	cfg, cfgErr := loadConfigWithOverrides(c, projectRoot)

	paths := append([]string(nil), c.Args().Slice()...)
	if c.Bool("stdin") {
		input, err := io.ReadAll(os.Stdin)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to read stdin: %v", err), 1)
		}
		paths = append(paths, scan.SplitStdinPaths(input)...)
	}

	summary := scan.Run(scan.Options{
		Paths:           paths,
		Config:          cfg,
		ProjectRoot:     projectRoot,
		Stderr:          os.Stderr,
		ProgressEnabled: progressEnabled(cfg),
	})

	// A config load problem surfaces as a warn notification; defaults
	// already applied.
	if cfgErr != nil {
		summary.Notify(types.NotifyWarn, i18n.For(cfg.Language).T("notify.configLoad", c.String("config")), cfgErr.Error())
	}

	if cfg.OutputFormat == config.FormatJSON {
		if err := report.WriteJSON(os.Stdout, summary); err != nil {
			return cli.Exit(fmt.Sprintf("failed to write output: %v", err), 1)
		}
	}

	if code := summary.ExitCode(); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

// loadConfigWithOverrides loads .lcr.kdl and applies CLI flag
// overrides on top. The returned error is non-fatal; defaults apply.
func loadConfigWithOverrides(c *cli.Context, projectRoot string) (*config.Config, error) {
	configPath := c.String("config")
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(projectRoot, configPath)
	}

	cfg, err := config.LoadKDL(configPath)

	if lang := c.String("lang"); lang != "" {
		cfg.Language = i18n.ParseLanguage(lang)
	}
	if format := c.String("format"); format != "" {
		switch config.OutputFormat(format) {
		case config.FormatText, config.FormatJSON:
			cfg.OutputFormat = config.OutputFormat(format)
		}
	}
	if progress := c.String("progress"); progress != "" {
		switch config.ProgressMode(progress) {
		case config.ProgressTTYOnly, config.ProgressYes, config.ProgressNo:
			cfg.Progress = config.ProgressMode(progress)
		}
	}
	if tsconfig := c.String("tsconfig"); tsconfig != "" {
		cfg.TSConfigPath = pathutil.Normalize(tsconfig)
	} else if cfg.TSConfigPath != "" && !filepath.IsAbs(cfg.TSConfigPath) {
		cfg.TSConfigPath = filepath.Join(projectRoot, cfg.TSConfigPath)
	}
	if ruleDir := c.String("rules"); ruleDir != "" {
		cfg.RuleDir = pathutil.Normalize(ruleDir)
	}

	if ignorePath := c.String("ignore-path"); ignorePath != "" {
		patterns, base, loadErr := loadIgnoreFile(ignorePath)
		if loadErr != nil && err == nil {
			err = loadErr
		}
		cfg.IgnorePatterns = append(cfg.IgnorePatterns, patterns...)
		cfg.IgnoreBaseDir = base
	}

	return cfg, err
}

// loadIgnoreFile reads one glob pattern per line, skipping blanks and
// # comments. The file's directory becomes the relative match base.
func loadIgnoreFile(path string) ([]string, string, error) {
	normalized := pathutil.Normalize(path)
	content, err := os.ReadFile(normalized)
	if err != nil {
		return nil, "", err
	}

	var patterns []string
	for _, line := range scan.SplitStdinPaths(content) {
		if line == "" || line[0] == '#' {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, filepath.Dir(normalized), nil
}

// progressEnabled resolves the progress mode against the terminal.
func progressEnabled(cfg *config.Config) bool {
	if cfg.OutputFormat == config.FormatJSON {
		return false
	}
	switch cfg.Progress {
	case config.ProgressYes:
		return true
	case config.ProgressNo:
		return false
	default:
		info, err := os.Stderr.Stat()
		return err == nil && info.Mode()&os.ModeCharDevice != 0
	}
}

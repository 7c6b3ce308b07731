package config

import (
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/internal/i18n"
)

// LoadKDL loads configuration from a .lcr.kdl file. A missing file is
// not an error: defaults apply. A malformed file returns the defaults
// alongside the error so the caller can warn and continue.
//
// Shape:
//
//	scan {
//	    workers 4
//	    language "zh"
//	    format "text"
//	    progress "tty-only"
//	    tsconfig "./tsconfig.json"
//	}
//	rules {
//	    no-swallowed-errors "off"
//	    no-deep-relative-imports "error"
//	}
//	ignore {
//	    pattern "dist/**"
//	    pattern "**/*.gen.ts"
//	}
func LoadKDL(path string) (*Config, error) {
	cfg := Default()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.NewConfigError("file", path, err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return cfg, errors.NewConfigError("file", path, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "scan":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Workers = v
					}
				case "language":
					if v, ok := firstStringArg(cn); ok {
						cfg.Language = i18n.ParseLanguage(v)
					}
				case "format":
					if v, ok := firstStringArg(cn); ok && (v == string(FormatText) || v == string(FormatJSON)) {
						cfg.OutputFormat = OutputFormat(v)
					}
				case "progress":
					if v, ok := firstStringArg(cn); ok {
						switch ProgressMode(v) {
						case ProgressTTYOnly, ProgressYes, ProgressNo:
							cfg.Progress = ProgressMode(v)
						}
					}
				case "tsconfig":
					if v, ok := firstStringArg(cn); ok {
						cfg.TSConfigPath = v
					}
				case "rule-dir":
					if v, ok := firstStringArg(cn); ok {
						cfg.RuleDir = v
					}
				}
			}
		case "rules":
			for _, cn := range n.Children {
				name := nodeName(cn)
				if name == "" {
					continue
				}
				cfg.RuleSettings[name] = firstArgValue(cn)
			}
		case "ignore":
			for _, cn := range n.Children {
				if nodeName(cn) != "pattern" {
					continue
				}
				if v, ok := firstStringArg(cn); ok {
					cfg.IgnorePatterns = append(cfg.IgnorePatterns, v)
				}
			}
		}
	}

	return cfg, nil
}

// Helper functions leveraging the kdl-go document model.

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// firstArgValue returns the raw first argument for rule settings so
// the registry interprets strings, booleans, and numbers uniformly.
// A bare node with no argument means "enabled with defaults".
func firstArgValue(n *document.Node) any {
	if len(n.Arguments) == 0 {
		return nil
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v)
	default:
		return v
	}
}

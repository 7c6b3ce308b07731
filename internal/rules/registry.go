package rules

import (
	"fmt"
	"sort"

	edlib "github.com/hbollon/go-edlib"

	"github.com/standardbeagle/lcr/internal/i18n"
	"github.com/standardbeagle/lcr/internal/types"
)

// Builtin returns the built-in rule set in execution order. The slice
// is freshly allocated; callers may filter it.
func Builtin() []Rule {
	return []Rule{
		{Name: "no-deep-relative-imports", Tag: TagBase, Severity: types.SeverityWarning, Run: runDeepRelativeImports},
		{Name: "no-circular-dependencies", Tag: TagBase, Severity: types.SeverityWarning, Run: runCircularDependencies},
		{Name: "no-swallowed-errors", Tag: TagBase, Severity: types.SeverityWarning, Run: runSwallowedErrors},
		{Name: "no-catastrophic-regex", Tag: TagPerformance, Severity: types.SeverityOptimizing, Run: runCatastrophicRegex},
		{Name: "no-deep-clone-in-loop", Tag: TagPerformance, Severity: types.SeverityOptimizing, Run: runDeepCloneInLoop},
		{Name: "no-n2-array-lookup", Tag: TagPerformance, Severity: types.SeverityOptimizing, Run: runN2ArrayLookup},
	}
}

// ApplySettings filters and re-severities rules according to the
// user's per-rule settings. Unknown names and invalid values produce
// warn notifications and leave defaults intact.
func ApplySettings(rules []Rule, settings map[string]any, messages *i18n.Provider) ([]Rule, []types.Notification) {
	var notifications []types.Notification
	if len(settings) == 0 {
		return rules, nil
	}

	byName := make(map[string]int, len(rules))
	names := make([]string, 0, len(rules))
	for i, rule := range rules {
		byName[rule.Name] = i
		names = append(names, rule.Name)
	}

	// Deterministic notification order regardless of map iteration.
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	disabled := make(map[string]bool)
	for _, name := range keys {
		idx, known := byName[name]
		if !known {
			hint := ""
			if suggestion, err := edlib.FuzzySearchThreshold(name, names, 0.6, edlib.Levenshtein); err == nil && suggestion != "" {
				hint = messages.T("notify.unknownRuleHint", suggestion)
			}
			notifications = append(notifications, types.Notification{
				Level:   types.NotifyWarn,
				Message: messages.T("notify.unknownRule", name, hint),
			})
			continue
		}

		severity, off, ok := parseSetting(settings[name])
		switch {
		case !ok:
			notifications = append(notifications, types.Notification{
				Level:   types.NotifyWarn,
				Message: messages.T("notify.invalidSetting", fmt.Sprintf("%v", settings[name]), name),
			})
		case off:
			disabled[name] = true
		case severity != "":
			rules[idx].Severity = severity
		}
	}

	kept := rules[:0]
	for _, rule := range rules {
		if !disabled[rule.Name] {
			kept = append(kept, rule)
		}
	}
	return kept, notifications
}

// parseSetting interprets one rule setting value. The accepted forms
// are off|false|0 (disable), true or nil (default severity),
// warn|warning|1, error|2, and optimizing.
func parseSetting(value any) (severity types.Severity, off bool, ok bool) {
	switch v := value.(type) {
	case nil:
		return "", false, true
	case bool:
		return "", !v, true
	case string:
		switch v {
		case "off":
			return "", true, true
		case "warn", "warning":
			return types.SeverityWarning, false, true
		case "error":
			return types.SeverityError, false, true
		case "optimizing":
			return types.SeverityOptimizing, false, true
		}
		return "", false, false
	case int:
		return severityFromNumber(v)
	case int64:
		return severityFromNumber(int(v))
	case float64:
		if v != float64(int(v)) {
			return "", false, false
		}
		return severityFromNumber(int(v))
	}
	return "", false, false
}

func severityFromNumber(n int) (types.Severity, bool, bool) {
	switch n {
	case 0:
		return "", true, true
	case 1:
		return types.SeverityWarning, false, true
	case 2:
		return types.SeverityError, false, true
	}
	return "", false, false
}

package i18n

// Message tables. Keys are grouped by consumer: render.* for the text
// reporter, rule.* for rule findings, notify.* for scan notifications.

var enTable = map[string]string{
	"render.file":                 "File",
	"render.description":          "Description",
	"render.code":                 "Code",
	"render.suggestion":           "Suggestion",
	"render.suggestion.separator": "; ",

	"tag.base":        "base",
	"tag.performance": "performance",
	"tag.general":     "general",
	"tag.untagged":    "untagged",

	"rule.no-deep-relative-imports.message":              "relative import climbs %d levels, which couples this file to distant directory layout",
	"rule.no-deep-relative-imports.suggestion.alias":     "configure a path alias (e.g. @/shared) in tsconfig paths and import through it",
	"rule.no-deep-relative-imports.suggestion.aggregate": "re-export the target from a nearby index module and import that instead",

	"rule.no-circular-dependencies.message":    "circular dependency: %s",
	"rule.no-circular-dependencies.suggestion": "break the cycle by extracting the shared part into its own module",
	"rule.no-circular-dependencies.unresolved": "import %q matched an alias or workspace rule but resolved to no file",

	"rule.no-swallowed-errors.message":    "catch/finally block swallows the error without handling it",
	"rule.no-swallowed-errors.suggestion": "log the error, rethrow it, or add a comment explaining why ignoring it is safe",

	"rule.no-catastrophic-regex.message":    "regex %s nests unbounded quantifiers and can backtrack catastrophically on hot paths",
	"rule.no-catastrophic-regex.suggestion": "bound the inner quantifier or rewrite the group so the engine cannot re-partition matches",

	"rule.no-deep-clone-in-loop.message":    "deep clone %s runs on every iteration",
	"rule.no-deep-clone-in-loop.suggestion": "hoist the clone out of the loop or copy only the fields that change",

	"rule.no-n2-array-lookup.message":    "linear array search %q inside a loop makes the scan quadratic",
	"rule.no-n2-array-lookup.suggestion": "build a Map or Set before the loop and look up by key",

	"notify.noPaths":         "no paths provided",
	"notify.allPathsMissing": "all paths missing",
	"notify.pathMissing":     "path does not exist: %s",
	"notify.parseFailed":     "failed to parse %s",
	"notify.ruleFailed":      "rule execution failed: %s at %s",
	"notify.noRules":         "no rules enabled, nothing to scan",
	"notify.invalidSetting":  "invalid severity setting %q for rule %s, keeping default",
	"notify.unknownRule":     "unknown rule %q in settings%s",
	"notify.unknownRuleHint": " (did you mean %q)",
	"notify.customRules":     "failed to load custom rules from %s",
	"notify.ignoreLoad":      "failed to load ignore file %s",
	"notify.configLoad":      "failed to load config %s, using defaults",
	"notify.workerFatal":     "worker failed, scan aborted",
}

var zhTable = map[string]string{
	"render.file":                 "文件",
	"render.description":          "描述",
	"render.code":                 "代码",
	"render.suggestion":           "建议",
	"render.suggestion.separator": "；",

	"tag.base":        "基础",
	"tag.performance": "性能",
	"tag.general":     "通用",
	"tag.untagged":    "未分类",

	"rule.no-deep-relative-imports.message":              "相对导入向上跨越了 %d 层目录，使该文件与远处的目录结构强耦合",
	"rule.no-deep-relative-imports.suggestion.alias":     "在 tsconfig paths 中配置路径别名（如 @/shared）并通过别名导入",
	"rule.no-deep-relative-imports.suggestion.aggregate": "在就近的 index 模块中聚合导出目标，再从该模块导入",

	"rule.no-circular-dependencies.message":    "循环依赖：%s",
	"rule.no-circular-dependencies.suggestion": "将共享部分抽取为独立模块以打破循环",
	"rule.no-circular-dependencies.unresolved": "导入 %q 命中了别名或 workspace 规则，但未解析到任何文件",

	"rule.no-swallowed-errors.message":    "catch/finally 块吞掉了错误而未做任何处理",
	"rule.no-swallowed-errors.suggestion": "记录错误、重新抛出，或注释说明为何可以安全忽略",

	"rule.no-catastrophic-regex.message":    "正则 %s 嵌套了无界量词，在热路径上可能产生灾难性回溯",
	"rule.no-catastrophic-regex.suggestion": "给内层量词加上界，或重写分组使引擎无法重新划分匹配",

	"rule.no-deep-clone-in-loop.message":    "深拷贝 %s 在每次迭代中都会执行",
	"rule.no-deep-clone-in-loop.suggestion": "将拷贝提升到循环外，或仅复制发生变化的字段",

	"rule.no-n2-array-lookup.message":    "循环内的线性数组查找 %q 使整体复杂度变为平方级",
	"rule.no-n2-array-lookup.suggestion": "在循环前构建 Map 或 Set，循环内按键查找",

	"notify.noPaths":         "未提供任何路径",
	"notify.allPathsMissing": "所有路径均不存在",
	"notify.pathMissing":     "路径不存在：%s",
	"notify.parseFailed":     "解析 %s 失败",
	"notify.ruleFailed":      "规则执行失败：%s（文件 %s）",
	"notify.noRules":         "没有启用任何规则，无需扫描",
	"notify.invalidSetting":  "规则 %[2]s 的严重级别设置 %[1]q 无效，保留默认值",
	"notify.unknownRule":     "设置中存在未知规则 %q%s",
	"notify.unknownRuleHint": "（是否想配置 %q）",
	"notify.customRules":     "自定义规则加载失败：%s",
	"notify.ignoreLoad":      "忽略文件加载失败：%s",
	"notify.configLoad":      "配置 %s 加载失败，使用默认配置",
	"notify.workerFatal":     "工作进程失败，扫描中止",
}

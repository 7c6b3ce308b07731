package scan

import (
	"context"
	"fmt"

	"github.com/standardbeagle/lcr/internal/debug"
	"github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/internal/i18n"
	"github.com/standardbeagle/lcr/internal/parser"
	"github.com/standardbeagle/lcr/internal/resolver"
	"github.com/standardbeagle/lcr/internal/rules"
	"github.com/standardbeagle/lcr/internal/types"
)

// Worker protocol message types. Workers run in-process today, but the
// message shapes stay explicit so the protocol can cross a process
// boundary without redesign.
const (
	MessageAnalyze  = "analyze"
	MessageResult   = "result"
	MessageError    = "error"
	MessageShutdown = "shutdown"
)

// WorkerInit configures a worker once, before any task.
type WorkerInit struct {
	RuleDir      string
	RuleSettings map[string]any
	Language     i18n.Language
	TSConfigPath string
	ProjectRoot  string
}

// TaskRequest asks a worker to analyse one file. Type is
// MessageAnalyze or MessageShutdown.
type TaskRequest struct {
	Type     string
	ID       int
	FilePath string
}

// TaskResponse is the single reply to one analyze request. Either
// Summary (Type == MessageResult) or Message (Type == MessageError) is
// meaningful.
type TaskResponse struct {
	Type     string
	ID       int
	FilePath string
	Summary  types.FileScanResult
	Logs     []types.Notification
	Message  string
}

// worker owns per-worker state: its parser, resolver, and rule caches.
// Nothing here is shared across workers.
type worker struct {
	id       int
	rules    []rules.Rule
	messages *i18n.Provider
	session  *rules.Session
	parser   *parser.TreeSitterParser
}

// newWorker applies the init message: locale, tsconfig override, and
// rule severity overrides. Custom-rule load warnings are suppressed
// here; the orchestrator already reported them.
func newWorker(id int, init WorkerInit) *worker {
	messages := i18n.For(init.Language)
	ruleSet, _ := rules.ApplySettings(rules.Builtin(), init.RuleSettings, messages)

	return &worker{
		id:       id,
		rules:    ruleSet,
		messages: messages,
		session:  rules.NewSession(resolver.New(init.ProjectRoot, init.TSConfigPath)),
		parser:   parser.Acquire(),
	}
}

// run consumes requests until shutdown or cancellation, sending
// exactly one response per analyze request. A panic anywhere below
// surfaces as the worker's fatal error instead of crashing the scan.
func (w *worker) run(ctx context.Context, requests <-chan TaskRequest, responses chan<- TaskResponse) (err error) {
	defer parser.Release(w.parser)
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewWorkerError(w.id, fmt.Errorf("panic: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case request, ok := <-requests:
			if !ok || request.Type == MessageShutdown {
				debug.LogWorker("worker %d shutting down", w.id)
				return nil
			}
			if request.Type != MessageAnalyze {
				return errors.NewWorkerError(w.id, fmt.Errorf("unexpected request type %q", request.Type))
			}

			response := w.analyze(request)
			select {
			case responses <- response:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// analyze scans one file and never fails the worker: per-file errors
// become error responses.
func (w *worker) analyze(request TaskRequest) TaskResponse {
	result, logs, err := readAndScanFile(w.parser, w.rules, w.messages, w.session, request.FilePath)
	if err != nil {
		return TaskResponse{
			Type:     MessageError,
			ID:       request.ID,
			FilePath: request.FilePath,
			Message:  err.Error(),
		}
	}
	return TaskResponse{
		Type:     MessageResult,
		ID:       request.ID,
		FilePath: request.FilePath,
		Summary:  result,
		Logs:     logs,
	}
}

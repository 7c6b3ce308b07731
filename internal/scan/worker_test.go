package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/internal/i18n"
)

func startWorker(t *testing.T, root string) (chan TaskRequest, chan TaskResponse, chan error) {
	t.Helper()
	requests := make(chan TaskRequest)
	responses := make(chan TaskResponse, 4)
	done := make(chan error, 1)

	w := newWorker(0, WorkerInit{Language: i18n.LanguageEn, ProjectRoot: root})
	go func() { done <- w.run(context.Background(), requests, responses) }()
	return requests, responses, done
}

func TestWorkerTaskCycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	path := filepath.Join(root, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("try { f() } catch (e) { }\n"), 0o644))

	requests, responses, done := startWorker(t, root)

	requests <- TaskRequest{Type: MessageAnalyze, ID: 7, FilePath: path}
	response := <-responses
	assert.Equal(t, MessageResult, response.Type)
	assert.Equal(t, 7, response.ID)
	assert.Equal(t, path, response.FilePath)
	assert.Equal(t, 1, response.Summary.TotalViolations)

	requests <- TaskRequest{Type: MessageShutdown}
	assert.NoError(t, <-done)
}

func TestWorkerErrorResponse(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	broken := filepath.Join(root, "broken.ts")
	require.NoError(t, os.WriteFile(broken, []byte("const = = {\n"), 0o644))

	requests, responses, done := startWorker(t, root)

	// A missing file and a parse failure both produce exactly one
	// error response each; the worker keeps running.
	requests <- TaskRequest{Type: MessageAnalyze, ID: 1, FilePath: filepath.Join(root, "gone.ts")}
	first := <-responses
	assert.Equal(t, MessageError, first.Type)
	assert.Equal(t, 1, first.ID)
	assert.NotEmpty(t, first.Message)

	requests <- TaskRequest{Type: MessageAnalyze, ID: 2, FilePath: broken}
	second := <-responses
	assert.Equal(t, MessageError, second.Type)
	assert.Equal(t, 2, second.ID)

	requests <- TaskRequest{Type: MessageShutdown}
	assert.NoError(t, <-done)
}

func TestWorkerClosedChannelShutsDown(t *testing.T) {
	defer goleak.VerifyNone(t)

	requests, _, done := startWorker(t, t.TempDir())
	close(requests)
	assert.NoError(t, <-done)
}

func TestWorkerUnexpectedRequestIsFatal(t *testing.T) {
	defer goleak.VerifyNone(t)

	requests, _, done := startWorker(t, t.TempDir())
	requests <- TaskRequest{Type: "bogus"}

	err := <-done
	var workerErr *errors.WorkerError
	require.ErrorAs(t, err, &workerErr)
	assert.Equal(t, 0, workerErr.WorkerID)
}

func TestWorkerCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	requests := make(chan TaskRequest)
	responses := make(chan TaskResponse)
	ctx, cancel := context.WithCancel(context.Background())

	w := newWorker(1, WorkerInit{Language: i18n.LanguageEn, ProjectRoot: t.TempDir()})
	done := make(chan error, 1)
	go func() { done <- w.run(ctx, requests, responses) }()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

// Package debug provides opt-in diagnostic logging for the scan
// pipeline. Output is disabled unless LCR_DEBUG is set or a writer is
// installed explicitly; it never goes to stdout, which is reserved for
// structured scan output.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	debugMutex  sync.Mutex
	debugOutput io.Writer
	initialized bool
)

// SetOutput installs a custom writer for debug output. Pass nil to
// disable.
func SetOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
	initialized = true
}

// writer resolves the active writer, consulting LCR_DEBUG once.
func writer() io.Writer {
	if !initialized {
		if os.Getenv("LCR_DEBUG") != "" {
			debugOutput = os.Stderr
		}
		initialized = true
	}
	return debugOutput
}

// logf writes one timestamped line with a subsystem prefix.
func logf(subsystem, format string, args ...any) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	w := writer()
	if w == nil {
		return
	}
	stamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(w, "[%s] %s: %s\n", stamp, subsystem, fmt.Sprintf(format, args...))
}

// Log writes a general debug line.
func Log(format string, args ...any) {
	logf("lcr", format, args...)
}

// LogScan writes a scan-pipeline debug line.
func LogScan(format string, args ...any) {
	logf("scan", format, args...)
}

// LogResolver writes a module-resolution debug line.
func LogResolver(format string, args ...any) {
	logf("resolver", format, args...)
}

// LogWorker writes a worker-protocol debug line.
func LogWorker(format string, args ...any) {
	logf("worker", format, args...)
}

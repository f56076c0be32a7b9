package sf2

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// Error taxonomy, spec.md §7. ErrIO and ErrFormat are sentinels so callers
// can classify a failure with errors.Is; OutOfMemory is represented directly
// by Go's own allocation failures (panics), since this loader never retries
// or degrades an allocation failure.
var (
	// ErrIO reports that a FileCallbacks method returned failure.
	ErrIO = errors.New("sf2: i/o error")

	// ErrFormat reports a structural violation: bad chunk id/size,
	// non-monotonic bag indices, a size mismatch, or an unsupported
	// version. Always fatal; parsing aborts.
	ErrFormat = errors.New("sf2: malformed SoundFont file")
)

// errIO wraps a lower-level I/O failure so that errors.Is(err, ErrIO) holds
// and errors.Is still finds the original error (e.g. io.EOF).
func errIO(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

// logger is package-level so parse/fixup/import warnings share one sink.
// Library callers that want their own handler can point this at it with
// SetLogger; by default it writes to stderr the way log.Default() would.
var logger = newDefaultLogger()

func newDefaultLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false, Prefix: "sf2"})
}

// SetLogger replaces the logger used for SemanticWarning reporting. Passing
// nil restores the default stderr logger.
func SetLogger(l *log.Logger) {
	if l == nil {
		logger = newDefaultLogger()
		return
	}
	logger = l
}

// warnf logs a recoverable SemanticWarning: the offending entity is
// repaired, disabled, or discarded, and parsing proceeds.
func warnf(format string, args ...any) {
	logger.Warnf(format, args...)
}

// debugf logs a SemanticWarning repair that is too routine to surface as a
// warning (e.g. a loop point clamp), per spec.md §4.9.
func debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

package logging

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger wraps a *log.Logger with the three severities the server's
// operator-facing output needs. It is safe for concurrent use because
// *log.Logger already serializes writes internally.
type Logger struct {
	l     *log.Logger
	debug bool
}

// New returns a Logger writing to w. Debug output is enabled when the
// TAGKV_DEBUG environment variable is set to a non-empty value.
func New(w io.Writer) *Logger {
	return &Logger{
		l:     log.New(w, "", log.LstdFlags),
		debug: os.Getenv("TAGKV_DEBUG") != "",
	}
}

func (lg *Logger) Infof(format string, args ...any) {
	lg.l.Output(2, "INFO  "+fmt.Sprintf(format, args...))
}

func (lg *Logger) Errorf(format string, args ...any) {
	lg.l.Output(2, "ERROR "+fmt.Sprintf(format, args...))
}

func (lg *Logger) Debugf(format string, args ...any) {
	if !lg.debug {
		return
	}
	lg.l.Output(2, "DEBUG "+fmt.Sprintf(format, args...))
}

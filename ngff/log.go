package ngff

import "time"

// ModeFlag is the lowest severity that reaches the logger.
type ModeFlag uint

const (
	DebugMode ModeFlag = iota
	InfoMode
	WarningMode
	ErrorMode
	CriticalMode
	SilentMode
)

var (
	// Verbose is set by the command-line -verbose flag.
	Verbose bool

	mode ModeFlag

	logger Logger = stdLogger{}
)

// Logger receives the reader's and transformer's messages.  Formats follow
// fmt.Printf.  Hosts that embed the reader install their own with SetLogger.
type Logger interface {
	// Debugf traces metadata decoding and node-by-node progress.
	Debugf(format string, args ...interface{})

	// Infof reports configuration and service events.
	Infof(format string, args ...interface{})

	// Warningf reports input that is unsupported but skipped, such as a path
	// beyond the first or a property row without a label value.
	Warningf(format string, args ...interface{})

	// Errorf reports failed requests and reads.
	Errorf(format string, args ...interface{})

	// Criticalf reports failures that stop the command or service.
	Criticalf(format string, args ...interface{})

	// Shutdown flushes and closes any log file.
	Shutdown()
}

// SetLogMode drops messages below the given severity.  SilentMode drops all
// of them.
func SetLogMode(newMode ModeFlag) {
	mode = newMode
}

// DebugEnabled reports whether Debug messages are logged, so callers can skip
// building costly debug output.
func DebugEnabled() bool {
	return mode <= DebugMode
}

// SetLogger replaces the package-level logger.  A nil logger restores the
// default standard logger.
func SetLogger(l Logger) {
	if l == nil {
		l = stdLogger{}
	}
	logger = l
}

// DefaultLogger returns a Logger that forwards to the package-level logger
// while honoring the current log mode.
func DefaultLogger() Logger {
	return modeLogger{}
}

func Debugf(format string, args ...interface{}) {
	if mode <= DebugMode {
		logger.Debugf(format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	if mode <= InfoMode {
		logger.Infof(format, args...)
	}
}

func Warningf(format string, args ...interface{}) {
	if mode <= WarningMode {
		logger.Warningf(format, args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if mode <= ErrorMode {
		logger.Errorf(format, args...)
	}
}

func Criticalf(format string, args ...interface{}) {
	if mode <= CriticalMode {
		logger.Criticalf(format, args...)
	}
}

// Shutdown closes the package-level logger.
func Shutdown() {
	logger.Shutdown()
}

type modeLogger struct{}

func (modeLogger) Debugf(format string, args ...interface{})    { Debugf(format, args...) }
func (modeLogger) Infof(format string, args ...interface{})     { Infof(format, args...) }
func (modeLogger) Warningf(format string, args ...interface{})  { Warningf(format, args...) }
func (modeLogger) Errorf(format string, args ...interface{})    { Errorf(format, args...) }
func (modeLogger) Criticalf(format string, args ...interface{}) { Criticalf(format, args...) }
func (modeLogger) Shutdown()                                    { Shutdown() }

// TimeLog times a read or request.  Each message gets the time since the
// TimeLog was created appended after a colon, e.g. "Read mem://x: 2.1ms".
type TimeLog struct {
	logger Logger
	start  time.Time
}

// NewTimeLog starts timing with the logger installed at the time of the call.
func NewTimeLog() TimeLog {
	return TimeLog{logger, time.Now()}
}

func (t TimeLog) timed(format string, args []interface{}) (string, []interface{}) {
	return format + ": %s\n", append(args, time.Since(t.start))
}

func (t TimeLog) Debugf(format string, args ...interface{}) {
	if mode <= DebugMode {
		f, a := t.timed(format, args)
		t.logger.Debugf(f, a...)
	}
}

func (t TimeLog) Infof(format string, args ...interface{}) {
	if mode <= InfoMode {
		f, a := t.timed(format, args)
		t.logger.Infof(f, a...)
	}
}

func (t TimeLog) Warningf(format string, args ...interface{}) {
	if mode <= WarningMode {
		f, a := t.timed(format, args)
		t.logger.Warningf(f, a...)
	}
}

func (t TimeLog) Errorf(format string, args ...interface{}) {
	if mode <= ErrorMode {
		f, a := t.timed(format, args)
		t.logger.Errorf(f, a...)
	}
}

package report

import "sync"

// reporter is responsible for processing errors, warnings, and other messages
// produced during lowering.  It respects the set log level and is safe to use
// from multiple goroutines.
type reporter struct {
	// LogLevel is the selected log level.  This must be one of the enumerated
	// log levels below.
	LogLevel int

	// errorCount is the number of errors reported so far.
	errorCount int

	// warnings is the list of warnings to be displayed at the end of the run.
	warnings []LogMessage

	// m is the mutex used to synchronize the printing of messages.
	m *sync.Mutex
}

// Enumeration of the different log levels.
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors and the closing message
	LogLevelWarning        // errors, warnings, and the closing message
	LogLevelVerbose        // errors, warnings, tool header, phases, closing message (DEFAULT)
)

// handleMsg prompts the reporter to process a message.  Messages may come in
// concurrently, so printing is guarded by a mutex.  Errors display
// immediately, interrupting any running phase display; warnings are collected
// for the end of the run.
func (r *reporter) handleMsg(msg LogMessage) {
	r.m.Lock()

	if msg.isError() {
		r.errorCount++

		if r.LogLevel > LogLevelSilent {
			displayEndPhase(false)
			msg.display()
		}
	} else {
		r.warnings = append(r.warnings, msg)
	}

	r.m.Unlock()
}

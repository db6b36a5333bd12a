package report

import (
	"fmt"
	"os"
	"sync"
)

// rep is a global reference to a shared reporter.
var rep reporter

// InitReporter initializes the global reporter with the provided log level.
func InitReporter(loglevel int) {
	rep = reporter{
		LogLevel: loglevel,
		m:        &sync.Mutex{},
	}
}

// AnyErrors indicates whether any errors have been reported so far.  The
// driver uses this to decide whether a run succeeded.
func AnyErrors() bool {
	return rep.errorCount > 0
}

// -----------------------------------------------------------------------------
// NOTE: All report functions will only display if the appropriate log level is
// set.  Most report functions will simply fail silently if below their
// appropriate log level.

// ReportError reports an error that stops the current run, such as a failure
// to parse the input module.
func ReportError(err error) {
	rep.handleMsg(&ToolError{Err: err})
}

// ReportWarning reports a warning.  Warnings are collected and displayed
// together at the end of the run so they do not interrupt phase progress.
func ReportWarning(msg string, args ...interface{}) {
	rep.handleMsg(&ToolWarning{Message: fmt.Sprintf(msg, args...)})
}

// ReportFatal reports a fatal error and exits the program.  It also
// automatically formats error messages as necessary.
func ReportFatal(msg string, args ...interface{}) {
	rep.errorCount++

	displayFatalError(fmt.Sprintf(msg, args...))

	os.Exit(1)
}

// -----------------------------------------------------------------------------
// Below are the "aesthetic" reporting functions that only run if the log level
// is verbose.  These provide additional information about the lowering process
// so as to make the tool more friendly.

// ReportStdout reports a plain informational message.
func ReportStdout(msg string, args ...interface{}) {
	if rep.LogLevel == LogLevelVerbose {
		displayInfoText(fmt.Sprintf(msg, args...))
	}
}

// ReportToolHeader reports the pre-run header: information about the tool's
// current configuration (version and target).
func ReportToolHeader(targetName string) {
	if rep.LogLevel == LogLevelVerbose {
		displayToolHeader(targetName)
	}
}

// ReportBeginPhase reports the beginning of a phase of lowering.
func ReportBeginPhase(phase string) {
	if rep.LogLevel == LogLevelVerbose {
		displayBeginPhase(phase)
	}
}

// ReportEndPhase reports the end of the current phase of lowering.
func ReportEndPhase(success bool) {
	if rep.LogLevel == LogLevelVerbose {
		displayEndPhase(success)
	}
}

// ReportFinished reports the concluding message for a run: any collected
// warnings followed by the closing summary.
func ReportFinished(outputPath string) {
	if rep.LogLevel >= LogLevelWarning {
		for _, warning := range rep.warnings {
			warning.display()
		}
	}

	if rep.LogLevel == LogLevelVerbose {
		displayFinished(rep.errorCount == 0, outputPath, rep.errorCount, len(rep.warnings))
	}
}

package report

// LogMessage is the interface for all messages the reporter can process.
type LogMessage interface {
	// display prints the message to the console.
	display()

	// isError indicates whether the message is an error as opposed to a
	// warning.
	isError() bool
}

// ToolError is an error that stops the current run, such as a failure to
// parse the input module.
type ToolError struct {
	// The underlying error.
	Err error
}

func (te *ToolError) isError() bool {
	return true
}

// ToolWarning is a warning about the run that does not stop it, such as an
// incomplete target profile.
type ToolWarning struct {
	// The warning text.
	Message string
}

func (tw *ToolWarning) isError() bool {
	return false
}

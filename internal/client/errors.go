package client

// Error taxonomy for the session core. Every surfaced error prefers the
// server-supplied message, falling back to a fixed generic string per
// operation. None of them is fatal; the user retries the triggering action.

// ValidationError blocks an action locally before any request is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// StateError reports an operation attempted out of order, such as starting a
// download before a successful extraction.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }

// ExtractionError reports a failed metadata extraction.
type ExtractionError struct {
	Message string
	Err     error
}

func (e *ExtractionError) Error() string { return e.Message }
func (e *ExtractionError) Unwrap() error { return e.Err }

// DownloadStartError reports a failed download start; no task is tracked.
type DownloadStartError struct {
	Message string
	Err     error
}

func (e *DownloadStartError) Error() string { return e.Message }
func (e *DownloadStartError) Unwrap() error { return e.Err }

// TransientPollError is a connectivity failure during one poll cycle.
// Polling continues; the message is shown for that cycle only.
type TransientPollError struct {
	Message string
	Err     error
}

func (e *TransientPollError) Error() string { return e.Message }
func (e *TransientPollError) Unwrap() error { return e.Err }

// TerminalPollError means the server answered but no longer knows the task.
// Polling stops.
type TerminalPollError struct {
	Message string
}

func (e *TerminalPollError) Error() string { return e.Message }

// CancelError reports a failed cancel request. The poller keeps running
// because the task may still be in flight server-side.
type CancelError struct {
	Message string
	Err     error
}

func (e *CancelError) Error() string { return e.Message }
func (e *CancelError) Unwrap() error { return e.Err }

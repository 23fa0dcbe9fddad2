package goSession

// Result is the outcome of Login and Signup. Failures are values, never
// panics: Error holds a message fit for the user and Err the classified cause
// (match it with errors.Is against the package sentinels).
type Result struct {
	Success bool
	Error   string
	Err     error
}

func succeeded() Result {
	return Result{Success: true}
}

func failed(err error, msg string) Result {
	return Result{Error: msg, Err: err}
}

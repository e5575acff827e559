package models

// Result is the status/message pair returned by save and destructive actions
// so the UI can show a uniform notification.
type Result struct {
	Status bool   `json:"status"`
	Msg    string `json:"msg"`
}

// OK builds a successful Result.
func OK(msg string) Result { return Result{Status: true, Msg: msg} }

// Fail builds a failed Result.
func Fail(msg string) Result { return Result{Status: false, Msg: msg} }

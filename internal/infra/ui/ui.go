// Where: internal/infra/ui/ui.go
// What: UserInterface port used by the dispatch workflow and the CLI.
// Why: Usecases report progress without knowing how it is rendered.
package ui

import "io"

// KeyValue is one row of a Block.
type KeyValue struct {
	Key   string
	Value any
}

// UserInterface exposes high-level output helpers used by usecases.
type UserInterface interface {
	Info(msg string)
	Warn(msg string)
	Success(msg string)
	Error(msg string)
	Block(emoji, title string, rows []KeyValue)
}

// NewUI returns a UserInterface writing to out.
func NewUI(out io.Writer, emoji bool) UserInterface {
	return NewConsole(out, emoji)
}

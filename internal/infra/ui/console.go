// Where: internal/infra/ui/console.go
// What: Line-oriented writer behind UserInterface.
// Why: Status lines stay greppable in CI logs whether or not emoji are on.
package ui

import (
	"fmt"
	"io"
)

type level int

const (
	levelInfo level = iota
	levelSuccess
	levelWarn
	levelError
)

// Emoji and plain-text markers per level. Info lines are unmarked.
var markers = map[level][2]string{
	levelSuccess: {"✅", "[ok]"},
	levelWarn:    {"⚠️", "[warn]"},
	levelError:   {"❌", "[error]"},
}

// Console writes one message per line to Out.
type Console struct {
	Out   io.Writer
	Emoji bool
}

func NewConsole(out io.Writer, emoji bool) *Console {
	return &Console{Out: out, Emoji: emoji}
}

func (c *Console) Info(msg string)    { c.line(levelInfo, msg) }
func (c *Console) Success(msg string) { c.line(levelSuccess, msg) }
func (c *Console) Warn(msg string)    { c.line(levelWarn, msg) }
func (c *Console) Error(msg string)   { c.line(levelError, msg) }

// Block prints a titled group of aligned key/value rows framed by blank lines.
// The title only carries its emoji when emoji are enabled.
func (c *Console) Block(emoji, title string, rows []KeyValue) {
	if c.Emoji && emoji != "" {
		title = emoji + " " + title
	}
	fmt.Fprintf(c.Out, "\n%s\n", title)
	for _, row := range rows {
		fmt.Fprintf(c.Out, "   %-20s %v\n", row.Key+":", row.Value)
	}
	fmt.Fprintln(c.Out)
}

func (c *Console) line(lvl level, msg string) {
	marker, ok := markers[lvl]
	if !ok {
		fmt.Fprintln(c.Out, msg)
		return
	}
	prefix := marker[1]
	if c.Emoji {
		prefix = marker[0]
	}
	fmt.Fprintf(c.Out, "%s %s\n", prefix, msg)
}

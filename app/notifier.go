package app

import (
	"fmt"
	"io"
	"sync"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

var levelMarks = map[Level]string{
	LevelInfo:    "i",
	LevelSuccess: "✔",
	LevelError:   "✘",
}

// Notice is a short message shown to the user after an action.
type Notice struct {
	Level   Level
	Message string
}

// Notifier shows notices.
type Notifier interface {
	Notify(n Notice)
}

// TerminalNotifier prints notices one per line.
type TerminalNotifier struct {
	mu     sync.Mutex
	w      io.Writer
	colour bool
}

func NewTerminalNotifier(w io.Writer, colour bool) *TerminalNotifier {
	return &TerminalNotifier{w: w, colour: colour}
}

func (t *TerminalNotifier) Notify(n Notice) {
	t.mu.Lock()
	defer t.mu.Unlock()
	line := fmt.Sprintf("%s %s", levelMarks[n.Level], n.Message)
	fmt.Fprintln(t.w, Colourise(t.colour, levelColours[n.Level], line))
}

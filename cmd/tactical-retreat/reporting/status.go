package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Color definitions
var (
	colorStatusTitle = color.New(color.FgRed, color.Bold)
	colorStatusText  = color.New(color.FgYellow)
	colorStatusReady = color.New(color.FgRed, color.Bold, color.BlinkSlow)
)

// StatusBoard prints reinforcement status lines to the console. A line is
// only printed when it differs from the previous one.
type StatusBoard struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool
	last    string
	shown   int
}

// NewStatusBoard creates a status board writing to out, os.Stdout when nil
func NewStatusBoard(out io.Writer, noColor bool) *StatusBoard {
	if out == nil {
		out = os.Stdout
	}
	return &StatusBoard{out: out, noColor: noColor}
}

// ShowStatus implements core.StatusSink
func (b *StatusBoard) ShowStatus(title, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	line := title + ": " + text
	if line == b.last {
		return
	}
	b.last = line
	b.shown++

	if b.noColor {
		_, _ = fmt.Fprintf(b.out, "  >> %s\n", line)
		return
	}

	textColor := colorStatusText
	if isReadyText(text) {
		textColor = colorStatusReady
	}
	_, _ = fmt.Fprintf(b.out, "  >> %s: %s\n", colorStatusTitle.Sprint(title), textColor.Sprint(text))
}

// Shown returns how many distinct lines were printed
func (b *StatusBoard) Shown() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shown
}

// Last returns the last printed line without colors
func (b *StatusBoard) Last() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func isReadyText(text string) bool {
	return strings.HasSuffix(text, "now available")
}

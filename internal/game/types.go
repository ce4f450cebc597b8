// Shared value types for the red/blue exercise
package game

import "fmt"

// Team identifies one of the two exercise parties.
type Team string

// Exercise teams.
const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
)

// Valid reports whether t is one of the two playable teams.
func (t Team) Valid() bool {
	return t == TeamRed || t == TeamBlue
}

// LineKind tags a terminal line for rendering.
type LineKind string

// Terminal line kinds.
const (
	LinePrompt  LineKind = "prompt"
	LineCommand LineKind = "command"
	LineOutput  LineKind = "output"
	LineError   LineKind = "error"
	LineRich    LineKind = "rich"
)

// Line is one rendered row of a team's terminal buffer.
type Line struct {
	Kind LineKind `json:"kind"`
	Text string   `json:"text"`
}

// Output builds an output-kind line.
func Output(text string) Line { return Line{Kind: LineOutput, Text: text} }

// Errorf builds an error-kind line with formatting.
func Errorf(format string, args ...any) Line {
	return Line{Kind: LineError, Text: fmt.Sprintf(format, args...)}
}

// Rich builds a markup-carrying line.
func Rich(text string) Line { return Line{Kind: LineRich, Text: text} }

// Prompt is a team's current shell context.
type Prompt struct {
	User string `json:"user"`
	Host string `json:"host"`
	Dir  string `json:"dir"`
}

// String renders the prompt the way the terminal shows it. A "#" dir marks
// a root shell.
func (p Prompt) String() string {
	if p.Dir == "#" {
		return fmt.Sprintf("%s@%s:~#", p.User, p.Host)
	}
	return fmt.Sprintf("%s@%s:%s$", p.User, p.Host, p.Dir)
}

package errors

import "strings"

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorBold  = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

// Format returns the error for terminal display: the code and message,
// the detail and cause, then the suggestion as a hint.
func (e *Error) Format() string {
	var b strings.Builder

	b.WriteString(color(colorRed, color(colorBold, "ERROR ")))
	if e.Code != "" {
		b.WriteString(color(colorBold, e.Code+": "))
	}
	b.WriteString(e.Message)
	b.WriteString("\n")

	if e.Detail != "" {
		b.WriteString("  ")
		b.WriteString(e.Detail)
		b.WriteString("\n")
	}
	if e.Wrapped != nil {
		b.WriteString("  cause: ")
		b.WriteString(e.Wrapped.Error())
		b.WriteString("\n")
	}
	if e.Suggestion != "" {
		b.WriteString("\n  ")
		b.WriteString(color(colorCyan, "Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n")
	}
	return b.String()
}

package main

import (
	"fmt"
	"io"
)

// CLIError represents a formatted CLI error with context, mirroring the
// teacher CLI's own usage-error shape.
type CLIError struct {
	Message string
	Hint    string
}

func (e *CLIError) Error() string {
	if e.Hint == "" {
		return e.Message
	}
	return e.Message + "\n" + e.Hint
}

// FormatError prints err to w, colorized like the teacher CLI's error path.
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}
	if e, ok := err.(*CLIError); ok {
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), e.Message)
		if e.Hint != "" {
			_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor), e.Hint)
		}
		return
	}
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
}

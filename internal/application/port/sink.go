package port

import "time"

type Sink interface {
	// Live line: overwrite last line (no newline)
	WriteLive(line string) error
	// Report line: append a cycle report with timestamp
	WriteReport(ts time.Time, line string) error
	// Normal newline (for logs)
	NewLine() error
}

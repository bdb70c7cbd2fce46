// Package emoji provides symbol constants for CLI output.
package emoji

// Symbol constants give status columns and messages a consistent look.
const (
	// Success marks completed operations and certain matches.
	Success = "✓"

	// Error marks failures and unresolved relationships.
	Error = "✗"

	// Warning marks uncertain matches and suppressed rows.
	Warning = "!"

	// Optional marks empty or not applicable values.
	Optional = "-"

	// Info marks informational messages.
	Info = "i"
)

// Package constants provides shared constants used throughout the inferdelta codebase.
// This includes well-known concept identifiers, release file conventions, limits
// and file permissions that should be consistent across the application.
package constants

// Well-known concept identifiers
const (
	// IsAType is the relationship type identifier of the is-a (subsumption) relation
	IsAType int64 = 116680003

	// RootConcept is the identifier of the hierarchy root concept
	RootConcept int64 = 138875005

	// StatedCharacteristicType marks a relationship as editor-authored
	StatedCharacteristicType = "900000000000010007"

	// InferredCharacteristicType marks a relationship as classifier-computed
	InferredCharacteristicType = "900000000000011006"
)

// Release file conventions
const (
	// ActiveFlag is the value of the active column for active rows
	ActiveFlag = "1"

	// InactiveFlag is the value of the active column for inactive rows
	InactiveFlag = "0"

	// FieldSeparator separates columns in release files
	FieldSeparator = '\t'

	// EffectiveTimeLayout is the time layout of effective dates (YYYYMMDD)
	EffectiveTimeLayout = "20060102"
)

// Limit constants define various limits and capacities
const (
	// Sweeps is the number of matching sweeps run over the stated relationships
	Sweeps = 3

	// DefaultMaxUnresolved bounds the unresolved orphans listed in the summary
	DefaultMaxUnresolved = 100

	// ProgressInterval is how many relationships are processed between progress logs
	ProgressInterval = 10000
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

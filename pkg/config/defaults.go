package config

// Coverage defaults.
const (
	DefaultCoverageExtension     = ".txt"
	DefaultCoverageForcedFailure = 0
	DefaultCoverageWorkers       = 0
	DefaultCoverageMaxRecordSize = ""
)

// Output defaults.
const (
	DefaultOutputFileName = "Suspicion.csv"
	DefaultOutputTop      = 10
	DefaultOutputTheme    = "light"
)

// DefaultOutputFormats lists the formats written when none are configured.
func DefaultOutputFormats() []string {
	return []string{"csv"}
}

// Logging defaults.
const (
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "text"
)

package config

// OutputFormat represents the supported report formats
type OutputFormat string

const (
	OutputFormatCSV   OutputFormat = "csv"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
	OutputFormatTable OutputFormat = "table"
)

// RowOrder selects how report rows are sorted
type RowOrder string

const (
	// RowOrderCode sorts rows lexicographically by configuration code
	RowOrderCode RowOrder = "code"

	// RowOrderInput keeps rows in the order codes appear in the code source
	RowOrderInput RowOrder = "input"
)

// Constants for configuration limits and defaults
const (
	// EnvPrefix prefixes every environment variable read by LoadFs
	EnvPrefix = "CONFIGUSAGE"

	// MinBufferSize is the minimum allowed buffer size in bytes
	MinBufferSize = 64

	// DefaultBufferSize is the default buffer size in bytes
	DefaultBufferSize = 4096

	// MaxWorkerMultiplier is the maximum multiple of CPU cores for worker count
	MaxWorkerMultiplier = 4

	// DefaultCodesColumn is the header of the code column in the code source
	DefaultCodesColumn = "ConfigCode"
)

// DefaultExtensions are the source file extensions scanned when none are configured
var DefaultExtensions = []string{".cs", ".aspx", ".cshtml"}

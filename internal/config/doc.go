// Package config loads the settings of a usage report run.
//
// # Sources
//
// Values are resolved in this order, later sources winning:
//
//  1. built-in defaults
//  2. an optional YAML file passed to LoadFs
//  3. environment variables prefixed with CONFIGUSAGE_
//
// Command-line flags are applied on top by the caller, which then calls
// Validate.
//
// # Environment Variables
//
//	CONFIGUSAGE_CODES_FILE       Tabular file listing configuration codes
//	CONFIGUSAGE_CODES_COLUMN     Header name or 0-based index of the code column
//	CONFIGUSAGE_CODES_HEADER     Whether the code source has a header record
//	CONFIGUSAGE_COMMA            Field delimiter (single character or "tab")
//	CONFIGUSAGE_ROOT             Directory to search
//	CONFIGUSAGE_EXTENSIONS       Comma-separated extensions, e.g. ".cs,.aspx"
//	CONFIGUSAGE_IGNORE           Comma-separated doublestar ignore patterns
//	CONFIGUSAGE_OUTPUT_FILE      Report path (empty for stdout)
//	CONFIGUSAGE_FORMAT           csv|json|yaml|table
//	CONFIGUSAGE_ROW_ORDER        code|input
//	CONFIGUSAGE_WORKERS          Number of concurrent file readers
//	CONFIGUSAGE_RATE_LIMIT       Files opened per second (0 for unlimited)
//	CONFIGUSAGE_BUFFER_SIZE      Read buffer size in bytes
//	CONFIGUSAGE_STRICT_ENCODING  Fail on files that are not valid UTF-8
//	CONFIGUSAGE_NO_PROGRESS      Disable progress reporting
//	CONFIGUSAGE_NO_COLOR         Disable colored output
//	CONFIGUSAGE_VERBOSE          Verbosity level (number or 'v's)
//
// # Config File
//
// The YAML file uses the same keys in lower case:
//
//	codes_file: config-codes.csv
//	extensions: [.cs, .aspx, .cshtml]
//	ignore:
//	  - bin
//	  - obj
//	  - "**/*.Designer.cs"
//	format: csv
//	row_order: input
//
// # Validation
//
//   - Workers must be positive and not exceed CPU cores * 4
//   - Format must be one of: csv, json, yaml, table
//   - RowOrder must be code or input
//   - BufferSize must be at least 64 bytes
//   - RateLimit must be non-negative
//   - Extensions must be non-empty and each start with '.'
package config

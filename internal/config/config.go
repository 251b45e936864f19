package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Config holds all configuration parameters for a report run
type Config struct {
	// CodesFile is the tabular file listing configuration codes
	CodesFile string

	// CodesColumn is the header name or 0-based index of the code column
	CodesColumn string

	// CodesHeader reports whether the code source starts with a header record
	CodesHeader bool

	// Comma is the field delimiter of the code source and the CSV report
	Comma rune

	// Root is the directory searched for source files
	Root string

	// Extensions selects which files are scanned, e.g. ".cs"
	Extensions []string

	// Ignore holds doublestar patterns for paths to skip
	Ignore []string

	// OutputFile is the report path (empty for stdout)
	OutputFile string

	// Format is the report format (csv, json, yaml or table)
	Format OutputFormat

	// RowOrder is code or input
	RowOrder RowOrder

	// Workers is the number of concurrent file readers
	Workers int

	// RateLimit is the maximum number of files opened per second (0 for unlimited)
	RateLimit int

	// BufferSize is the size of the buffer for file reading
	BufferSize int

	// StrictEncoding fails the run on files that are not valid UTF-8
	StrictEncoding bool

	// NoProgress disables progress reporting
	NoProgress bool

	// NoColor disables colored output
	NoColor bool

	// Verbose sets the verbosity level
	Verbose int
}

var validOutputFormats = map[OutputFormat]bool{
	OutputFormatCSV:   true,
	OutputFormatJSON:  true,
	OutputFormatYAML:  true,
	OutputFormatTable: true,
}

var validRowOrders = map[RowOrder]bool{
	RowOrderCode:  true,
	RowOrderInput: true,
}

// LoadFs reads configuration from an optional YAML file on fs and the
// environment. An empty path skips the file.
func LoadFs(fs afero.Fs, path string) (Config, error) {
	v := viper.New()
	v.SetFs(fs)

	v.SetDefault("codes_column", DefaultCodesColumn)
	v.SetDefault("codes_header", true)
	v.SetDefault("comma", ",")
	v.SetDefault("extensions", DefaultExtensions)
	v.SetDefault("format", string(OutputFormatCSV))
	v.SetDefault("row_order", string(RowOrderCode))
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("buffer_size", DefaultBufferSize)
	v.SetDefault("rate_limit", 0)
	v.SetDefault("strict_encoding", false)
	v.SetDefault("no_progress", false)
	v.SetDefault("no_color", false)
	v.SetDefault("verbose", 0)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for _, key := range []string{
		"codes_file", "codes_column", "codes_header", "comma",
		"root", "extensions", "ignore",
		"output_file", "format", "row_order",
		"workers", "rate_limit", "buffer_size", "strict_encoding",
		"no_progress", "no_color", "verbose",
	} {
		v.BindEnv(key)
	}

	comma, err := ParseComma(v.GetString("comma"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		CodesFile:      v.GetString("codes_file"),
		CodesColumn:    v.GetString("codes_column"),
		CodesHeader:    v.GetBool("codes_header"),
		Comma:          comma,
		Root:           v.GetString("root"),
		Extensions:     stringList(v, "extensions"),
		Ignore:         stringList(v, "ignore"),
		OutputFile:     v.GetString("output_file"),
		Format:         OutputFormat(strings.ToLower(v.GetString("format"))),
		RowOrder:       RowOrder(strings.ToLower(v.GetString("row_order"))),
		Workers:        v.GetInt("workers"),
		RateLimit:      v.GetInt("rate_limit"),
		BufferSize:     v.GetInt("buffer_size"),
		StrictEncoding: v.GetBool("strict_encoding"),
		NoProgress:     v.GetBool("no_progress"),
		NoColor:        v.GetBool("no_color"),
		Verbose:        verbosity(v.GetString("verbose")),
	}

	// Handle special case for workers=0
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	cfg.Extensions = uniqueExtensions(cfg.Extensions)
	if err := cfg.validateSettings(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that the configuration is complete and valid for a run.
// Repeated extensions are dropped, keeping the first occurrence.
func (c *Config) Validate() error {
	c.Extensions = uniqueExtensions(c.Extensions)

	if c.CodesFile == "" {
		return fmt.Errorf("codes file is required")
	}
	if c.Root == "" {
		return fmt.Errorf("root directory is required")
	}
	return c.validateSettings()
}

// validateSettings checks every setting that has a default
func (c Config) validateSettings() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers count must be positive")
	}
	maxWorkers := runtime.NumCPU() * MaxWorkerMultiplier
	if c.Workers > maxWorkers {
		return fmt.Errorf("workers count cannot exceed system CPU count * %d", MaxWorkerMultiplier)
	}

	if !validOutputFormats[c.Format] {
		return fmt.Errorf("invalid output format %q: must be one of [csv json yaml table]", c.Format)
	}

	if !validRowOrders[c.RowOrder] {
		return fmt.Errorf("invalid row order %q: must be one of [code input]", c.RowOrder)
	}

	if c.BufferSize < 0 {
		return fmt.Errorf("buffer size must be positive")
	}
	if c.BufferSize < MinBufferSize {
		return fmt.Errorf("buffer size must be at least %d bytes", MinBufferSize)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}

	if len(c.Extensions) == 0 {
		return fmt.Errorf("at least one file extension is required")
	}
	for _, ext := range c.Extensions {
		if len(ext) < 2 || !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid extension %q: must start with '.'", ext)
		}
	}

	if c.CodesColumn == "" {
		return fmt.Errorf("codes column must not be empty")
	}

	return nil
}

func uniqueExtensions(exts []string) []string {
	if len(exts) == 0 {
		return exts
	}
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

// ParseComma converts a delimiter setting to a rune. "tab" and `\t` mean a tab.
func ParseComma(s string) (rune, error) {
	switch s {
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q: must be a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// String returns a string representation of the configuration
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{CodesFile: %s, CodesColumn: %s, Root: %s, Extensions: %v, Ignore: %v, "+
			"Format: %s, RowOrder: %s, OutputFile: %s, Workers: %d, RateLimit: %d, "+
			"BufferSize: %d, NoProgress: %v, NoColor: %v, Verbose: %d}",
		c.CodesFile, c.CodesColumn, c.Root, c.Extensions, c.Ignore,
		c.Format, c.RowOrder, c.OutputFile, c.Workers, c.RateLimit,
		c.BufferSize, c.NoProgress, c.NoColor, c.Verbose,
	)
}

// stringList reads a list that is either a YAML sequence or a comma-separated string
func stringList(v *viper.Viper, key string) []string {
	var raw []string
	if s, ok := v.Get(key).(string); ok {
		raw = strings.Split(s, ",")
	} else {
		raw = v.GetStringSlice(key)
	}

	items := make([]string, 0, len(raw))
	for _, item := range raw {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// verbosity accepts a number or a string of 'v's
func verbosity(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return strings.Count(s, "v")
}

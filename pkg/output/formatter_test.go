package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ajdepersio/ConfigUsageReport/pkg/logger"
	"github.com/ajdepersio/ConfigUsageReport/pkg/report"
	"github.com/ajdepersio/ConfigUsageReport/pkg/usage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// mockLogger implements logger.Logger interface for testing
type mockLogger struct {
	logs []string
}

func (m *mockLogger) Info(msg string)                               { m.logs = append(m.logs, "INFO: "+msg) }
func (m *mockLogger) Debug(msg string)                              { m.logs = append(m.logs, "DEBUG: "+msg) }
func (m *mockLogger) Error(msg string)                              { m.logs = append(m.logs, "ERROR: "+msg) }
func (m *mockLogger) Warn(msg string)                               { m.logs = append(m.logs, "WARN: "+msg) }
func (m *mockLogger) Trace(msg string)                              { m.logs = append(m.logs, "TRACE: "+msg) }
func (m *mockLogger) WithFields(fields logger.Fields) logger.Logger { return m }
func (m *mockLogger) Named(component string) logger.Logger          { return m }
func (m *mockLogger) Sync() error                                   { return nil }

func createTestTable() *report.Table {
	return report.Aggregate(usage.NewSet(
		usage.Instance{Code: "foo", Path: "src/a.cs"},
		usage.Instance{Code: "foo", Path: "src/c.cshtml"},
		usage.Instance{Code: "bar", Path: "web/b.aspx"},
		usage.Instance{Code: "bar", Path: "src/c.cshtml"},
		usage.Instance{Code: "bar", Path: "web/d.aspx"},
	))
}

var testColumns = []string{".cs", ".aspx", ".cshtml"}

func TestFormatter(t *testing.T) {
	tests := []struct {
		name       string
		format     Format
		withStats  bool
		withColors bool
		verify     func(*testing.T, string, *mockLogger)
	}{
		{
			name:   "csv format",
			format: FormatCSV,
			verify: func(t *testing.T, output string, log *mockLogger) {
				want := `"ConfigCode",".cs",".aspx",".cshtml"` + "\r\n" +
					`"bar","","web/b.aspx` + "\n" + `web/d.aspx","src/c.cshtml"` + "\r\n" +
					`"foo","src/a.cs","","src/c.cshtml"` + "\r\n"
				assert.Equal(t, want, output)
				assert.Contains(t, log.logs, "DEBUG: Formatting CSV output")
			},
		},
		{
			name:   "json format",
			format: FormatJSON,
			verify: func(t *testing.T, output string, log *mockLogger) {
				var doc struct {
					Columns []string `json:"columns"`
					Rows    []struct {
						Code       string              `json:"code"`
						Files      []string            `json:"files"`
						Extensions map[string][]string `json:"extensions"`
					} `json:"rows"`
				}
				require.NoError(t, json.Unmarshal([]byte(output), &doc))
				assert.Equal(t, testColumns, doc.Columns)
				require.Len(t, doc.Rows, 2)
				assert.Equal(t, "bar", doc.Rows[0].Code)
				assert.Equal(t, []string{"web/b.aspx", "web/d.aspx"}, doc.Rows[0].Extensions[".aspx"])
				assert.NotContains(t, doc.Rows[0].Extensions, ".cs")
				assert.Equal(t, []string{"src/a.cs", "src/c.cshtml"}, doc.Rows[1].Files)
				assert.Contains(t, log.logs, "DEBUG: Formatting JSON output")
			},
		},
		{
			name:      "json format with stats",
			format:    FormatJSON,
			withStats: true,
			verify: func(t *testing.T, output string, log *mockLogger) {
				assert.Contains(t, output, `"statistics"`)
				assert.Contains(t, output, `"totalFiles": 4`)
				assert.Contains(t, output, `"totalUsages": 5`)
				assert.Contains(t, log.logs, "DEBUG: Adding statistics to document")
			},
		},
		{
			name:   "yaml format",
			format: FormatYAML,
			verify: func(t *testing.T, output string, log *mockLogger) {
				var doc map[string]interface{}
				require.NoError(t, yaml.Unmarshal([]byte(output), &doc))
				assert.Contains(t, doc, "rows")
				assert.Contains(t, output, "code: foo")
				assert.Contains(t, output, "- src/a.cs")
				assert.Contains(t, log.logs, "DEBUG: Formatting YAML output")
			},
		},
		{
			name:   "table format",
			format: FormatTable,
			verify: func(t *testing.T, output string, log *mockLogger) {
				lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
				require.Len(t, lines, 3)
				assert.Equal(t, "ConfigCode  .cs  .aspx  .cshtml  Total", lines[0])
				assert.Equal(t, "bar           0      2        1      3", lines[1])
				assert.Equal(t, "foo           1      0        1      2", lines[2])
				assert.NotContains(t, output, "\x1b[")
			},
		},
		{
			name:       "table format with colors",
			format:     FormatTable,
			withColors: true,
			verify: func(t *testing.T, output string, log *mockLogger) {
				assert.Contains(t, output, "\x1b[34;1m") // Bold blue for codes
				assert.Contains(t, output, "\x1b[0m")
			},
		},
		{
			name:      "table format with stats",
			format:    FormatTable,
			withStats: true,
			verify: func(t *testing.T, output string, log *mockLogger) {
				assert.Contains(t, output, "Codes Used: 2")
				assert.Contains(t, output, "Files With Usages: 4")
				assert.Contains(t, log.logs, "DEBUG: Adding statistics to output")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &mockLogger{}

			formatter := NewFormatter(Config{
				Format:     tt.format,
				Columns:    testColumns,
				WithStats:  tt.withStats,
				WithColors: tt.withColors,
			}, log)

			output, err := formatter.Format(createTestTable())

			require.NoError(t, err)
			require.NotEmpty(t, output)

			tt.verify(t, output, log)
		})
	}
}

func TestCSVQuoting(t *testing.T) {
	table := report.Aggregate(usage.NewSet(
		usage.Instance{Code: "foo", Path: `dir "x"/a.cs`},
		usage.Instance{Code: "foo", Path: "dir,y/b.cs"},
	))

	out, err := NewFormatter(Config{Format: FormatCSV, Columns: []string{".cs"}}, logger.NewNop()).Format(table)
	require.NoError(t, err)
	assert.Equal(t, `"ConfigCode",".cs"`+"\r\n"+`"foo","dir ""x""/a.cs`+"\n"+`dir,y/b.cs"`+"\r\n", out)
}

func TestCSVCustomComma(t *testing.T) {
	out, err := NewFormatter(Config{
		Format:  FormatCSV,
		Columns: []string{".cs"},
		Comma:   '\t',
	}, logger.NewNop()).Format(createTestTable())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "\"ConfigCode\"\t\".cs\"\r\n"))
}

func TestCSVColumnsDiscoveredWhenUnset(t *testing.T) {
	out, err := NewFormatter(Config{Format: FormatCSV}, logger.NewNop()).Format(createTestTable())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `"ConfigCode",".aspx",".cs",".cshtml"`))
}

func TestCSVEmptyTable(t *testing.T) {
	out, err := NewFormatter(Config{Format: FormatCSV, Columns: testColumns}, logger.NewNop()).Format(&report.Table{})
	require.NoError(t, err)
	assert.Equal(t, `"ConfigCode",".cs",".aspx",".cshtml"`+"\r\n", out)
}

func TestFormatterEdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		table     *report.Table
		format    Format
		wantErr   bool
		errString string
	}{
		{
			name:      "nil table",
			table:     nil,
			format:    FormatCSV,
			wantErr:   true,
			errString: "nil report table",
		},
		{
			name:    "empty table as json",
			table:   &report.Table{},
			format:  FormatJSON,
			wantErr: false,
		},
		{
			name:      "invalid format",
			table:     createTestTable(),
			format:    "invalid",
			wantErr:   true,
			errString: "unsupported format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &mockLogger{}
			formatter := NewFormatter(Config{Format: tt.format, Columns: testColumns}, log)

			output, err := formatter.Format(tt.table)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)

				hasError := false
				for _, logMsg := range log.logs {
					if strings.HasPrefix(logMsg, "ERROR: ") {
						hasError = true
						break
					}
				}
				assert.True(t, hasError, "Expected error log message not found")
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, output)
			}
		})
	}
}

func TestWriteFile(t *testing.T) {
	t.Run("writes file and leaves no temp files", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/out", 0755))

		require.NoError(t, WriteFile(fs, "/out/report.csv", "content", nil))

		data, err := afero.ReadFile(fs, "/out/report.csv")
		require.NoError(t, err)
		assert.Equal(t, "content", string(data))

		entries, err := afero.ReadDir(fs, "/out")
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("replaces existing report", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/out/report.csv", []byte("old"), 0644))

		require.NoError(t, WriteFile(fs, "/out/report.csv", "new", nil))

		data, err := afero.ReadFile(fs, "/out/report.csv")
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("report is world readable on disk", func(t *testing.T) {
		fs := afero.NewOsFs()
		path := filepath.Join(t.TempDir(), "report.csv")

		require.NoError(t, WriteFile(fs, path, "content", nil))

		info, err := fs.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, ReportFileMode, info.Mode().Perm())
	})

	t.Run("empty path writes to stdout", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteFile(afero.NewMemMapFs(), "", "content", &buf))
		assert.Equal(t, "content", buf.String())
	})

	t.Run("read-only filesystem", func(t *testing.T) {
		fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

		err := WriteFile(fs, "/out/report.csv", "content", nil)

		var ioErr *usage.IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "/out/report.csv", ioErr.Path)

		exists, _ := afero.Exists(fs, "/out/report.csv")
		assert.False(t, exists)
	})
}

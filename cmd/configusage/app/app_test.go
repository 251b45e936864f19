package app

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/ajdepersio/ConfigUsageReport/internal/config"
	"github.com/ajdepersio/ConfigUsageReport/pkg/logger"
	"github.com/ajdepersio/ConfigUsageReport/pkg/progress"
	"github.com/ajdepersio/ConfigUsageReport/pkg/usage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range map[string]string{
		"/codes.csv":            "ConfigCode,Description\nfoo,First\nbar,Second\ncat,Unused\n",
		"/src/a.cs":             "var x = foo.Name; var y = foo.Name;",
		"/src/web/b.aspx":       "<%= bar.Name %>",
		"/src/web/c.cshtml":     "@foo.Name @bar.Name",
		"/src/bin/Generated.cs": "cat.Name",
		"/src/notes.txt":        "cat.Name",
		"/out/.keep":            "",
	} {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	return fs
}

func testConfig() *config.Config {
	return &config.Config{
		CodesFile:   "/codes.csv",
		CodesColumn: config.DefaultCodesColumn,
		CodesHeader: true,
		Comma:       ',',
		Root:        "/src",
		Extensions:  []string{".cs", ".aspx", ".cshtml"},
		Ignore:      []string{"bin"},
		Format:      config.OutputFormatCSV,
		RowOrder:    config.RowOrderCode,
		Workers:     runtime.NumCPU(),
		BufferSize:  config.DefaultBufferSize,
		NoProgress:  true,
		NoColor:     true,
	}
}

func newTestApp(t *testing.T, cfg *config.Config, fs afero.Fs, stdout *bytes.Buffer) *App {
	t.Helper()
	a := New(cfg, logger.NewNop(), WithFs(fs), WithStdout(stdout), WithProgress(progress.NewNop()))
	t.Cleanup(a.Shutdown)
	return a
}

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		verify func(*testing.T, afero.Fs, string)
	}{
		{
			name:   "csv to stdout",
			modify: func(c *config.Config) {},
			verify: func(t *testing.T, fs afero.Fs, stdout string) {
				want := `"ConfigCode",".cs",".aspx",".cshtml"` + "\r\n" +
					`"bar","","/src/web/b.aspx","/src/web/c.cshtml"` + "\r\n" +
					`"foo","/src/a.cs","","/src/web/c.cshtml"` + "\r\n"
				assert.Equal(t, want, stdout)
			},
		},
		{
			name: "input row order",
			modify: func(c *config.Config) {
				c.RowOrder = config.RowOrderInput
			},
			verify: func(t *testing.T, fs afero.Fs, stdout string) {
				fooAt := bytes.Index([]byte(stdout), []byte(`"foo"`))
				barAt := bytes.Index([]byte(stdout), []byte(`"bar"`))
				assert.Less(t, fooAt, barAt)
			},
		},
		{
			name: "json to file",
			modify: func(c *config.Config) {
				c.Format = config.OutputFormatJSON
				c.OutputFile = "/out/report.json"
			},
			verify: func(t *testing.T, fs afero.Fs, stdout string) {
				assert.Empty(t, stdout)
				data, err := afero.ReadFile(fs, "/out/report.json")
				require.NoError(t, err)
				assert.Contains(t, string(data), `"code": "foo"`)
				assert.NotContains(t, string(data), "Generated.cs")
			},
		},
		{
			name: "unused code is reported when not ignored",
			modify: func(c *config.Config) {
				c.Ignore = nil
			},
			verify: func(t *testing.T, fs afero.Fs, stdout string) {
				assert.Contains(t, stdout, `"cat","/src/bin/Generated.cs","",""`)
			},
		},
		{
			name: "table format",
			modify: func(c *config.Config) {
				c.Format = config.OutputFormatTable
			},
			verify: func(t *testing.T, fs afero.Fs, stdout string) {
				assert.Contains(t, stdout, "ConfigCode")
				assert.Contains(t, stdout, "Codes Used: 2")
				assert.NotContains(t, stdout, "\x1b[")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := setupFs(t)
			cfg := testConfig()
			tt.modify(cfg)

			var stdout bytes.Buffer
			a := newTestApp(t, cfg, fs, &stdout)

			require.NoError(t, a.Run(context.Background()))
			tt.verify(t, fs, stdout.String())
		})
	}
}

func TestRunFailuresWriteNoReport(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config, afero.Fs)
		verify func(*testing.T, error)
	}{
		{
			name: "missing code source",
			modify: func(c *config.Config, fs afero.Fs) {
				c.CodesFile = "/nope.csv"
			},
			verify: func(t *testing.T, err error) {
				var srcErr *usage.ConfigSourceError
				require.True(t, errors.As(err, &srcErr))
				assert.Equal(t, "/nope.csv", srcErr.Path)
			},
		},
		{
			name: "invalid code in source",
			modify: func(c *config.Config, fs afero.Fs) {
				require.NoError(t, afero.WriteFile(fs, "/codes.csv", []byte("ConfigCode\nfoo\nbad-code\n"), 0644))
			},
			verify: func(t *testing.T, err error) {
				var codeErr *usage.InvalidCodeError
				require.True(t, errors.As(err, &codeErr))
				assert.Equal(t, "bad-code", codeErr.Code)
			},
		},
		{
			name: "missing root",
			modify: func(c *config.Config, fs afero.Fs) {
				c.Root = "/missing"
			},
			verify: func(t *testing.T, err error) {
				var ioErr *usage.IOError
				require.True(t, errors.As(err, &ioErr))
				assert.Equal(t, "/missing", ioErr.Path)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := setupFs(t)
			cfg := testConfig()
			cfg.OutputFile = "/out/report.csv"
			tt.modify(cfg, fs)

			var stdout bytes.Buffer
			err := newTestApp(t, cfg, fs, &stdout).Run(context.Background())

			require.Error(t, err)
			tt.verify(t, err)

			exists, _ := afero.Exists(fs, "/out/report.csv")
			assert.False(t, exists, "no report may be written on failure")
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRunUnreadableFile(t *testing.T) {
	fs := setupFs(t)
	cfg := testConfig()
	cfg.OutputFile = "/out/report.csv"

	// The enumerator sees the file but the scanner cannot open it
	ro := &failingOpenFs{Fs: fs, path: "/src/web/b.aspx"}

	var stdout bytes.Buffer
	err := newTestApp(t, cfg, ro, &stdout).Run(context.Background())

	var ioErr *usage.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "/src/web/b.aspx", ioErr.Path)

	exists, _ := afero.Exists(fs, "/out/report.csv")
	assert.False(t, exists)
}

type failingOpenFs struct {
	afero.Fs
	path string
}

func (f *failingOpenFs) Open(name string) (afero.File, error) {
	if name == f.path {
		return nil, syscall.EACCES
	}
	return f.Fs.Open(name)
}

func TestRunCancelled(t *testing.T) {
	fs := setupFs(t)
	var stdout bytes.Buffer
	a := newTestApp(t, testConfig(), fs, &stdout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, stdout.String())
}

func TestSignalHandling(t *testing.T) {
	var stdout bytes.Buffer
	a := newTestApp(t, testConfig(), setupFs(t), &stdout)

	exited := make(chan int, 1)
	a.exit = func(code int) { exited <- code }

	a.signals <- syscall.SIGINT
	select {
	case <-a.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("first interrupt did not cancel the application context")
	}

	err := a.Run(context.Background())
	assert.ErrorIs(t, err, context.Canceled)

	a.signals <- syscall.SIGINT
	select {
	case code := <-exited:
		assert.Equal(t, exitCodeInterrupted, code)
	case <-time.After(time.Second):
		t.Fatal("second interrupt did not exit")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	a := New(testConfig(), logger.NewNop(), WithFs(setupFs(t)))
	a.Shutdown()
	a.Shutdown()
	assert.Error(t, a.ctx.Err())
}

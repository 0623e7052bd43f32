package errors

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad page").Build(), expected: 2},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "template", err: TemplateError("fragment missing").Build(), expected: 11},
		{name: "filesystem", err: FileSystemError("write failed").Build(), expected: 11},
		{name: "runtime", err: RuntimeError("watch failed").Build(), expected: 12},
		{name: "internal", err: InternalError("bug").Build(), expected: 10},
		{name: "unclassified", err: stderrors.New("unknown"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	cause := stderrors.New("read-only file system")
	err := FileSystemError("write page").WithCause(cause).WithContext("path", "/site/index.html").Build()

	require.Equal(t, "filesystem: write page: /site/index.html (read-only file system)", quiet.FormatError(err))
	require.Equal(t, err.Error(), verbose.FormatError(err))
	require.Equal(t, "missing output", quiet.FormatError(ValidationError("missing output").Build()))
	require.Equal(t, "Error: boom", quiet.FormatError(stderrors.New("boom")))
	require.Empty(t, quiet.FormatError(nil))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logBuf, out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logBuf, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("configuration file not found").WithContext("path", "x.yaml").Build())

	require.Equal(t, 7, code)
	require.Equal(t, "configuration file not found: x.yaml\n", out.String())
	require.Contains(t, logBuf.String(), "category=config")
	require.Contains(t, logBuf.String(), "user_action=true")

	code = -1
	adapter.HandleError(nil)
	require.Equal(t, -1, code)
}

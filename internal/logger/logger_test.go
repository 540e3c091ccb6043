package logger

import (
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/brizzai/auth-profile/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"joao@example.com", "jo***@example.com"},
		{"a@b.co", "a***@b.co"},
		{"  maria.silva@mail.com ", "ma***@mail.com"},
		{"not-an-email", "***"},
		{"", ""},
		{"çéu@example.com", "çé***@example.com"},
		{"ção@example.com", "çã***@example.com"},
	}
	for _, tt := range tests {
		got := MaskEmail(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.True(t, utf8.ValidString(got), tt.in)
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	l, err := NewLogger(&config.LoggingConfig{
		Level:          "debug",
		Format:         "json",
		OutputPath:     path,
		DisableConsole: true,
	})
	require.NoError(t, err)

	l.Info("hello", Email("email", "user@example.com"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), "us***@example.com")
	assert.NotContains(t, string(data), "user@example.com")
}

func TestNewLogger_InvalidSettings(t *testing.T) {
	_, err := NewLogger(&config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = NewLogger(&config.LoggingConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestSetLogger_NilFallsBackToNop(t *testing.T) {
	SetLogger(nil)
	assert.NotNil(t, GetLogger())
	SetLogger(zap.NewNop())
}

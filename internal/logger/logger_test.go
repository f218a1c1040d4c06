package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"agenda/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewLogger(logger.Options{Level: "warn", Out: &buf})
	defer l.Close()

	l.Info("IMPORT", "hidden")
	l.Warn("IMPORT", "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "IMPORT")
}

func TestJSONFileOutput(t *testing.T) {
	dir := t.TempDir()
	l := logger.NewLogger(logger.Options{Name: "import", Dir: dir, Out: &bytes.Buffer{}})
	l.LogImport("START", "agenda.xls", "reading rows")
	l.Close()

	matches, err := filepath.Glob(filepath.Join(dir, "import-*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	var entry logger.LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "IMPORT", entry.Category)
	assert.Equal(t, "[START] agenda.xls - reading rows", entry.Message)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.ERROR, logger.ParseLevel(" ERROR "))
	assert.Equal(t, logger.INFO, logger.ParseLevel("nonsense"))
}

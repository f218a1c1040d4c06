package render_test

import (
	"bytes"
	"strings"
	"testing"

	"agenda/internal/render"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.Equal(t, "short", render.Wrap("short", 10))
	assert.Equal(t, "no limit at all", render.Wrap("no limit at all", 0))
	assert.Equal(t, "Opening\nKeynote\nsession", render.Wrap("Opening Keynote session", 10))
	assert.Equal(t, "Café Ünïcode", render.Wrap("Café Ünïcode", 12))
}

func TestWrapSplitsLongWords(t *testing.T) {
	long := strings.Repeat("x", 45)
	assert.Equal(t, "see\n"+long[:20]+"\n"+long[20:40]+"\n"+long[40:], render.Wrap("see "+long, 20))

	url := "https://example.com/a/very/long/path/that/goes/on/forever"
	for _, line := range strings.Split(render.Wrap("see "+url, 20), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 20, line)
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	rows := []map[string]interface{}{
		{"title": "Opening Keynote session", "location": "Hall A"},
		{"title": "Q&A", "location": nil},
	}

	render.Table(&buf, []string{"title", "location"}, rows, []int{10, 20})
	out := buf.String()

	assert.Contains(t, out, "title")
	assert.Contains(t, out, "location")
	assert.Contains(t, out, "Hall A")
	assert.Contains(t, out, "Q&A")
	for _, line := range strings.Split(out, "\n") {
		assert.NotContains(t, line, "Opening Keynote", "cell should be wrapped at its width cap")
	}
}
